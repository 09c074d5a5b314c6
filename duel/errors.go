package duel

import "errors"

// Engine errors are sentinels so services can map them to HTTP
// statuses with errors.Is. All of them mean caller error or a lost
// race; none is retryable and none leaves partial state behind.
var (
	ErrUnknownUser        = errors.New("unknown user")
	ErrNotFound           = errors.New("duel request not found")
	ErrForbidden          = errors.New("not allowed for this user")
	ErrDuplicateChallenge = errors.New("duel request already sent")
	ErrAlreadyResolved    = errors.New("duel request already resolved")
	ErrNotActive          = errors.New("duel is not active")
	ErrAlreadyCompleted   = errors.New("duel already completed")
	ErrDuplicateMove      = errors.New("move already submitted")
	ErrInvalidMove        = errors.New("invalid move data")

	ErrHistoryNotFound  = errors.New("duel history not found")
	ErrAlreadyDestroyed = errors.New("post already destroyed")
	ErrAlreadyUsed      = errors.New("hijack post privilege already used")
)
