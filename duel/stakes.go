package duel

import "duel-arena/models"

// Stake gating is pure: everything derives from who challenged, who
// won, and the two single-use booleans on the ledger entry.

// AuthorizeDestroy reports whether userID may destroy the post behind
// the entry. Only the original challenger may, and only if they won.
func AuthorizeDestroy(entry *models.DuelHistory, userID string) error {
	if entry.ChallengerID != userID || entry.WinnerID != userID {
		return ErrForbidden
	}
	if entry.PostDestroyed {
		return ErrAlreadyDestroyed
	}
	return nil
}

// AuthorizeHijack reports whether userID may post on the loser's
// behalf. Only the actual winner may, and only when the challenger
// lost.
func AuthorizeHijack(entry *models.DuelHistory, userID string) error {
	if entry.WinnerID != userID || entry.ChallengerID == userID {
		return ErrForbidden
	}
	if entry.HijackUsed {
		return ErrAlreadyUsed
	}
	return nil
}

// Loser returns the losing side's id and name. Meaningless for ties;
// callers gate on a decisive winner first.
func Loser(entry *models.DuelHistory) (id, name string) {
	if entry.WinnerID == entry.ChallengerID {
		return entry.DefenderID, entry.DefenderName
	}
	return entry.ChallengerID, entry.ChallengerName
}

// ActionsFor derives the viewer's remaining stake privileges.
func ActionsFor(entry *models.DuelHistory, userID string) models.StakeActions {
	challengerWon := entry.WinnerID == entry.ChallengerID
	isChallenger := entry.ChallengerID == userID
	isWinner := entry.WinnerID == userID

	return models.StakeActions{
		CanDestroy:      isChallenger && challengerWon && !entry.PostDestroyed,
		CanPostOnBehalf: isWinner && !challengerWon && !entry.HijackUsed,
		CanForward:      challengerWon,
	}
}
