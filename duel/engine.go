package duel

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the challenge lifecycle, driven only by the defender.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
)

// GameState tracks move collection after acceptance.
type GameState string

const (
	StateAwaitingMoves GameState = "awaiting_moves"
	StateCompleted     GameState = "completed"
)

// UserSnapshot is what the registry copies out of the user directory
// at challenge time. Ratings are frozen here; resolution rates the
// duel against these values.
type UserSnapshot struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// Request is one live challenge. All mutation after creation happens
// under mu; the registry never hands the struct itself to callers.
type Request struct {
	ID         string
	Challenger UserSnapshot
	Defender   UserSnapshot
	PostID     string
	Mode       Mode
	CreatedAt  time.Time

	// Target is drawn at creation and never regenerated: redrawing it
	// after a move lands would leak information to the other side.
	Target Point

	mu             sync.Mutex
	status         Status
	state          GameState
	challengerMove *Move
	defenderMove   *Move
}

// RequestView is the caller-safe snapshot of a live request. The
// scoring target stays hidden until resolution.
type RequestView struct {
	ID                  string    `json:"id"`
	ChallengerID        string    `json:"challenger_id"`
	ChallengerName      string    `json:"challenger_name"`
	ChallengerRating    int       `json:"challenger_rating"`
	DefenderID          string    `json:"defender_id"`
	DefenderName        string    `json:"defender_name"`
	DefenderRating      int       `json:"defender_rating"`
	PostID              string    `json:"post_id"`
	Mode                Mode      `json:"mode"`
	Status              Status    `json:"status"`
	State               GameState `json:"state"`
	ChallengerSubmitted bool      `json:"challenger_submitted"`
	DefenderSubmitted   bool      `json:"defender_submitted"`
	CreatedAt           time.Time `json:"created_at"`
}

// Resolution is returned exactly once per request, by the SubmitMove
// call that lands the second move.
type Resolution struct {
	Request         RequestView `json:"request"`
	Outcome         Outcome     `json:"outcome"`
	WinnerID        string      `json:"winner_id"` // user id or "tie"
	WinnerName      string      `json:"winner_name"`
	ChallengerDelta int         `json:"challenger_delta"`
	DefenderDelta   int         `json:"defender_delta"`
	ResolvedAt      time.Time   `json:"resolved_at"`
}

// MoveResult is the outcome of a single SubmitMove call. Request is
// the post-submit view, so callers can notify both participants even
// when the opponent's move is still outstanding; Resolution is nil
// until the second move lands.
type MoveResult struct {
	Request    RequestView `json:"request"`
	Completed  bool        `json:"completed"`
	Resolution *Resolution `json:"resolution,omitempty"`
}

// Registry owns every live duel request. It is the unit of concurrency
// control: lookups and the duplicate-challenge index are guarded by
// mu, everything inside one request by that request's own lock.
// Lock order: a request lock may be taken only when mu is not held;
// mu may be taken while a request lock is held (map removal on
// resolution), never the other way around.
type Registry struct {
	mu       sync.Mutex
	requests map[string]*Request
	byTriple map[string]string // (challenger,defender,post) -> request id

	// targetFn is swapped in tests for deterministic targets.
	targetFn func() Point
}

func NewRegistry() *Registry {
	return &Registry{
		requests: make(map[string]*Request),
		byTriple: make(map[string]string),
		targetFn: RandomTarget,
	}
}

// RandomTarget draws a scoring target uniformly inside the canvas.
func RandomTarget() Point {
	return Point{X: rand.Float64() * CanvasWidth, Y: rand.Float64() * CanvasHeight}
}

func tripleKey(challengerID, defenderID, postID string) string {
	return fmt.Sprintf("%s|%s|%s", challengerID, defenderID, postID)
}

// CreateChallenge opens a pending request. A live pending or accepted
// request over the same (challenger, defender, post) triple makes it
// ErrDuplicateChallenge.
func (r *Registry) CreateChallenge(challenger, defender UserSnapshot, postID string, mode Mode) (RequestView, error) {
	if !mode.valid() {
		mode = ModeCanvas
	}
	if challenger.ID == defender.ID {
		return RequestView{}, ErrForbidden
	}

	req := &Request{
		ID:         uuid.NewString(),
		Challenger: challenger,
		Defender:   defender,
		PostID:     postID,
		Mode:       mode,
		CreatedAt:  time.Now().UTC(),
		Target:     r.targetFn(),
		status:     StatusPending,
		state:      StateAwaitingMoves,
	}

	key := tripleKey(challenger.ID, defender.ID, postID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byTriple[key]; exists {
		return RequestView{}, ErrDuplicateChallenge
	}
	r.requests[req.ID] = req
	r.byTriple[key] = req.ID
	return req.view(), nil
}

// Respond moves a pending request to accepted or declined. Only the
// defender may respond, and only once. Declined requests leave the
// registry immediately.
func (r *Registry) Respond(requestID, byUserID string, accept bool) (RequestView, error) {
	req, err := r.lookup(requestID)
	if err != nil {
		return RequestView{}, err
	}

	req.mu.Lock()
	defer req.mu.Unlock()

	if req.Defender.ID != byUserID {
		return RequestView{}, ErrForbidden
	}
	if req.status != StatusPending {
		return RequestView{}, ErrAlreadyResolved
	}

	if accept {
		req.status = StatusAccepted
		return req.viewLocked(), nil
	}

	req.status = StatusDeclined
	view := req.viewLocked()
	r.remove(req)
	return view, nil
}

// SubmitMove records one side's move and, when it is the second one,
// resolves the duel. The duplicate-move check, the write, and the
// both-present detection share one critical section, so concurrent
// submissions cannot double-store a side's move or fire resolution
// twice.
func (r *Registry) SubmitMove(requestID, byUserID string, mv Move) (*MoveResult, error) {
	req, err := r.lookup(requestID)
	if err != nil {
		return nil, err
	}

	req.mu.Lock()
	defer req.mu.Unlock()

	if req.status != StatusAccepted {
		return nil, ErrNotActive
	}
	if req.state == StateCompleted {
		return nil, ErrAlreadyCompleted
	}
	if err := mv.Validate(req.Mode); err != nil {
		return nil, err
	}

	var own, other **Move
	switch byUserID {
	case req.Challenger.ID:
		own, other = &req.challengerMove, &req.defenderMove
	case req.Defender.ID:
		own, other = &req.defenderMove, &req.challengerMove
	default:
		return nil, ErrForbidden
	}

	if *own != nil {
		return nil, ErrDuplicateMove
	}
	*own = &mv

	if *other == nil {
		return &MoveResult{Request: req.viewLocked()}, nil
	}

	res := req.resolveLocked()
	r.remove(req)
	return &MoveResult{Request: res.Request, Completed: true, Resolution: &res}, nil
}

// resolveLocked scores the duel, rates it, and flips the request to
// completed. Caller holds req.mu and has verified both moves are in.
func (req *Request) resolveLocked() Resolution {
	req.state = StateCompleted

	outcome := Score(*req.challengerMove, *req.defenderMove, req.Target)

	winnerID, winnerName := "tie", "tie"
	switch outcome.Winner {
	case SideChallenger:
		winnerID, winnerName = req.Challenger.ID, req.Challenger.Username
	case SideDefender:
		winnerID, winnerName = req.Defender.ID, req.Defender.Username
	}

	cd, dd := RateDuel(req.Challenger.Rating, req.Defender.Rating, outcome.Winner)

	return Resolution{
		Request:         req.viewLocked(),
		Outcome:         outcome,
		WinnerID:        winnerID,
		WinnerName:      winnerName,
		ChallengerDelta: cd,
		DefenderDelta:   dd,
		ResolvedAt:      time.Now().UTC(),
	}
}

// RequestsFor returns the live requests the user participates in,
// newest first.
func (r *Registry) RequestsFor(userID string) []RequestView {
	r.mu.Lock()
	candidates := make([]*Request, 0, len(r.requests))
	for _, req := range r.requests {
		if req.Challenger.ID == userID || req.Defender.ID == userID {
			candidates = append(candidates, req)
		}
	}
	r.mu.Unlock()

	views := make([]RequestView, 0, len(candidates))
	for _, req := range candidates {
		v := req.view()
		if v.State == StateCompleted || v.Status == StatusDeclined {
			continue // resolved between snapshot and view
		}
		views = append(views, v)
	}
	sortViewsNewestFirst(views)
	return views
}

// ExpireBefore removes requests created before the cutoff that never
// collected both moves, returning what was dropped so callers can
// notify the participants. Resolution-ready requests are untouched.
func (r *Registry) ExpireBefore(cutoff time.Time) []RequestView {
	r.mu.Lock()
	candidates := make([]*Request, 0)
	for _, req := range r.requests {
		if req.CreatedAt.Before(cutoff) {
			candidates = append(candidates, req)
		}
	}
	r.mu.Unlock()

	expired := make([]RequestView, 0, len(candidates))
	for _, req := range candidates {
		req.mu.Lock()
		if req.state == StateCompleted {
			req.mu.Unlock()
			continue
		}
		req.status = StatusDeclined
		view := req.viewLocked()
		r.remove(req)
		req.mu.Unlock()
		expired = append(expired, view)
	}
	return expired
}

// Len reports the number of live requests.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

func (r *Registry) lookup(requestID string) (*Request, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	req, ok := r.requests[requestID]
	if !ok {
		return nil, ErrNotFound
	}
	return req, nil
}

// remove drops the request from both indexes. Safe to call while
// holding req.mu (see lock order on Registry).
func (r *Registry) remove(req *Request) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.requests, req.ID)
	delete(r.byTriple, tripleKey(req.Challenger.ID, req.Defender.ID, req.PostID))
}

func (req *Request) view() RequestView {
	req.mu.Lock()
	defer req.mu.Unlock()
	return req.viewLocked()
}

func (req *Request) viewLocked() RequestView {
	return RequestView{
		ID:                  req.ID,
		ChallengerID:        req.Challenger.ID,
		ChallengerName:      req.Challenger.Username,
		ChallengerRating:    req.Challenger.Rating,
		DefenderID:          req.Defender.ID,
		DefenderName:        req.Defender.Username,
		DefenderRating:      req.Defender.Rating,
		PostID:              req.PostID,
		Mode:                req.Mode,
		Status:              req.status,
		State:               req.state,
		ChallengerSubmitted: req.challengerMove != nil,
		DefenderSubmitted:   req.defenderMove != nil,
		CreatedAt:           req.CreatedAt,
	}
}

func sortViewsNewestFirst(views []RequestView) {
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.After(views[j].CreatedAt)
	})
}
