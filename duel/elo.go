package duel

import "math"

const (
	// KFactor is the standard per-game rating swing cap.
	KFactor = 32
	// InitialRating is assigned to every new user by the directory.
	InitialRating = 1000
)

// RatingDelta returns the rounded ELO adjustment for a player with
// rating against opponentRating who realized score (1 win, 0.5 tie,
// 0 loss).
func RatingDelta(rating, opponentRating int, score float64) int {
	expected := 1.0 / (1.0 + math.Pow(10, float64(opponentRating-rating)/400.0))
	return int(math.Round(KFactor * (score - expected)))
}

// RateDuel computes both sides' deltas from the pre-duel ratings. Both
// deltas come from the same pre-update pair, never sequentially, so the
// result cannot depend on application order. A tie scores 0.5 for both.
func RateDuel(challengerRating, defenderRating int, winner Side) (challengerDelta, defenderDelta int) {
	var cs, ds float64
	switch winner {
	case SideChallenger:
		cs, ds = 1, 0
	case SideDefender:
		cs, ds = 0, 1
	default:
		cs, ds = 0.5, 0.5
	}
	challengerDelta = RatingDelta(challengerRating, defenderRating, cs)
	defenderDelta = RatingDelta(defenderRating, challengerRating, ds)
	return challengerDelta, defenderDelta
}
