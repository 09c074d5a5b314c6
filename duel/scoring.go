package duel

// Side identifies a duel participant in scoring output.
type Side int

const (
	SideChallenger Side = iota
	SideDefender
	SideTie
)

func (s Side) String() string {
	switch s {
	case SideChallenger:
		return "challenger"
	case SideDefender:
		return "defender"
	default:
		return "tie"
	}
}

// Outcome is the full result of scoring one duel. It is deterministic
// given the two moves and the target, which makes resolution
// replayable for audit.
type Outcome struct {
	Winner Side `json:"winner"`

	ChallengerScore float64 `json:"challenger_score"`
	DefenderScore   float64 `json:"defender_score"`

	// Capture flags are meaningful in canvas mode only.
	ChallengerCaptured bool `json:"challenger_captured"`
	DefenderCaptured   bool `json:"defender_captured"`

	// Target is revealed once the duel resolves; nil for scalar duels.
	Target *Point `json:"target,omitempty"`
}

// CaptureScore scores one king in canvas mode: zero when the opponent's
// guess circle captured it, otherwise inversely proportional to the
// distance from the scoring target. The +1 keeps the score finite when
// the king sits exactly on the target and caps it at 1.
func CaptureScore(king, target Point, captured bool) float64 {
	if captured {
		return 0
	}
	return 1 / (Distance(king, target) + 1)
}

// ScoreCanvas resolves a geometric duel. A king is captured when it
// lies inside the opponent's guess circle; both kings can be captured
// at once (mutual 0/0 tie) or neither (closest to target wins).
func ScoreCanvas(challenger, defender CanvasMove, target Point) Outcome {
	challengerCaptured := defender.GuessedArea.Contains(challenger.KingPosition)
	defenderCaptured := challenger.GuessedArea.Contains(defender.KingPosition)

	cs := CaptureScore(challenger.KingPosition, target, challengerCaptured)
	ds := CaptureScore(defender.KingPosition, target, defenderCaptured)

	t := target
	return Outcome{
		Winner:             winnerOf(cs, ds),
		ChallengerScore:    cs,
		DefenderScore:      ds,
		ChallengerCaptured: challengerCaptured,
		DefenderCaptured:   defenderCaptured,
		Target:             &t,
	}
}

// ScoreScalar resolves a legacy scalar duel: higher value wins, equal
// values tie.
func ScoreScalar(challenger, defender float64) Outcome {
	return Outcome{
		Winner:          winnerOf(challenger, defender),
		ChallengerScore: challenger,
		DefenderScore:   defender,
	}
}

// Score dispatches on the move variant. Both moves are assumed
// validated against the same mode.
func Score(challenger, defender Move, target Point) Outcome {
	if challenger.Canvas != nil && defender.Canvas != nil {
		return ScoreCanvas(*challenger.Canvas, *defender.Canvas, target)
	}
	var cs, ds float64
	if challenger.Scalar != nil {
		cs = *challenger.Scalar
	}
	if defender.Scalar != nil {
		ds = *defender.Scalar
	}
	return ScoreScalar(cs, ds)
}

func winnerOf(challengerScore, defenderScore float64) Side {
	switch {
	case challengerScore > defenderScore:
		return SideChallenger
	case defenderScore > challengerScore:
		return SideDefender
	default:
		return SideTie
	}
}
