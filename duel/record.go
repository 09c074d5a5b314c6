package duel

import "duel-arena/models"

// RecordDelta is the win/loss increment one side takes from a
// resolution.
type RecordDelta struct {
	Wins   int
	Losses int
}

// ResolutionRecords maps a resolution winner onto both sides' win/loss
// increments. A tie counts as a win for both sides and a loss for
// neither. Odd, but it is the observable record-keeping behavior and
// stays.
func ResolutionRecords(winnerID, challengerID string) (challenger, defender RecordDelta) {
	switch winnerID {
	case models.WinnerTie:
		return RecordDelta{Wins: 1}, RecordDelta{Wins: 1}
	case challengerID:
		return RecordDelta{Wins: 1}, RecordDelta{Losses: 1}
	default:
		return RecordDelta{Losses: 1}, RecordDelta{Wins: 1}
	}
}
