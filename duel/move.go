package duel

import (
	"bytes"
	"encoding/json"
)

// ScalarMoveMax bounds the legacy scalar move value.
const ScalarMoveMax = 1000.0

// Mode selects the scoring strategy for a duel. Older clients play the
// scalar compare game; current clients play the canvas game.
type Mode string

const (
	ModeScalar Mode = "scalar"
	ModeCanvas Mode = "canvas"
)

func (m Mode) valid() bool { return m == ModeScalar || m == ModeCanvas }

// CanvasMove is one side's submission in geometric mode: where their
// king hides, and where they guess the opponent's king hides. Field
// names match the canvas client wire format.
type CanvasMove struct {
	KingPosition Point  `json:"kingPosition"`
	GuessedArea  Circle `json:"guessedArea"`
}

// Move is a tagged variant: exactly one of Scalar or Canvas is set.
// On the wire it is either a bare number (legacy) or a canvas object,
// and is dispatched explicitly rather than type-sniffed downstream.
type Move struct {
	Scalar *float64
	Canvas *CanvasMove
}

func ScalarMove(v float64) Move { return Move{Scalar: &v} }

func (m *Move) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var cm CanvasMove
		if err := json.Unmarshal(trimmed, &cm); err != nil {
			return err
		}
		m.Canvas = &cm
		m.Scalar = nil
		return nil
	}
	var v float64
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	m.Scalar = &v
	m.Canvas = nil
	return nil
}

func (m Move) MarshalJSON() ([]byte, error) {
	if m.Canvas != nil {
		return json.Marshal(m.Canvas)
	}
	if m.Scalar != nil {
		return json.Marshal(*m.Scalar)
	}
	return []byte("null"), nil
}

// Validate checks the move against the mode's schema and bounds.
// Intervals are closed with no floating-point tolerance: a value
// marginally past the boundary is rejected, so precision tricks cannot
// smuggle positions off-canvas.
func (m Move) Validate(mode Mode) error {
	switch mode {
	case ModeScalar:
		if m.Scalar == nil || m.Canvas != nil {
			return ErrInvalidMove
		}
		v := *m.Scalar
		if !finite(v) || v < 0 || v > ScalarMoveMax {
			return ErrInvalidMove
		}
		return nil
	case ModeCanvas:
		if m.Canvas == nil || m.Scalar != nil {
			return ErrInvalidMove
		}
		cm := m.Canvas
		if !inCanvas(cm.KingPosition) {
			return ErrInvalidMove
		}
		if !inCanvas(cm.GuessedArea.Center) {
			return ErrInvalidMove
		}
		if cm.GuessedArea.Radius != GuessAreaRadius {
			return ErrInvalidMove
		}
		return nil
	default:
		return ErrInvalidMove
	}
}
