package duel

import (
	"encoding/json"
	"math"
	"testing"
)

func canvasMove(kingX, kingY, guessX, guessY, radius float64) Move {
	return Move{Canvas: &CanvasMove{
		KingPosition: Point{kingX, kingY},
		GuessedArea:  Circle{Center: Point{guessX, guessY}, Radius: radius},
	}}
}

func TestValidateCanvasMove(t *testing.T) {
	tests := []struct {
		name    string
		move    Move
		wantErr bool
	}{
		{"valid center", canvasMove(400, 300, 200, 200, GuessAreaRadius), false},
		{"valid at origin corner", canvasMove(0, 0, 800, 600, GuessAreaRadius), false},
		{"valid at far corner", canvasMove(800, 600, 0, 0, GuessAreaRadius), false},

		{"king x negative", canvasMove(-1, 300, 200, 200, GuessAreaRadius), true},
		{"king x past width", canvasMove(801, 300, 200, 200, GuessAreaRadius), true},
		{"king y negative", canvasMove(400, -1, 200, 200, GuessAreaRadius), true},
		{"king y past height", canvasMove(400, 601, 200, 200, GuessAreaRadius), true},

		{"guess x negative", canvasMove(400, 300, -1, 200, GuessAreaRadius), true},
		{"guess x past width", canvasMove(400, 300, 801, 200, GuessAreaRadius), true},
		{"guess y negative", canvasMove(400, 300, 200, -1, GuessAreaRadius), true},
		{"guess y past height", canvasMove(400, 300, 200, 601, GuessAreaRadius), true},

		{"radius too small", canvasMove(400, 300, 200, 200, GuessAreaRadius-1), true},
		{"radius too large", canvasMove(400, 300, 200, 200, GuessAreaRadius+1), true},
		{"radius negative", canvasMove(400, 300, 200, 200, -5), true},
		{"radius huge", canvasMove(400, 300, 400, 300, 500), true},

		{"king x NaN", canvasMove(math.NaN(), 300, 200, 200, GuessAreaRadius), true},
		{"guess x NaN", canvasMove(400, 300, math.NaN(), 200, GuessAreaRadius), true},
		{"radius NaN", canvasMove(400, 300, 200, 200, math.NaN()), true},
		{"king x +Inf", canvasMove(math.Inf(1), 300, 200, 200, GuessAreaRadius), true},
		{"guess x -Inf", canvasMove(400, 300, math.Inf(-1), 200, GuessAreaRadius), true},
		{"radius Inf", canvasMove(400, 300, 200, 200, math.Inf(1)), true},

		// No epsilon at the boundary: precision tricks are rejected.
		{"king x precision attack", canvasMove(800.0000000001, 300, 400, 300, GuessAreaRadius), true},
		{"radius precision attack", canvasMove(400, 300, 400, 300, GuessAreaRadius + 0.0000000001), true},

		{"missing canvas payload", Move{}, true},
		{"scalar payload in canvas mode", ScalarMove(500), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.move.Validate(ModeCanvas)
			if tt.wantErr && err != ErrInvalidMove {
				t.Errorf("Validate() = %v, want ErrInvalidMove", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestValidateScalarMove(t *testing.T) {
	tests := []struct {
		name    string
		move    Move
		wantErr bool
	}{
		{"zero", ScalarMove(0), false},
		{"mid", ScalarMove(500), false},
		{"max", ScalarMove(1000), false},
		// Fractional values pass: only finiteness and range are
		// enforced, matching what clients have always been able to send.
		{"fractional", ScalarMove(500.5), false},
		{"negative", ScalarMove(-1), true},
		{"past max", ScalarMove(1001), true},
		{"NaN", ScalarMove(math.NaN()), true},
		{"Inf", ScalarMove(math.Inf(1)), true},
		{"canvas payload in scalar mode", canvasMove(1, 1, 1, 1, GuessAreaRadius), true},
		{"empty", Move{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.move.Validate(ModeScalar)
			if tt.wantErr && err != ErrInvalidMove {
				t.Errorf("Validate() = %v, want ErrInvalidMove", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestMoveJSONVariants(t *testing.T) {
	t.Run("bare number decodes as scalar", func(t *testing.T) {
		var m Move
		if err := json.Unmarshal([]byte(`750`), &m); err != nil {
			t.Fatalf("unmarshal scalar: %v", err)
		}
		if m.Scalar == nil || *m.Scalar != 750 || m.Canvas != nil {
			t.Fatalf("expected scalar 750, got %+v", m)
		}
	})

	t.Run("object decodes as canvas", func(t *testing.T) {
		raw := `{"kingPosition":{"x":410,"y":310},"guessedArea":{"center":{"x":100,"y":100},"radius":50}}`
		var m Move
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			t.Fatalf("unmarshal canvas: %v", err)
		}
		if m.Canvas == nil || m.Scalar != nil {
			t.Fatalf("expected canvas move, got %+v", m)
		}
		if m.Canvas.KingPosition.X != 410 || m.Canvas.GuessedArea.Radius != 50 {
			t.Fatalf("canvas fields wrong: %+v", m.Canvas)
		}
	})

	t.Run("garbage rejected", func(t *testing.T) {
		var m Move
		if err := json.Unmarshal([]byte(`"750"`), &m); err == nil {
			t.Fatal("expected error for string payload")
		}
	})
}
