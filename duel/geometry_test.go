package duel

import (
	"math"
	"testing"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name string
		a, b Point
		want float64
	}{
		{"3-4-5 triangle", Point{0, 0}, Point{3, 4}, 5},
		{"same point", Point{100, 200}, Point{100, 200}, 0},
		{"horizontal", Point{10, 50}, Point{60, 50}, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Distance(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Distance(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a, b := Point{12.5, 47.1}, Point{700.3, 599.9}
	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %v vs %v", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceTriangleInequality(t *testing.T) {
	a, b, c := Point{0, 0}, Point{300, 0}, Point{300, 400}
	if Distance(a, c) > Distance(a, b)+Distance(b, c)+1e-9 {
		t.Errorf("triangle inequality violated: d(a,c)=%v > d(a,b)+d(b,c)=%v",
			Distance(a, c), Distance(a, b)+Distance(b, c))
	}
}

func TestCircleContains(t *testing.T) {
	circle := Circle{Center: Point{100, 100}, Radius: 50}

	tests := []struct {
		name string
		p    Point
		want bool
	}{
		{"center", Point{100, 100}, true},
		{"inside", Point{120, 110}, true},
		{"exactly on edge", Point{150, 100}, true},
		{"outside", Point{100, 200}, false},
		{"just past edge", Point{150.001, 100}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := circle.Contains(tt.p); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}
