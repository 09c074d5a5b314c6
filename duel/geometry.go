package duel

import "math"

// Canvas bounds and the single allowed guess radius. The radius is a
// server-side constant: clients never choose it, which forecloses the
// oversized-guess-area exploit.
const (
	CanvasWidth     = 800.0
	CanvasHeight    = 600.0
	GuessAreaRadius = 50.0
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Circle struct {
	Center Point   `json:"center"`
	Radius float64 `json:"radius"`
}

// Distance returns the euclidean distance between two points.
func Distance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Contains reports whether p lies inside the circle. The boundary
// counts as inside.
func (c Circle) Contains(p Point) bool {
	return Distance(p, c.Center) <= c.Radius
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func inCanvas(p Point) bool {
	return finite(p.X) && finite(p.Y) &&
		p.X >= 0 && p.X <= CanvasWidth &&
		p.Y >= 0 && p.Y <= CanvasHeight
}
