package world

import "golang.org/x/exp/constraints"

// Coord is a position on the grid.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Chebyshev returns the Chebyshev distance max(|dx|, |dy|) between two coordinates.
func Chebyshev(a, b Coord) int {
	dx := Abs(a.X - b.X)
	dy := Abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

// Sign returns -1, 0 or 1 according to the sign of v.
func Sign[T constraints.Signed](v T) T {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	default:
		return 0
	}
}

// Abs returns the absolute value of v.
func Abs[T constraints.Signed](v T) T {
	if v < 0 {
		return -v
	}
	return v
}
