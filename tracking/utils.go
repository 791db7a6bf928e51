package tracking

import "math"

// IoU calculates Intersection over Union between two rectangles.
func IoU(r1, r2 Rectangle) float64 {
	interArea := Intersection(r1, r2).Area()
	if interArea == 0 {
		return 0.0
	}
	unionArea := r1.Area() + r2.Area() - interArea
	if unionArea <= 0 {
		return 0.0
	}
	return float64(interArea) / float64(unionArea)
}

// roundHalfUp rounds to the nearest integer, halves go towards +Inf.
// Coordinates are rounded this way everywhere so -2.5 gives -2, not -3.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func absInt(a int) int {
	if a < 0 {
		return -a
	}
	return a
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
