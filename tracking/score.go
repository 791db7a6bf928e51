package tracking

import "math"

// MatchingScore measures how much curr differs from prev: distance between centers
// plus width and height deltas, in pixels. Lower is better.
func MatchingScore(prev, curr Rectangle) float64 {
	score := euclideanDistance(prev.Center(), curr.Center())
	score += float64(absInt(curr.Width - prev.Width))
	score += float64(absInt(curr.Height - prev.Height))
	return score
}

// ChopstickScore measures how well the bounding box of two tips fits a detected chopstick box:
// |IoU - 1|, so 0 is a perfect fit. Lower is better.
func ChopstickScore(tipsBoundingBox, chopstickBox Rectangle) float64 {
	return math.Abs(IoU(tipsBoundingBox, chopstickBox) - 1.0)
}
