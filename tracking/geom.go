package tracking

import (
	"math"
)

// Rectangle is an axis-aligned box in integer pixel units.
// X and Y are the coordinates of the top-left corner.
type Rectangle struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func NewRect(x, y, width, height int) Rectangle {
	return Rectangle{
		X:      x,
		Y:      y,
		Width:  width,
		Height: height,
	}
}

// Area returns width*height
func (r Rectangle) Area() int {
	return r.Width * r.Height
}

// Center returns the center of the rectangle
func (r Rectangle) Center() Point {
	return Point{
		X: float64(r.X) + float64(r.Width)/2.0,
		Y: float64(r.Y) + float64(r.Height)/2.0,
	}
}

// centerInt returns the center truncated to whole pixels (x + width/2 in integer arithmetic)
func (r Rectangle) centerInt() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// IsOverlappingWith checks if interiors of both rectangles intersect.
// Touching edges are not considered as overlapping.
func (r Rectangle) IsOverlappingWith(other Rectangle) bool {
	return r.X < other.X+other.Width && r.X+r.Width > other.X &&
		r.Y < other.Y+other.Height && r.Y+r.Height > other.Y
}

// BoundingBox returns the smallest rectangle containing both r1 and r2
func BoundingBox(r1, r2 Rectangle) Rectangle {
	x1 := minInt(r1.X, r2.X)
	y1 := minInt(r1.Y, r2.Y)
	x2 := maxInt(r1.X+r1.Width, r2.X+r2.Width)
	y2 := maxInt(r1.Y+r1.Height, r2.Y+r2.Height)
	return Rectangle{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

// Intersection returns the common part of r1 and r2.
// Zero rectangle is returned when they do not overlap.
func Intersection(r1, r2 Rectangle) Rectangle {
	x1 := maxInt(r1.X, r2.X)
	y1 := maxInt(r1.Y, r2.Y)
	x2 := minInt(r1.X+r1.Width, r2.X+r2.Width)
	y2 := minInt(r1.Y+r1.Height, r2.Y+r2.Height)
	if x1 < x2 && y1 < y2 {
		return Rectangle{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
	}
	return Rectangle{}
}

type Point struct {
	X float64
	Y float64
}

func NewPoint(x, y float64) Point {
	return Point{
		X: x,
		Y: y,
	}
}

func euclideanDistance(p1, p2 Point) float64 {
	return math.Sqrt(math.Pow(p1.X-p2.X, 2) + math.Pow(p1.Y-p2.Y, 2))
}
