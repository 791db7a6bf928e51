package tracking

import (
	"math"
	"testing"
)

const (
	eps = 0.00001
)

func TestEuclideanDistance(t *testing.T) {
	p1 := Point{X: 341, Y: 264}
	p2 := Point{X: 421, Y: 427}
	correctAnswer := 181.57367
	answer := euclideanDistance(p1, p2)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong answer: %v, correct answer: %v", answer, correctAnswer)
	}
}

func TestRectangleCenter(t *testing.T) {
	r := NewRect(10, 20, 5, 8)
	center := r.Center()
	if math.Abs(center.X-12.5) > eps || math.Abs(center.Y-24.0) > eps {
		t.Errorf("Wrong center: %v, correct center: %v", center, Point{X: 12.5, Y: 24})
	}
	cx, cy := r.centerInt()
	if cx != 12 || cy != 24 {
		t.Errorf("Wrong integer center: (%d, %d), correct center: (12, 24)", cx, cy)
	}
}

func TestRectangleOverlapping(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	touching := NewRect(10, 0, 10, 10)
	far := NewRect(100, 100, 10, 10)
	if !a.IsOverlappingWith(b) || !b.IsOverlappingWith(a) {
		t.Errorf("Rectangles %v and %v should overlap", a, b)
	}
	if a.IsOverlappingWith(touching) {
		t.Errorf("Rectangles %v and %v only touch each other, they should not overlap", a, touching)
	}
	if a.IsOverlappingWith(far) {
		t.Errorf("Rectangles %v and %v should not overlap", a, far)
	}
}

func TestBoundingBoxAndIntersection(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)

	bbox := BoundingBox(a, b)
	correctBBox := NewRect(0, 0, 15, 15)
	if bbox != correctBBox {
		t.Errorf("Wrong bounding box: %v, correct bounding box: %v", bbox, correctBBox)
	}

	inter := Intersection(a, b)
	correctInter := NewRect(5, 5, 5, 5)
	if inter != correctInter {
		t.Errorf("Wrong intersection: %v, correct intersection: %v", inter, correctInter)
	}

	disjoint := Intersection(a, NewRect(10, 0, 10, 10))
	if disjoint != (Rectangle{}) {
		t.Errorf("Intersection of touching rectangles should be empty, got %v", disjoint)
	}
}

func TestIoU(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(5, 5, 10, 10)
	correctAnswer := 25.0 / 175.0
	answer := IoU(a, b)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong IoU: %v, correct IoU: %v", answer, correctAnswer)
	}
	if iou := IoU(a, a); math.Abs(iou-1.0) > eps {
		t.Errorf("IoU of a rectangle with itself should be 1, got %v", iou)
	}
	if iou := IoU(a, NewRect(50, 50, 10, 10)); iou != 0 {
		t.Errorf("IoU of disjoint rectangles should be 0, got %v", iou)
	}
	if iou := IoU(Rectangle{}, Rectangle{}); iou != 0 {
		t.Errorf("IoU of empty rectangles should be 0, got %v", iou)
	}
}

func TestRoundHalfUp(t *testing.T) {
	values := []float64{2.5, -2.5, 2.4, -2.6, 0.5, -0.5}
	correctAnswers := []int{3, -2, 2, -3, 1, 0}
	for i, v := range values {
		if answer := roundHalfUp(v); answer != correctAnswers[i] {
			t.Errorf("Wrong rounding of %v: %d, correct answer: %d", v, answer, correctAnswers[i])
		}
	}
}
