package tracking

import (
	"math"
	"testing"
)

func TestMatchingScore(t *testing.T) {
	prev := NewRect(100, 100, 20, 20)
	curr := NewRect(103, 104, 22, 19)
	// Centers (110, 110) and (114, 113.5): distance is 5.3151...
	correctAnswer := math.Sqrt(16+12.25) + 2 + 1
	answer := MatchingScore(prev, curr)
	if math.Abs(answer-correctAnswer) > eps {
		t.Errorf("Wrong score: %v, correct score: %v", answer, correctAnswer)
	}
	if answer := MatchingScore(prev, prev); answer != 0 {
		t.Errorf("Score of identical rectangles should be 0, got %v", answer)
	}
}

func TestChopstickScore(t *testing.T) {
	box := NewRect(100, 100, 420, 20)
	if answer := ChopstickScore(box, box); math.Abs(answer) > eps {
		t.Errorf("Perfect fit should have score 0, got %v", answer)
	}
	if answer := ChopstickScore(box, NewRect(0, 0, 10, 10)); math.Abs(answer-1.0) > eps {
		t.Errorf("Disjoint boxes should have score 1, got %v", answer)
	}
	half := NewRect(100, 100, 210, 20)
	if answer := ChopstickScore(box, half); math.Abs(answer-0.5) > eps {
		t.Errorf("Half fit should have score 0.5, got %v", answer)
	}
}
