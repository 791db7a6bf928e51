package tracking

import (
	"testing"
)

// crossedPairs has a cheap first pair which prevents the optimal assignment for a greedy matcher
func crossedPairs() []*scoredCandidate[tipPair] {
	h := make(candidateHeap[tipPair], 0)
	h.Add(tipPair{candidate: 0, track: 0}, 1.0, 0)
	h.Add(tipPair{candidate: 0, track: 1}, 2.0, 1)
	h.Add(tipPair{candidate: 1, track: 0}, 2.0, 2)
	h.Add(tipPair{candidate: 1, track: 1}, 10.0, 3)
	return h.Drain()
}

func TestGreedyAssignment(t *testing.T) {
	matches := assignTips(MatchingAlgorithmGreedy, crossedPairs(), 2, 2, 50.0)
	correctPairs := []tipPair{{candidate: 0, track: 0}, {candidate: 1, track: 1}}
	if len(matches) != len(correctPairs) {
		t.Fatalf("Wrong number of matches: %d, expected %d", len(matches), len(correctPairs))
	}
	for i, match := range matches {
		if match.value != correctPairs[i] {
			t.Errorf("Wrong match at position %d: %+v, expected %+v", i, match.value, correctPairs[i])
		}
	}
}

func TestGreedyAssignmentThreshold(t *testing.T) {
	matches := assignTips(MatchingAlgorithmGreedy, crossedPairs(), 2, 2, 5.0)
	if len(matches) != 1 {
		t.Fatalf("Wrong number of matches: %d, expected 1", len(matches))
	}
	if match := matches[0].value; match != (tipPair{candidate: 0, track: 0}) {
		t.Errorf("Wrong match: %+v, expected candidate 0 with track 0", match)
	}
}

func TestHungarianAssignment(t *testing.T) {
	matches := assignTips(MatchingAlgorithmHungarian, crossedPairs(), 2, 2, 50.0)
	correctPairs := []tipPair{{candidate: 0, track: 1}, {candidate: 1, track: 0}}
	if len(matches) != len(correctPairs) {
		t.Fatalf("Wrong number of matches: %d, expected %d", len(matches), len(correctPairs))
	}
	for i, match := range matches {
		if match.value != correctPairs[i] {
			t.Errorf("Wrong match at position %d: %+v, expected %+v", i, match.value, correctPairs[i])
		}
	}
}

func TestHungarianAssignmentRectangular(t *testing.T) {
	// One detected tip, three existing tips: only the closest one gets it
	h := make(candidateHeap[tipPair], 0)
	h.Add(tipPair{candidate: 0, track: 0}, 30.0, 0)
	h.Add(tipPair{candidate: 0, track: 1}, 3.0, 1)
	h.Add(tipPair{candidate: 0, track: 2}, 80.0, 2)
	matches := assignTips(MatchingAlgorithmHungarian, h.Drain(), 1, 3, 50.0)
	if len(matches) != 1 {
		t.Fatalf("Wrong number of matches: %d, expected 1", len(matches))
	}
	if match := matches[0].value; match != (tipPair{candidate: 0, track: 1}) {
		t.Errorf("Wrong match: %+v, expected candidate 0 with track 1", match)
	}
}

func TestHungarianAssignmentNothingAllowed(t *testing.T) {
	matches := assignTips(MatchingAlgorithmHungarian, crossedPairs(), 2, 2, 0.5)
	if len(matches) != 0 {
		t.Errorf("No pair is within the threshold, got %d matches", len(matches))
	}
}
