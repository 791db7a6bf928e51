package tracking

import "sort"

// tipPair refers to a tip detected in the current frame and an existing tip, by their indices
type tipPair struct {
	candidate int
	track     int
}

// assignTips picks one-to-one associations among sorted candidates whose score is not above maxScore.
// Returned associations are sorted by score, then by discovery order.
func assignTips(algorithm MatchingAlgorithm, sorted []*scoredCandidate[tipPair], nbCandidates, nbTracks int, maxScore float64) []*scoredCandidate[tipPair] {
	switch algorithm {
	case MatchingAlgorithmHungarian:
		return hungarianAssignment(sorted, nbCandidates, nbTracks, maxScore)
	default:
		return greedyAssignment(sorted, maxScore)
	}
}

// greedyAssignment walks candidates by ascending score and keeps the ones whose
// detected tip and existing tip are both still free
func greedyAssignment(sorted []*scoredCandidate[tipPair], maxScore float64) []*scoredCandidate[tipPair] {
	matches := make([]*scoredCandidate[tipPair], 0)
	reservedCandidates := make(map[int]struct{})
	reservedTracks := make(map[int]struct{})
	for _, pair := range sorted {
		if pair.score > maxScore {
			break
		}
		if _, ok := reservedCandidates[pair.value.candidate]; ok {
			continue
		}
		if _, ok := reservedTracks[pair.value.track]; ok {
			continue
		}
		reservedCandidates[pair.value.candidate] = struct{}{}
		reservedTracks[pair.value.track] = struct{}{}
		matches = append(matches, pair)
	}
	return matches
}

// hungarianAssignment solves the optimal assignment over pairs within maxScore: as many pairs as possible,
// then the lowest total score. Forbidden cells cost more than any set of allowed pairs.
func hungarianAssignment(sorted []*scoredCandidate[tipPair], nbCandidates, nbTracks int, maxScore float64) []*scoredCandidate[tipPair] {
	matches := make([]*scoredCandidate[tipPair], 0)
	if nbCandidates == 0 || nbTracks == 0 {
		return matches
	}
	// Rectangular matrix - pad to make it square
	paddedSize := maxInt(nbTracks, nbCandidates)
	forbiddenCost := float64(paddedSize)*(maxScore+1.0) + 1.0
	cost := make([][]float64, paddedSize)
	for i := range cost {
		cost[i] = make([]float64, paddedSize)
		for j := range cost[i] {
			cost[i][j] = forbiddenCost
		}
	}
	byCell := make(map[tipPair]*scoredCandidate[tipPair])
	for _, pair := range sorted {
		if pair.score > maxScore {
			break
		}
		cost[pair.value.track][pair.value.candidate] = pair.score
		byCell[pair.value] = pair
	}
	if len(byCell) == 0 {
		return matches
	}
	for trackIndex, candidateIndex := range solveAssignment(cost) {
		if trackIndex >= nbTracks || candidateIndex >= nbCandidates {
			continue
		}
		if pair, ok := byCell[tipPair{candidate: candidateIndex, track: trackIndex}]; ok {
			matches = append(matches, pair)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score < matches[j].score
		}
		return matches[i].seq < matches[j].seq
	})
	return matches
}
