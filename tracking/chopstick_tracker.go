package tracking

import (
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"
)

// ChopstickTracker links tracked tips into chopsticks by using detected chopstick boxes.
// It reads tip histories but never modifies them, so tips must be tracked up to the frame first.
type ChopstickTracker struct {
	cfg Configuration
	// Main storage, in creation order
	chopsticks []*Chopstick
	// Index of the next frame to process
	nextFrameIndex int
	logger         *zap.Logger
}

// NewDefaultChopstickTracker creates a default instance of ChopstickTracker. See DefaultConfiguration().
func NewDefaultChopstickTracker(opts ...Option) *ChopstickTracker {
	tracker, err := NewChopstickTracker(DefaultConfiguration(), opts...)
	if err != nil {
		panic("should be impossible: " + err.Error())
	}
	return tracker
}

// NewChopstickTracker creates new instance of ChopstickTracker
func NewChopstickTracker(cfg Configuration, opts ...Option) (*ChopstickTracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &ChopstickTracker{
		cfg:        cfg,
		chopsticks: make([]*Chopstick, 0),
		logger:     o.logger,
	}, nil
}

// Chopsticks returns tracked chopsticks in creation order. Be careful: chopsticks are not copied
func (tracker *ChopstickTracker) Chopsticks() []*Chopstick {
	return tracker.chopsticks
}

// Chopstick returns the most recent chopstick with the given identifier.
// A pair of tips can be linked again after its chopstick has been lost, both share the same identifier.
func (tracker *ChopstickTracker) Chopstick(id ChopstickID) (*Chopstick, bool) {
	for i := len(tracker.chopsticks) - 1; i >= 0; i-- {
		if tracker.chopsticks[i].ID == id {
			return tracker.chopsticks[i], true
		}
	}
	return nil, false
}

// activeTip is a tip with its not lost shape of the current frame
type activeTip struct {
	id    TipID
	shape EstimatedTipShape
}

func (at activeTip) center() (int, int) {
	return at.shape.centerInt()
}

// chopstickMatch associates two active tips with a detected chopstick box
type chopstickMatch struct {
	tip1 int
	tip2 int
	box  int
}

// findActiveTips returns the tips having a not lost shape for the frame
func findActiveTips(frameIndex int, tips []*Tip) ([]activeTip, error) {
	active := make([]activeTip, 0, len(tips))
	for _, tip := range tips {
		if tip.BirthFrameIndex() > frameIndex {
			continue
		}
		shape, ok := tip.ShapeAt(frameIndex)
		if !ok || shape.FrameIndex != frameIndex {
			return nil, &InvariantViolation{TrackID: string(tip.ID), FrameIndex: frameIndex, Reason: "tip has no shape for the frame"}
		}
		if shape.Status != StatusLost {
			active = append(active, activeTip{id: tip.ID, shape: shape})
		}
	}
	return active, nil
}

// Track updates chopsticks with the tips and detected chopsticks of the next frame
func (tracker *ChopstickTracker) Track(frame Frame, tips []*Tip) error {
	if frame.Index != tracker.nextFrameIndex {
		return &SequenceGapError{Expected: tracker.nextFrameIndex, Got: frame.Index}
	}
	tracker.nextFrameIndex++

	active, err := findActiveTips(frame.Index, tips)
	if err != nil {
		return err
	}
	activeByID := make(map[TipID]int, len(active))
	for i, at := range active {
		activeByID[at.id] = i
	}
	boxes := frame.ObjectsOfType(ObjectTypeChopstick)

	matches := tracker.matchTipsWithDetectedChopsticks(active, boxes)
	bestMatchesInFrame := selectBestMatchesInFrame(matches)
	bestMatches := tracker.selectBestMatchesWithHistory(matches, active)

	// Matches of this frame alone that conflict with history
	selectedWithHistory := make(map[*scoredCandidate[chopstickMatch]]struct{}, len(bestMatches))
	for _, match := range bestMatches {
		selectedWithHistory[match] = struct{}{}
	}
	conflictingMatches := make([]*scoredCandidate[chopstickMatch], 0)
	for _, match := range bestMatchesInFrame {
		if _, ok := selectedWithHistory[match]; !ok {
			conflictingMatches = append(conflictingMatches, match)
		}
	}

	// Update the existing chopsticks
	processedMatches := make(map[*scoredCandidate[chopstickMatch]]struct{})
	for _, chopstick := range tracker.chopsticks {
		lastShape := chopstick.LastShape()
		i1, ok1 := activeByID[chopstick.Tip1]
		i2, ok2 := activeByID[chopstick.Tip2]
		if lastShape.Status == StatusLost || !ok1 || !ok2 {
			chopstick.Shapes = append(chopstick.Shapes, EstimatedChopstickShape{
				FrameIndex:              frame.Index,
				Status:                  StatusLost,
				Tip1X:                   lastShape.Tip1X,
				Tip1Y:                   lastShape.Tip1Y,
				Tip2X:                   lastShape.Tip2X,
				Tip2Y:                   lastShape.Tip2Y,
				IsRejectedDueToConflict: lastShape.IsRejectedDueToConflict,
				MatchingScore:           math.Inf(1),
			})
			continue
		}

		tip1X, tip1Y := active[i1].center()
		tip2X, tip2Y := active[i2].center()
		shape := EstimatedChopstickShape{
			FrameIndex:              frame.Index,
			Tip1X:                   tip1X,
			Tip1Y:                   tip1Y,
			Tip2X:                   tip2X,
			Tip2Y:                   tip2Y,
			IsRejectedDueToConflict: lastShape.IsRejectedDueToConflict,
			MatchingScore:           math.Inf(1),
		}

		if match := findLinkingMatch(chopstick, bestMatches, active); match != nil {
			processedMatches[match] = struct{}{}
			detection := boxes[match.value.box]
			shape.Status = StatusDetected
			shape.Source = &detection
			shape.IsRejectedDueToConflict = false
			shape.MatchingScore = match.score
		} else if match := findLinkingMatch(chopstick, conflictingMatches, active); match != nil {
			// Would have been matched without considering history
			processedMatches[match] = struct{}{}
			detection := boxes[match.value.box]
			shape.Status = StatusDetected
			shape.Source = &detection
			shape.IsRejectedDueToConflict = true
			shape.MatchingScore = match.score
		} else if active[i1].shape.Status == StatusHiddenByArm || active[i2].shape.Status == StatusHiddenByArm {
			shape.Status = StatusHiddenByArm
		} else {
			shape.Status = StatusLost
			for _, recentShape := range chopstick.recentShapes(tracker.cfg.NbFramesAfterWhichAChopstickIsConsideredMissing) {
				if recentShape.Status == StatusDetected || recentShape.Status == StatusHiddenByArm {
					shape.Status = StatusNotDetected
					break
				}
			}
		}
		chopstick.Shapes = append(chopstick.Shapes, shape)
	}

	// Add new chopsticks
	newChopsticks := make([]*Chopstick, 0)
	spawned := make(map[ChopstickID]struct{})
	spawn := func(match *scoredCandidate[chopstickMatch], isRejected bool) {
		if _, ok := processedMatches[match]; ok {
			return
		}
		first, second := active[match.value.tip1], active[match.value.tip2]
		if second.id < first.id {
			first, second = second, first
		}
		id, tip1, tip2 := NewChopstickID(first.id, second.id)
		if _, ok := spawned[id]; ok {
			return
		}
		if tracker.hasLiveChopstick(tip1, tip2) {
			return
		}
		spawned[id] = struct{}{}
		tip1X, tip1Y := first.center()
		tip2X, tip2Y := second.center()
		detection := boxes[match.value.box]
		newChopsticks = append(newChopsticks, &Chopstick{
			ID:   id,
			Tip1: tip1,
			Tip2: tip2,
			Shapes: []EstimatedChopstickShape{{
				FrameIndex:              frame.Index,
				Status:                  StatusDetectedOnce,
				Source:                  &detection,
				Tip1X:                   tip1X,
				Tip1Y:                   tip1Y,
				Tip2X:                   tip2X,
				Tip2Y:                   tip2Y,
				IsRejectedDueToConflict: isRejected,
				MatchingScore:           match.score,
			}},
		})
	}
	for _, match := range bestMatches {
		spawn(match, false)
	}
	for _, match := range conflictingMatches {
		spawn(match, true)
	}
	tracker.chopsticks = append(tracker.chopsticks, newChopsticks...)

	accepted, rejected := tracker.arbitrateConflicts()

	tracker.logger.Debug("tracking chopsticks",
		zap.Int("frame_index", frame.Index),
		zap.Int("active_tips", len(active)),
		zap.Int("candidates", len(matches)),
		zap.Int("conflicting_candidates", len(conflictingMatches)),
		zap.Int("new_chopsticks", len(newChopsticks)),
		zap.Int("accepted_chopsticks", accepted),
		zap.Int("rejected_chopsticks", rejected),
	)

	for _, chopstick := range tracker.chopsticks {
		if chopstick.LastShape().FrameIndex != frame.Index {
			return &InvariantViolation{
				TrackID:    string(chopstick.ID),
				FrameIndex: frame.Index,
				Reason:     fmt.Sprintf("latest shape belongs to frame %d", chopstick.LastShape().FrameIndex),
			}
		}
	}
	return nil
}

// matchTipsWithDetectedChopsticks scores every pair of active tips at a chopstick distance
// against every detected chopstick overlapping their bounding box.
// Result is sorted by ascending score and only keeps acceptable scores.
func (tracker *ChopstickTracker) matchTipsWithDetectedChopsticks(active []activeTip, boxes []DetectedObject) []*scoredCandidate[chopstickMatch] {
	priorityQueue := make(candidateHeap[chopstickMatch], 0)
	seq := 0
	for i := 0; i < len(active); i++ {
		for j := i + 1; j < len(active); j++ {
			dist := euclideanDistance(active[i].shape.Center(), active[j].shape.Center())
			if dist < tracker.cfg.MinChopstickLengthInPixels || dist > tracker.cfg.MaxChopstickLengthInPixels {
				continue
			}
			tipsBoundingBox := BoundingBox(active[i].shape.Rectangle, active[j].shape.Rectangle)
			for k, box := range boxes {
				if !tipsBoundingBox.IsOverlappingWith(box.Rectangle) {
					continue
				}
				score := ChopstickScore(tipsBoundingBox, box.Rectangle)
				priorityQueue.Add(chopstickMatch{tip1: i, tip2: j, box: k}, score, seq)
				seq++
			}
		}
	}
	sorted := priorityQueue.Drain()
	acceptable := make([]*scoredCandidate[chopstickMatch], 0, len(sorted))
	for _, match := range sorted {
		if match.score > tracker.cfg.MaxMatchingScoreToConsiderTwoTipsAsAChopstick {
			break
		}
		acceptable = append(acceptable, match)
	}
	return acceptable
}

// selectBestMatchesInFrame greedily picks matches without considering previous frames
func selectBestMatchesInFrame(matches []*scoredCandidate[chopstickMatch]) []*scoredCandidate[chopstickMatch] {
	processedTips := make(map[int]struct{})
	processedBoxes := make(map[int]struct{})
	selected := make([]*scoredCandidate[chopstickMatch], 0)
	for _, match := range matches {
		if isMatchUsed(match, processedTips, processedBoxes) {
			continue
		}
		reserveMatch(match, processedTips, processedBoxes)
		selected = append(selected, match)
	}
	return selected
}

// selectBestMatchesWithHistory greedily picks matches but ignores the ones linking a tip to another
// tip than the one of its current chopstick. Confirmations of existing chopsticks are always allowed.
func (tracker *ChopstickTracker) selectBestMatchesWithHistory(matches []*scoredCandidate[chopstickMatch], active []activeTip) []*scoredCandidate[chopstickMatch] {
	processedTips := make(map[int]struct{})
	processedBoxes := make(map[int]struct{})
	selected := make([]*scoredCandidate[chopstickMatch], 0)
	for _, match := range matches {
		if isMatchUsed(match, processedTips, processedBoxes) {
			continue
		}
		tip1 := active[match.value.tip1].id
		tip2 := active[match.value.tip2].id
		hasConflict := false
		hasIdentical := false
		for _, chopstick := range tracker.chopsticks {
			if chopstick.IsLost() || chopstick.LastShape().IsRejectedDueToConflict {
				continue
			}
			if !chopstick.HasTip(tip1) && !chopstick.HasTip(tip2) {
				continue
			}
			hasConflict = true
			if chopstick.Links(tip1, tip2) {
				hasIdentical = true
				break
			}
		}
		if hasConflict && !hasIdentical {
			continue
		}
		reserveMatch(match, processedTips, processedBoxes)
		selected = append(selected, match)
	}
	return selected
}

func isMatchUsed(match *scoredCandidate[chopstickMatch], processedTips, processedBoxes map[int]struct{}) bool {
	if _, ok := processedTips[match.value.tip1]; ok {
		return true
	}
	if _, ok := processedTips[match.value.tip2]; ok {
		return true
	}
	_, ok := processedBoxes[match.value.box]
	return ok
}

func reserveMatch(match *scoredCandidate[chopstickMatch], processedTips, processedBoxes map[int]struct{}) {
	processedTips[match.value.tip1] = struct{}{}
	processedTips[match.value.tip2] = struct{}{}
	processedBoxes[match.value.box] = struct{}{}
}

// hasLiveChopstick checks whether a not lost chopstick already links both tips
func (tracker *ChopstickTracker) hasLiveChopstick(tip1, tip2 TipID) bool {
	for _, chopstick := range tracker.chopsticks {
		if !chopstick.IsLost() && chopstick.Links(tip1, tip2) {
			return true
		}
	}
	return false
}

// findLinkingMatch returns the first match joining the tips of the chopstick
func findLinkingMatch(chopstick *Chopstick, matches []*scoredCandidate[chopstickMatch], active []activeTip) *scoredCandidate[chopstickMatch] {
	for _, match := range matches {
		if chopstick.Links(active[match.value.tip1].id, active[match.value.tip2].id) {
			return match
		}
	}
	return nil
}

// arbitrateConflicts ranks not lost chopsticks by historical confidence and rejects the ones
// sharing a tip with a better ranked accepted chopstick.
// Only the rejection flag of the latest shapes is modified.
func (tracker *ChopstickTracker) arbitrateConflicts() (int, int) {
	type rankedChopstick struct {
		chopstick  *Chopstick
		confidence float64
	}
	ranked := make([]rankedChopstick, 0, len(tracker.chopsticks))
	for _, chopstick := range tracker.chopsticks {
		if chopstick.IsLost() {
			continue
		}
		ranked = append(ranked, rankedChopstick{chopstick: chopstick, confidence: chopstick.HistoricalConfidence()})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].confidence > ranked[j].confidence
	})

	rejected := make(map[*Chopstick]struct{})
	accepted := make([]*Chopstick, 0, len(ranked))
	for _, candidate := range ranked {
		if _, ok := rejected[candidate.chopstick]; ok {
			continue
		}
		accepted = append(accepted, candidate.chopstick)
		for _, other := range ranked {
			if other.chopstick != candidate.chopstick && other.chopstick.SharesTipWith(candidate.chopstick) {
				rejected[other.chopstick] = struct{}{}
			}
		}
	}

	for _, chopstick := range accepted {
		lastShape := chopstick.lastShapeRef()
		if lastShape.IsRejectedDueToConflict {
			lastShape.IsRejectedDueToConflict = false
		}
	}
	for chopstick := range rejected {
		lastShape := chopstick.lastShapeRef()
		if !lastShape.IsRejectedDueToConflict {
			lastShape.IsRejectedDueToConflict = true
		}
	}
	return len(accepted), len(rejected)
}

// FindAllChopsticks links tips into chopsticks over a whole sequence of compensated frames.
// Tips must have been tracked over the same frames.
func FindAllChopsticks(cfg Configuration, frames []Frame, tips []*Tip, opts ...Option) ([]*Chopstick, error) {
	tracker, err := NewChopstickTracker(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for _, frame := range frames {
		if err := tracker.Track(frame, tips); err != nil {
			return nil, err
		}
	}
	return tracker.Chopsticks(), nil
}
