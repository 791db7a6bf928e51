package tracking

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// TipTracker follows chopstick tips from frame to frame.
// Tips are never removed: a disappeared tip keeps receiving Lost shapes.
type TipTracker struct {
	cfg      Configuration
	smoother tipSmoother
	// Main storage, in creation order
	tips []*Tip
	// Position of each tip in storage
	index map[TipID]int
	// Index of the next frame to process
	nextFrameIndex int
	logger         *zap.Logger
}

// NewDefaultTipTracker creates a default instance of TipTracker. See DefaultConfiguration().
func NewDefaultTipTracker(opts ...Option) *TipTracker {
	tracker, err := NewTipTracker(DefaultConfiguration(), opts...)
	if err != nil {
		panic("should be impossible: " + err.Error())
	}
	return tracker
}

// NewTipTracker creates new instance of TipTracker
func NewTipTracker(cfg Configuration, opts ...Option) (*TipTracker, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &TipTracker{
		cfg:      cfg,
		smoother: newTipSmoother(cfg),
		tips:     make([]*Tip, 0),
		index:    make(map[TipID]int),
		logger:   o.logger,
	}, nil
}

// Tips returns tracked tips in creation order. Be careful: tips are not copied
func (tracker *TipTracker) Tips() []*Tip {
	return tracker.tips
}

// Tip returns the tip with the given identifier
func (tracker *TipTracker) Tip(id TipID) (*Tip, bool) {
	i, ok := tracker.index[id]
	if !ok {
		return nil, false
	}
	return tracker.tips[i], true
}

// FramesProcessed returns the number of frames given to Track so far
func (tracker *TipTracker) FramesProcessed() int {
	return tracker.nextFrameIndex
}

// findTipsInFrame makes a tentative tip for every reliable tip detection of the frame
func (tracker *TipTracker) findTipsInFrame(frame Frame) []*Tip {
	detections := detectedTips(frame, tracker.cfg.MinTipDetectionConfidence)
	frameTips := make([]*Tip, len(detections))
	for i, detection := range detections {
		id := TipID(fmt.Sprintf("T%d_%d", frame.Index, i+1))
		frameTips[i] = newTip(id, frame.Index, detection)
	}
	return frameTips
}

func (tracker *TipTracker) register(tip *Tip) {
	tracker.index[tip.ID] = len(tracker.tips)
	tracker.tips = append(tracker.tips, tip)
}

// liveTips returns the indices of tips which are not lost
func (tracker *TipTracker) liveTips() []int {
	live := make([]int, 0, len(tracker.tips))
	for i, tip := range tracker.tips {
		if !tip.IsLost() {
			live = append(live, i)
		}
	}
	return live
}

// Track updates every tip with the detections of the next frame.
// Frames must be given in order, starting at index 0.
func (tracker *TipTracker) Track(frame Frame) error {
	if frame.Index != tracker.nextFrameIndex {
		return &SequenceGapError{Expected: tracker.nextFrameIndex, Got: frame.Index}
	}
	tracker.nextFrameIndex++

	frameTips := tracker.findTipsInFrame(frame)
	if frame.Index < 1 {
		for _, frameTip := range frameTips {
			tracker.register(frameTip)
		}
		tracker.logger.Debug("tracking tips", zap.Int("frame_index", frame.Index), zap.Int("new_tips", len(frameTips)))
		return tracker.checkShapes(frame.Index)
	}

	// For each tip in this frame, try to find the corresponding one in the previous frame
	live := tracker.liveTips()
	priorityQueue := make(candidateHeap[tipPair], 0, len(frameTips)*len(live))
	seq := 0
	for candidateIndex, frameTip := range frameTips {
		currentShape := frameTip.LastShape()
		for _, trackIndex := range live {
			prevShape := tracker.tips[trackIndex].LastShape()
			score := MatchingScore(prevShape.Rectangle, currentShape.Rectangle)
			priorityQueue.Add(tipPair{candidate: candidateIndex, track: trackIndex}, score, seq)
			seq++
		}
	}
	matches := assignTips(
		tracker.cfg.TipMatchingAlgorithm,
		priorityQueue.Drain(),
		len(frameTips),
		len(tracker.tips),
		tracker.cfg.MaxTipMatchingScoreInPixels,
	)
	matchedCandidateByTrack := make(map[int]int, len(matches))
	matchedCandidates := make(map[int]struct{}, len(matches))
	for _, match := range matches {
		matchedCandidateByTrack[match.value.track] = match.value.candidate
		matchedCandidates[match.value.candidate] = struct{}{}
	}

	hidden := tracker.findTipsHiddenByArms(frame, live)

	// Update the tips
	for trackIndex, tip := range tracker.tips {
		lastShape := tip.LastShape()

		// Matched with a detected tip
		if candidateIndex, ok := matchedCandidateByTrack[trackIndex]; ok {
			detection := *frameTips[candidateIndex].LastShape().Source
			box, err := tracker.smoother.smooth(tip, detection)
			if err != nil {
				return errors.Wrapf(err, "Can't smooth tip %s at frame %d", tip.ID, frame.Index)
			}
			tip.appendShape(EstimatedTipShape{
				FrameIndex: frame.Index,
				Status:     StatusDetected,
				Source:     &detection,
				Rectangle:  box,
			})
			continue
		}

		// Hidden by an arm
		if _, ok := hidden[trackIndex]; ok {
			tip.appendShape(lastShape.frozenCopy(frame.Index, StatusHiddenByArm))
			continue
		}

		// Already lost
		if lastShape.Status == StatusLost {
			tip.appendShape(lastShape.frozenCopy(frame.Index, StatusLost))
			continue
		}

		// Missing: lost when not seen for a while
		status := StatusLost
		for _, shape := range tip.recentShapes(tracker.cfg.NbFramesAfterWhichATipIsConsideredMissing) {
			if shape.Status.keepsTrackAlive() {
				status = StatusNotDetected
				break
			}
		}
		tip.appendShape(lastShape.frozenCopy(frame.Index, status))
	}

	// Before adding new tips, filter the ones that are too close to existing ones in the same frame
	live = tracker.liveTips()
	newTips := make([]*Tip, 0, len(frameTips))
	for candidateIndex, frameTip := range frameTips {
		if _, ok := matchedCandidates[candidateIndex]; ok {
			continue
		}
		if tracker.isDuplicate(frameTip, live) {
			continue
		}
		newTips = append(newTips, frameTip)
	}
	for _, newTip := range newTips {
		tracker.register(newTip)
	}

	tracker.logger.Debug("tracking tips",
		zap.Int("frame_index", frame.Index),
		zap.Int("detected_tips", len(frameTips)),
		zap.Int("matched_tips", len(matches)),
		zap.Int("hidden_tips", len(hidden)),
		zap.Int("new_tips", len(newTips)),
		zap.Int("total_tips", len(tracker.tips)),
	)
	return tracker.checkShapes(frame.Index)
}

// findTipsHiddenByArms returns tips which are now under an arm. Because an arm box also covers
// areas that are not hidden by the arm, tips overlapping with an object of the frame are ignored.
func (tracker *TipTracker) findTipsHiddenByArms(frame Frame, live []int) map[int]struct{} {
	hidden := make(map[int]struct{})
	arms := frame.ObjectsOfType(ObjectTypeArm)
	if len(arms) == 0 {
		return hidden
	}
	maxScore := tracker.cfg.MaxMatchingScoreToConsiderTipNotHiddenByArm
	for _, trackIndex := range live {
		lastShape := tracker.tips[trackIndex].LastShape()
		if lastShape.Status == StatusDetectedOnce {
			continue
		}
		overlapping := false
		for _, arm := range arms {
			if arm.IsOverlappingWith(lastShape.Rectangle) {
				overlapping = true
				break
			}
		}
		if !overlapping {
			continue
		}
		visible := false
		for _, object := range frame.Objects {
			if MatchingScore(lastShape.Rectangle, object.Rectangle) <= maxScore {
				visible = true
				break
			}
		}
		if !visible {
			hidden[trackIndex] = struct{}{}
		}
	}
	return hidden
}

// isDuplicate checks if a tentative tip is close to an existing live tip
func (tracker *TipTracker) isDuplicate(frameTip *Tip, live []int) bool {
	shape := frameTip.LastShape()
	for _, trackIndex := range live {
		score := MatchingScore(tracker.tips[trackIndex].LastShape().Rectangle, shape.Rectangle)
		if score <= tracker.cfg.MaxScoreToConsiderNewTipAsTheSameAsExisting {
			return true
		}
	}
	return false
}

// checkShapes verifies that every tip got a shape for the frame
func (tracker *TipTracker) checkShapes(frameIndex int) error {
	for _, tip := range tracker.tips {
		if tip.LastShape().FrameIndex != frameIndex {
			return &InvariantViolation{
				TrackID:    string(tip.ID),
				FrameIndex: frameIndex,
				Reason:     fmt.Sprintf("latest shape belongs to frame %d", tip.LastShape().FrameIndex),
			}
		}
	}
	return nil
}

// CheckTipHistory verifies that the tip has one shape per frame from its birth up to frameIndex
// and that nothing but Lost follows a Lost shape
func CheckTipHistory(tip *Tip, frameIndex int) error {
	if len(tip.Shapes) == 0 {
		return &InvariantViolation{TrackID: string(tip.ID), FrameIndex: frameIndex, Reason: "empty history"}
	}
	expected := frameIndex - tip.BirthFrameIndex() + 1
	if len(tip.Shapes) != expected {
		return &InvariantViolation{
			TrackID:    string(tip.ID),
			FrameIndex: frameIndex,
			Reason:     fmt.Sprintf("history has %d shapes, expected %d", len(tip.Shapes), expected),
		}
	}
	lost := false
	for i, shape := range tip.Shapes {
		if shape.FrameIndex != tip.BirthFrameIndex()+i {
			return &InvariantViolation{
				TrackID:    string(tip.ID),
				FrameIndex: frameIndex,
				Reason:     fmt.Sprintf("shape %d belongs to frame %d", i, shape.FrameIndex),
			}
		}
		if lost && shape.Status != StatusLost {
			return &InvariantViolation{
				TrackID:    string(tip.ID),
				FrameIndex: frameIndex,
				Reason:     fmt.Sprintf("shape of frame %d is %s after being lost", shape.FrameIndex, shape.Status),
			}
		}
		lost = shape.Status == StatusLost
	}
	return nil
}

// FindAllTips tracks tips over a whole sequence of compensated frames
func FindAllTips(cfg Configuration, frames []Frame, opts ...Option) ([]*Tip, error) {
	tracker, err := NewTipTracker(cfg, opts...)
	if err != nil {
		return nil, err
	}
	for _, frame := range frames {
		if err := tracker.Track(frame); err != nil {
			return nil, err
		}
	}
	return tracker.Tips(), nil
}
