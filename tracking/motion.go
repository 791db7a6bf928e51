package tracking

import (
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
)

// MotionCompensator re-expresses the coordinates of every frame in the coordinate system of the first one.
// It must be fed with consecutive raw frames.
type MotionCompensator struct {
	// Pairs of tips with a higher score are ignored
	maxTipMatchingScore float64
	// Number of best tip pairs averaged to estimate the translation
	nbTipsToUse      int
	minTipConfidence float64
	// Previous raw (not compensated) frame
	prevFrame *Frame
	offsetX   float64
	offsetY   float64
	logger    *zap.Logger
}

// NewMotionCompensator creates a new instance of MotionCompensator
func NewMotionCompensator(cfg Configuration, opts ...Option) (*MotionCompensator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &MotionCompensator{
		maxTipMatchingScore: cfg.MaxTipMatchingScoreInPixels,
		nbTipsToUse:         cfg.NbTipsToUseToDetectCameraMotion,
		minTipConfidence:    cfg.MinTipDetectionConfidence,
		logger:              o.logger,
	}, nil
}

// tipMotion is a pair of tips detected in two consecutive frames
type tipMotion struct {
	prev DetectedObject
	curr DetectedObject
	// Indices of both tips, so a tip is never used twice
	prevIndex int
	currIndex int
}

// EstimateCameraMotion estimates the (dx, dy) translation between two consecutive frames from their tips.
// Tips are greedily paired by ascending matching score, then the nbTipsToUse best pairs are averaged.
// (0, 0) is returned when no pair is close enough.
func EstimateCameraMotion(prevTips, currTips []DetectedObject, maxScore float64, nbTipsToUse int) (float64, float64) {
	priorityQueue := make(candidateHeap[tipMotion], 0, len(prevTips)*len(currTips))
	seq := 0
	for currIndex, curr := range currTips {
		for prevIndex, prev := range prevTips {
			priorityQueue.Add(tipMotion{prev: prev, curr: curr, prevIndex: prevIndex, currIndex: currIndex}, MatchingScore(prev.Rectangle, curr.Rectangle), seq)
			seq++
		}
	}

	// We need to prevent double use of tips
	reservedPrev := make(map[int]struct{})
	reservedCurr := make(map[int]struct{})
	dxs := make([]float64, 0, nbTipsToUse)
	dys := make([]float64, 0, nbTipsToUse)
	for priorityQueue.Len() > 0 && len(dxs) < nbTipsToUse {
		pair := priorityQueue.Pop()
		if pair.score > maxScore {
			break
		}
		if _, ok := reservedPrev[pair.value.prevIndex]; ok {
			continue
		}
		if _, ok := reservedCurr[pair.value.currIndex]; ok {
			continue
		}
		reservedPrev[pair.value.prevIndex] = struct{}{}
		reservedCurr[pair.value.currIndex] = struct{}{}
		dxs = append(dxs, float64(pair.value.curr.X-pair.value.prev.X))
		dys = append(dys, float64(pair.value.curr.Y-pair.value.prev.Y))
	}
	if len(dxs) == 0 {
		return 0, 0
	}
	return stat.Mean(dxs, nil), stat.Mean(dys, nil)
}

// Compensate returns the frame with coordinates relative to the first frame seen by the compensator.
// The first frame is returned unchanged with a zero offset.
func (mc *MotionCompensator) Compensate(frame Frame) Frame {
	if mc.prevFrame == nil {
		mc.prevFrame = &frame
		return Frame{Index: frame.Index, Objects: frame.Objects}
	}
	dx, dy := EstimateCameraMotion(
		detectedTips(*mc.prevFrame, mc.minTipConfidence),
		detectedTips(frame, mc.minTipConfidence),
		mc.maxTipMatchingScore,
		mc.nbTipsToUse,
	)
	mc.offsetX -= dx
	mc.offsetY -= dy
	mc.prevFrame = &frame

	compensatedObjects := make([]DetectedObject, len(frame.Objects))
	for i, object := range frame.Objects {
		compensatedObjects[i] = DetectedObject{
			Rectangle: Rectangle{
				X:      roundHalfUp(float64(object.X) + mc.offsetX),
				Y:      roundHalfUp(float64(object.Y) + mc.offsetY),
				Width:  object.Width,
				Height: object.Height,
			},
			ObjectType: object.ObjectType,
			Confidence: object.Confidence,
		}
	}
	mc.logger.Debug("camera motion compensated",
		zap.Int("frame_index", frame.Index),
		zap.Float64("dx", dx),
		zap.Float64("dy", dy),
		zap.Float64("image_x", mc.offsetX),
		zap.Float64("image_y", mc.offsetY),
	)
	return Frame{
		Index:   frame.Index,
		Objects: compensatedObjects,
		ImageX:  mc.offsetX,
		ImageY:  mc.offsetY,
	}
}

// CompensateCameraMotion compensates a whole sequence of frames
func CompensateCameraMotion(cfg Configuration, frames []Frame, opts ...Option) ([]Frame, error) {
	compensator, err := NewMotionCompensator(cfg, opts...)
	if err != nil {
		return nil, err
	}
	compensatedFrames := make([]Frame, 0, len(frames))
	for _, frame := range frames {
		compensatedFrames = append(compensatedFrames, compensator.Compensate(frame))
	}
	return compensatedFrames, nil
}
