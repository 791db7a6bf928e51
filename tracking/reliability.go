package tracking

// ReliabilityFilter drops detections below the minimum confidence of their type
type ReliabilityFilter struct {
	minTipConfidence       float64
	minChopstickConfidence float64
	minArmConfidence       float64
}

// NewReliabilityFilter creates a filter using the detection confidence thresholds of cfg
func NewReliabilityFilter(cfg Configuration) (*ReliabilityFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ReliabilityFilter{
		minTipConfidence:       cfg.MinTipDetectionConfidence,
		minChopstickConfidence: cfg.MinChopstickDetectionConfidence,
		minArmConfidence:       cfg.MinArmDetectionConfidence,
	}, nil
}

func (filter *ReliabilityFilter) minConfidence(objectType DetectedObjectType) float64 {
	switch {
	case objectType.IsTip():
		return filter.minTipConfidence
	case objectType == ObjectTypeChopstick:
		return filter.minChopstickConfidence
	default:
		return filter.minArmConfidence
	}
}

// Filter returns a copy of the frame without the unreliable objects. Order is preserved.
func (filter *ReliabilityFilter) Filter(frame Frame) Frame {
	reliableObjects := make([]DetectedObject, 0, len(frame.Objects))
	for _, object := range frame.Objects {
		if object.Confidence >= filter.minConfidence(object.ObjectType) {
			reliableObjects = append(reliableObjects, object)
		}
	}
	return Frame{
		Index:   frame.Index,
		Objects: reliableObjects,
		ImageX:  frame.ImageX,
		ImageY:  frame.ImageY,
	}
}

// RemoveUnreliableDetectedObjects filters every frame
func RemoveUnreliableDetectedObjects(cfg Configuration, frames []Frame) ([]Frame, error) {
	filter, err := NewReliabilityFilter(cfg)
	if err != nil {
		return nil, err
	}
	reliableFrames := make([]Frame, len(frames))
	for i := range frames {
		reliableFrames[i] = filter.Filter(frames[i])
	}
	return reliableFrames, nil
}

// detectedTips returns the tips of the frame strictly above the minimum tip confidence
func detectedTips(frame Frame, minTipConfidence float64) []DetectedObject {
	tips := make([]DetectedObject, 0, len(frame.Objects))
	for _, object := range frame.Objects {
		if object.ObjectType.IsTip() && object.Confidence > minTipConfidence {
			tips = append(tips, object)
		}
	}
	return tips
}
