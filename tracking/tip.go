package tracking

// TipID identifies a Tip. Format is "T<birth frame index>_<sequence>".
type TipID string

// EstimatedTipShape is one frame of a Tip history.
// Rectangle holds the smoothed box, Source the raw detection it comes from.
// Source is nil for synthesized shapes (not detected, hidden or lost).
type EstimatedTipShape struct {
	FrameIndex int                  `json:"frame_index"`
	Status     EstimatedShapeStatus `json:"status"`
	Source     *DetectedObject      `json:"source,omitempty"`
	Rectangle
}

// rawBox returns the box of the originating detection when there is one, the smoothed box otherwise
func (shape EstimatedTipShape) rawBox() Rectangle {
	if shape.Source != nil {
		return shape.Source.Rectangle
	}
	return shape.Rectangle
}

// frozenCopy makes a synthesized shape for another frame with unchanged geometry
func (shape EstimatedTipShape) frozenCopy(frameIndex int, status EstimatedShapeStatus) EstimatedTipShape {
	return EstimatedTipShape{
		FrameIndex: frameIndex,
		Status:     status,
		Rectangle:  shape.Rectangle,
	}
}

// Tip is the tracked identity of one chopstick endpoint.
// Shapes is append-only with exactly one shape per frame since its birth.
type Tip struct {
	ID     TipID               `json:"id"`
	Shapes []EstimatedTipShape `json:"shapes"`
}

func newTip(id TipID, frameIndex int, detection DetectedObject) *Tip {
	source := detection
	return &Tip{
		ID: id,
		Shapes: []EstimatedTipShape{{
			FrameIndex: frameIndex,
			Status:     StatusDetectedOnce,
			Source:     &source,
			Rectangle:  detection.Rectangle,
		}},
	}
}

// LastShape returns tip's latest shape
func (tip *Tip) LastShape() EstimatedTipShape {
	return tip.Shapes[len(tip.Shapes)-1]
}

// BirthFrameIndex returns index of the frame where tip has been seen for the first time
func (tip *Tip) BirthFrameIndex() int {
	return tip.Shapes[0].FrameIndex
}

// IsLost checks if tip's latest shape is terminal
func (tip *Tip) IsLost() bool {
	return tip.LastShape().Status == StatusLost
}

// ShapeAt returns the shape of the given frame.
// ok is false when the tip did not exist yet or has not been tracked up to this frame.
func (tip *Tip) ShapeAt(frameIndex int) (EstimatedTipShape, bool) {
	i := frameIndex - tip.BirthFrameIndex()
	if i < 0 || i >= len(tip.Shapes) {
		return EstimatedTipShape{}, false
	}
	return tip.Shapes[i], true
}

// recentShapes returns the n last shapes. Be careful: this is not copy of history, but reference to it
func (tip *Tip) recentShapes(n int) []EstimatedTipShape {
	if n >= len(tip.Shapes) {
		return tip.Shapes
	}
	if n <= 0 {
		return tip.Shapes[:0]
	}
	return tip.Shapes[len(tip.Shapes)-n:]
}

func (tip *Tip) appendShape(shape EstimatedTipShape) {
	tip.Shapes = append(tip.Shapes, shape)
}
