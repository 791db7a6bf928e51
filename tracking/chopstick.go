package tracking

import (
	"encoding/json"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ChopstickID identifies a Chopstick: "C_" + tip1 + "_" + tip2 with tip1 < tip2
type ChopstickID string

// NewChopstickID builds the canonical identifier of the chopstick linking two tips.
// Returned tips are sorted lexicographically.
func NewChopstickID(tipA, tipB TipID) (ChopstickID, TipID, TipID) {
	if tipB < tipA {
		tipA, tipB = tipB, tipA
	}
	return ChopstickID("C_" + string(tipA) + "_" + string(tipB)), tipA, tipB
}

// EstimatedChopstickShape is one frame of a Chopstick history.
// MatchingScore is +Inf when the shape is not confirmed by a detected chopstick box.
type EstimatedChopstickShape struct {
	FrameIndex              int
	Status                  EstimatedShapeStatus
	Source                  *DetectedObject
	Tip1X                   int
	Tip1Y                   int
	Tip2X                   int
	Tip2Y                   int
	IsRejectedDueToConflict bool
	MatchingScore           float64
}

type chopstickShapeJSON struct {
	FrameIndex              int                  `json:"frame_index"`
	Status                  EstimatedShapeStatus `json:"status"`
	Source                  *DetectedObject      `json:"source,omitempty"`
	Tip1X                   int                  `json:"tip1_x"`
	Tip1Y                   int                  `json:"tip1_y"`
	Tip2X                   int                  `json:"tip2_x"`
	Tip2Y                   int                  `json:"tip2_y"`
	IsRejectedDueToConflict bool                 `json:"is_rejected_due_to_conflict"`
	MatchingScore           *float64             `json:"matching_score"`
}

// MarshalJSON writes infinite matching scores as null, JSON has no representation for them
func (shape EstimatedChopstickShape) MarshalJSON() ([]byte, error) {
	out := chopstickShapeJSON{
		FrameIndex:              shape.FrameIndex,
		Status:                  shape.Status,
		Source:                  shape.Source,
		Tip1X:                   shape.Tip1X,
		Tip1Y:                   shape.Tip1Y,
		Tip2X:                   shape.Tip2X,
		Tip2Y:                   shape.Tip2Y,
		IsRejectedDueToConflict: shape.IsRejectedDueToConflict,
	}
	if !math.IsInf(shape.MatchingScore, 0) && !math.IsNaN(shape.MatchingScore) {
		score := shape.MatchingScore
		out.MatchingScore = &score
	}
	return json.Marshal(out)
}

func (shape *EstimatedChopstickShape) UnmarshalJSON(data []byte) error {
	var in chopstickShapeJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*shape = EstimatedChopstickShape{
		FrameIndex:              in.FrameIndex,
		Status:                  in.Status,
		Source:                  in.Source,
		Tip1X:                   in.Tip1X,
		Tip1Y:                   in.Tip1Y,
		Tip2X:                   in.Tip2X,
		Tip2Y:                   in.Tip2Y,
		IsRejectedDueToConflict: in.IsRejectedDueToConflict,
		MatchingScore:           math.Inf(1),
	}
	if in.MatchingScore != nil {
		shape.MatchingScore = *in.MatchingScore
	}
	return nil
}

// Chopstick links two tips. Tip1 and Tip2 are keys of tips owned by the tip tracker,
// the chopstick tracker never modifies them.
type Chopstick struct {
	ID     ChopstickID               `json:"id"`
	Tip1   TipID                     `json:"tip1"`
	Tip2   TipID                     `json:"tip2"`
	Shapes []EstimatedChopstickShape `json:"shapes"`
}

// LastShape returns chopstick's latest shape
func (chopstick *Chopstick) LastShape() EstimatedChopstickShape {
	return chopstick.Shapes[len(chopstick.Shapes)-1]
}

// lastShapeRef returns a pointer to the latest shape so its rejection flag can be switched
func (chopstick *Chopstick) lastShapeRef() *EstimatedChopstickShape {
	return &chopstick.Shapes[len(chopstick.Shapes)-1]
}

// BirthFrameIndex returns index of the frame where chopstick has been formed
func (chopstick *Chopstick) BirthFrameIndex() int {
	return chopstick.Shapes[0].FrameIndex
}

// IsLost checks if chopstick's latest shape is terminal
func (chopstick *Chopstick) IsLost() bool {
	return chopstick.LastShape().Status == StatusLost
}

// HasTip checks if the tip is one of chopstick's ends
func (chopstick *Chopstick) HasTip(id TipID) bool {
	return chopstick.Tip1 == id || chopstick.Tip2 == id
}

// Links checks if the chopstick joins exactly these two tips, in any order
func (chopstick *Chopstick) Links(tipA, tipB TipID) bool {
	return (chopstick.Tip1 == tipA && chopstick.Tip2 == tipB) || (chopstick.Tip1 == tipB && chopstick.Tip2 == tipA)
}

// SharesTipWith checks if both chopsticks have at least one tip in common
func (chopstick *Chopstick) SharesTipWith(other *Chopstick) bool {
	return chopstick.HasTip(other.Tip1) || chopstick.HasTip(other.Tip2)
}

// HistoricalConfidence sums 1/score over all visible shapes: the more and the better
// the chopstick has been confirmed, the higher it is.
func (chopstick *Chopstick) HistoricalConfidence() float64 {
	inverses := make([]float64, 0, len(chopstick.Shapes))
	for _, shape := range chopstick.Shapes {
		if shape.Status.IsDetected() {
			inverses = append(inverses, 1.0/shape.MatchingScore)
		}
	}
	return floats.Sum(inverses)
}

func (chopstick *Chopstick) recentShapes(n int) []EstimatedChopstickShape {
	if n >= len(chopstick.Shapes) {
		return chopstick.Shapes
	}
	if n <= 0 {
		return chopstick.Shapes[:0]
	}
	return chopstick.Shapes[len(chopstick.Shapes)-n:]
}
