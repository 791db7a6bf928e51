package tracking

import "fmt"

// ConfigurationError is returned by constructors when a threshold is outside of its valid domain
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration field %s: %s", e.Field, e.Reason)
}

// SequenceGapError is returned when frame indices are not 0-based and contiguous
type SequenceGapError struct {
	Expected int
	Got      int
}

func (e *SequenceGapError) Error() string {
	return fmt.Sprintf("frame sequence gap: expected frame index %d, got %d", e.Expected, e.Got)
}

// InvariantViolation reports a broken internal invariant (e.g. a track without a shape for the current frame).
// It means a programming error and must not be ignored.
type InvariantViolation struct {
	TrackID    string
	FrameIndex int
	Reason     string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation on track %s at frame %d: %s", e.TrackID, e.FrameIndex, e.Reason)
}
