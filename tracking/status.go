package tracking

import "fmt"

// EstimatedShapeStatus labels one shape of a Tip or Chopstick history
type EstimatedShapeStatus uint16

const (
	// StatusDetected means the track was matched with a detection in this frame
	StatusDetected EstimatedShapeStatus = iota
	// StatusDetectedOnce is the very first observation of a track
	StatusDetectedOnce
	// StatusNotDetected means the track is temporarily missing
	StatusNotDetected
	// StatusHiddenByArm means the track is missing because an arm covers it
	StatusHiddenByArm
	// StatusLost is terminal: nothing follows but other Lost shapes
	StatusLost
)

var statusNames = [...]string{
	StatusDetected:     "DETECTED",
	StatusDetectedOnce: "DETECTED_ONCE",
	StatusNotDetected:  "NOT_DETECTED",
	StatusHiddenByArm:  "HIDDEN_BY_ARM",
	StatusLost:         "LOST",
}

// IsDetected is true for visible shapes (Detected and DetectedOnce)
func (s EstimatedShapeStatus) IsDetected() bool {
	return s == StatusDetected || s == StatusDetectedOnce
}

// keepsTrackAlive tells if a shape found in the look-back window prevents a tip from being lost.
// Chopsticks only count Detected and HiddenByArm shapes.
func (s EstimatedShapeStatus) keepsTrackAlive() bool {
	return s.IsDetected() || s == StatusHiddenByArm
}

func (s EstimatedShapeStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("EstimatedShapeStatus(%d)", uint16(s))
}

func (s EstimatedShapeStatus) MarshalText() ([]byte, error) {
	if int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown shape status %d", uint16(s))
	}
	return []byte(statusNames[s]), nil
}

func (s *EstimatedShapeStatus) UnmarshalText(text []byte) error {
	name := string(text)
	for i, candidate := range statusNames {
		if candidate == name {
			*s = EstimatedShapeStatus(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape status %q", name)
}
