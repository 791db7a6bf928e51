package tracking

import (
	"fmt"
)

// DetectedObjectType is the class of an object yielded by the detector
type DetectedObjectType uint16

const (
	ObjectTypeArm DetectedObjectType = iota
	ObjectTypeChopstick
	ObjectTypeBigTip
	ObjectTypeSmallTip
)

var objectTypeNames = [...]string{
	ObjectTypeArm:       "ARM",
	ObjectTypeChopstick: "CHOPSTICK",
	ObjectTypeBigTip:    "BIG_TIP",
	ObjectTypeSmallTip:  "SMALL_TIP",
}

// IsTip returns true for both big and small tips
func (t DetectedObjectType) IsTip() bool {
	return t == ObjectTypeBigTip || t == ObjectTypeSmallTip
}

func (t DetectedObjectType) String() string {
	if int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return fmt.Sprintf("DetectedObjectType(%d)", uint16(t))
}

// MarshalText uses the names of the detection cache files (ARM, CHOPSTICK, BIG_TIP, SMALL_TIP)
func (t DetectedObjectType) MarshalText() ([]byte, error) {
	if int(t) >= len(objectTypeNames) {
		return nil, fmt.Errorf("unknown object type %d", uint16(t))
	}
	return []byte(objectTypeNames[t]), nil
}

func (t *DetectedObjectType) UnmarshalText(text []byte) error {
	name := string(text)
	for i, candidate := range objectTypeNames {
		if candidate == name {
			*t = DetectedObjectType(i)
			return nil
		}
	}
	return fmt.Errorf("unknown object type %q", name)
}

// DetectedObject is a raw detection of a single frame. It is never modified once produced.
type DetectedObject struct {
	Rectangle
	ObjectType DetectedObjectType `json:"object_type"`
	Confidence float64            `json:"confidence"`
}

// Frame holds the detections of one video frame.
// ImageX and ImageY are the accumulated camera offset relatively to the first frame.
type Frame struct {
	Index   int              `json:"index"`
	Objects []DetectedObject `json:"objects"`
	ImageX  float64          `json:"image_x"`
	ImageY  float64          `json:"image_y"`
}

// ObjectsOfType returns the objects matching the given type, in detection order
func (frame Frame) ObjectsOfType(objectType DetectedObjectType) []DetectedObject {
	objects := make([]DetectedObject, 0, len(frame.Objects))
	for _, object := range frame.Objects {
		if object.ObjectType == objectType {
			objects = append(objects, object)
		}
	}
	return objects
}

// Detector is the external object detector.
// It returns ok=false once there is no frame left to decode.
type Detector interface {
	DetectObjects(frameIndex int) (objects []DetectedObject, ok bool, err error)
}
