package tracking

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDetectedObjectJSON(t *testing.T) {
	// Format of the detection cache files
	data := []byte(`[{"x":10,"y":20,"width":30,"height":40,"object_type":"BIG_TIP","confidence":0.95},
		{"x":1,"y":2,"width":3,"height":4,"object_type":"ARM","confidence":0.8}]`)
	var objects []DetectedObject
	if err := json.Unmarshal(data, &objects); err != nil {
		t.Fatal(err)
	}
	if len(objects) != 2 {
		t.Fatalf("Wrong number of objects: %d, expected 2", len(objects))
	}
	if objects[0].Rectangle != NewRect(10, 20, 30, 40) {
		t.Errorf("Wrong rectangle: %v", objects[0].Rectangle)
	}
	if objects[0].ObjectType != ObjectTypeBigTip || !objects[0].ObjectType.IsTip() {
		t.Errorf("Wrong object type: %s, expected BIG_TIP", objects[0].ObjectType)
	}
	if objects[1].ObjectType != ObjectTypeArm || objects[1].ObjectType.IsTip() {
		t.Errorf("Wrong object type: %s, expected ARM", objects[1].ObjectType)
	}
	if math.Abs(objects[0].Confidence-0.95) > eps {
		t.Errorf("Wrong confidence: %v, expected 0.95", objects[0].Confidence)
	}

	var unknown []DetectedObject
	if err := json.Unmarshal([]byte(`[{"object_type":"SPOON"}]`), &unknown); err == nil {
		t.Errorf("Unknown object type should not be accepted")
	}
}

func TestFrameObjectsOfType(t *testing.T) {
	frame := Frame{
		Index: 0,
		Objects: []DetectedObject{
			{Rectangle: NewRect(0, 0, 10, 10), ObjectType: ObjectTypeSmallTip},
			{Rectangle: NewRect(0, 0, 10, 10), ObjectType: ObjectTypeArm},
			{Rectangle: NewRect(5, 5, 10, 10), ObjectType: ObjectTypeArm},
		},
	}
	arms := frame.ObjectsOfType(ObjectTypeArm)
	if len(arms) != 2 {
		t.Fatalf("Wrong number of arms: %d, expected 2", len(arms))
	}
	if arms[1].X != 5 {
		t.Errorf("Order of objects should be preserved")
	}
}

func TestChopstickShapeJSON(t *testing.T) {
	shape := EstimatedChopstickShape{
		FrameIndex:    3,
		Status:        StatusNotDetected,
		Tip1X:         1,
		Tip1Y:         2,
		Tip2X:         3,
		Tip2Y:         4,
		MatchingScore: math.Inf(1),
	}
	data, err := json.Marshal(shape)
	if err != nil {
		t.Fatal(err)
	}
	correctJSON := `{"frame_index":3,"status":"NOT_DETECTED","tip1_x":1,"tip1_y":2,"tip2_x":3,"tip2_y":4,"is_rejected_due_to_conflict":false,"matching_score":null}`
	if string(data) != correctJSON {
		t.Errorf("Wrong JSON: %s, expected %s", string(data), correctJSON)
	}
	var decoded EstimatedChopstickShape
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if !math.IsInf(decoded.MatchingScore, 1) || decoded.Status != StatusNotDetected || decoded.Tip2Y != 4 {
		t.Errorf("Wrong decoded shape: %+v", decoded)
	}

	shape.MatchingScore = 0.25
	data, err = json.Marshal(shape)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	if math.Abs(decoded.MatchingScore-0.25) > eps {
		t.Errorf("Wrong decoded score: %v, expected 0.25", decoded.MatchingScore)
	}
}

func TestNewChopstickID(t *testing.T) {
	id, tip1, tip2 := NewChopstickID("T3_1", "T0_2")
	if id != "C_T0_2_T3_1" || tip1 != "T0_2" || tip2 != "T3_1" {
		t.Errorf("Wrong identifier: %s (%s, %s), expected C_T0_2_T3_1 (T0_2, T3_1)", id, tip1, tip2)
	}
	same, _, _ := NewChopstickID("T0_2", "T3_1")
	if same != id {
		t.Errorf("Identifier should not depend on tips order: %s != %s", same, id)
	}
}
