package tracking

import (
	"fmt"
	"math"
)

// MatchingAlgorithm is for algorithm type for matching detected tips to existing tips
type MatchingAlgorithm uint16

const (
	// MatchingAlgorithmGreedy accepts pairs by ascending score while skipping already claimed tips
	MatchingAlgorithmGreedy MatchingAlgorithm = iota
	// MatchingAlgorithmHungarian uses the Hungarian algorithm (Kuhn-Munkres) for optimal assignment
	MatchingAlgorithmHungarian
)

func (a MatchingAlgorithm) String() string {
	switch a {
	case MatchingAlgorithmGreedy:
		return "greedy"
	case MatchingAlgorithmHungarian:
		return "hungarian"
	default:
		return fmt.Sprintf("MatchingAlgorithm(%d)", uint16(a))
	}
}

func (a MatchingAlgorithm) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *MatchingAlgorithm) UnmarshalText(text []byte) error {
	switch string(text) {
	case "greedy", "":
		*a = MatchingAlgorithmGreedy
	case "hungarian":
		*a = MatchingAlgorithmHungarian
	default:
		return fmt.Errorf("unknown matching algorithm %q", string(text))
	}
	return nil
}

// TipSmoothing is the way tip boxes are estimated from their recent detections
type TipSmoothing uint16

const (
	// TipSmoothingMovingAverage averages the boxes of the last shapes and of the new detection
	TipSmoothingMovingAverage TipSmoothing = iota
	// TipSmoothingKalman filters the box with an 8-D Kalman filter (center, size and their velocities)
	TipSmoothingKalman
)

func (s TipSmoothing) String() string {
	switch s {
	case TipSmoothingMovingAverage:
		return "moving_average"
	case TipSmoothingKalman:
		return "kalman"
	default:
		return fmt.Sprintf("TipSmoothing(%d)", uint16(s))
	}
}

func (s TipSmoothing) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *TipSmoothing) UnmarshalText(text []byte) error {
	switch string(text) {
	case "moving_average", "":
		*s = TipSmoothingMovingAverage
	case "kalman":
		*s = TipSmoothingKalman
	default:
		return fmt.Errorf("unknown tip smoothing %q", string(text))
	}
	return nil
}

// Configuration holds every threshold of one tracking run. It is immutable once a tracker is built.
type Configuration struct {
	FrameWidth  int `yaml:"frame_width" json:"frame_width"`
	FrameHeight int `yaml:"frame_height" json:"frame_height"`

	MinTipDetectionConfidence       float64 `yaml:"min_tip_detection_confidence" json:"min_tip_detection_confidence"`
	MinChopstickDetectionConfidence float64 `yaml:"min_chopstick_detection_confidence" json:"min_chopstick_detection_confidence"`
	MinArmDetectionConfidence       float64 `yaml:"min_arm_detection_confidence" json:"min_arm_detection_confidence"`

	NbTipsToUseToDetectCameraMotion int `yaml:"nb_tips_to_use_to_detect_camera_motion" json:"nb_tips_to_use_to_detect_camera_motion"`
	// Pairs of tips with a higher score are never considered as the same tip
	MaxTipMatchingScoreInPixels float64 `yaml:"max_tip_matching_score_in_pixels" json:"max_tip_matching_score_in_pixels"`
	// Maximum score between a tip overlapping with an arm and any object of the current frame
	// for the tip to be considered as visible (so not hidden by the arm)
	MaxMatchingScoreToConsiderTipNotHiddenByArm float64 `yaml:"max_matching_score_to_consider_tip_not_hidden_by_arm" json:"max_matching_score_to_consider_tip_not_hidden_by_arm"`
	NbFramesAfterWhichATipIsConsideredMissing   int     `yaml:"nb_frames_after_which_a_tip_is_considered_missing" json:"nb_frames_after_which_a_tip_is_considered_missing"`
	NbShapesToConsiderForComputingAverageTip    int     `yaml:"nb_shapes_to_consider_for_computing_average_tip_position_and_size" json:"nb_shapes_to_consider_for_computing_average_tip_position_and_size"`
	MaxScoreToConsiderNewTipAsTheSameAsExisting float64 `yaml:"max_score_to_consider_new_tip_as_the_same_as_an_existing_one" json:"max_score_to_consider_new_tip_as_the_same_as_an_existing_one"`

	MinChopstickLengthInPixels                      float64 `yaml:"min_chopstick_length_in_pixels" json:"min_chopstick_length_in_pixels"`
	MaxChopstickLengthInPixels                      float64 `yaml:"max_chopstick_length_in_pixels" json:"max_chopstick_length_in_pixels"`
	MaxMatchingScoreToConsiderTwoTipsAsAChopstick   float64 `yaml:"max_matching_score_to_consider_two_tips_as_a_chopstick" json:"max_matching_score_to_consider_two_tips_as_a_chopstick"`
	NbFramesAfterWhichAChopstickIsConsideredMissing int     `yaml:"nb_frames_after_which_a_chopstick_is_considered_missing" json:"nb_frames_after_which_a_chopstick_is_considered_missing"`

	TipMatchingAlgorithm MatchingAlgorithm `yaml:"tip_matching_algorithm" json:"tip_matching_algorithm"`
	TipSmoothing         TipSmoothing      `yaml:"tip_smoothing" json:"tip_smoothing"`
}

// DefaultConfiguration returns values tuned on 1920x1080 handheld videos
func DefaultConfiguration() Configuration {
	return Configuration{
		FrameWidth:                                      1920,
		FrameHeight:                                     1080,
		MinTipDetectionConfidence:                       0.9,
		MinChopstickDetectionConfidence:                 0.7,
		MinArmDetectionConfidence:                       0.7,
		NbTipsToUseToDetectCameraMotion:                 7,
		MaxTipMatchingScoreInPixels:                     66,
		MaxMatchingScoreToConsiderTipNotHiddenByArm:     20,
		NbFramesAfterWhichATipIsConsideredMissing:       7,
		NbShapesToConsiderForComputingAverageTip:        9,
		MaxScoreToConsiderNewTipAsTheSameAsExisting:     15,
		MinChopstickLengthInPixels:                      350,
		MaxChopstickLengthInPixels:                      550,
		MaxMatchingScoreToConsiderTwoTipsAsAChopstick:   0.8,
		NbFramesAfterWhichAChopstickIsConsideredMissing: 70,
		TipMatchingAlgorithm:                            MatchingAlgorithmGreedy,
		TipSmoothing:                                    TipSmoothingMovingAverage,
	}
}

// Validate returns a *ConfigurationError for the first field outside of its domain
func (cfg Configuration) Validate() error {
	if cfg.FrameWidth <= 0 {
		return &ConfigurationError{Field: "frame_width", Reason: "must be positive"}
	}
	if cfg.FrameHeight <= 0 {
		return &ConfigurationError{Field: "frame_height", Reason: "must be positive"}
	}
	confidences := []struct {
		field string
		value float64
	}{
		{"min_tip_detection_confidence", cfg.MinTipDetectionConfidence},
		{"min_chopstick_detection_confidence", cfg.MinChopstickDetectionConfidence},
		{"min_arm_detection_confidence", cfg.MinArmDetectionConfidence},
	}
	for _, c := range confidences {
		if math.IsNaN(c.value) || c.value < 0 || c.value > 1 {
			return &ConfigurationError{Field: c.field, Reason: fmt.Sprintf("must be within [0, 1], got %v", c.value)}
		}
	}
	counts := []struct {
		field string
		value int
	}{
		{"nb_tips_to_use_to_detect_camera_motion", cfg.NbTipsToUseToDetectCameraMotion},
		{"nb_frames_after_which_a_tip_is_considered_missing", cfg.NbFramesAfterWhichATipIsConsideredMissing},
		{"nb_shapes_to_consider_for_computing_average_tip_position_and_size", cfg.NbShapesToConsiderForComputingAverageTip},
		{"nb_frames_after_which_a_chopstick_is_considered_missing", cfg.NbFramesAfterWhichAChopstickIsConsideredMissing},
	}
	for _, c := range counts {
		if c.value < 1 {
			return &ConfigurationError{Field: c.field, Reason: fmt.Sprintf("must be at least 1, got %d", c.value)}
		}
	}
	distances := []struct {
		field string
		value float64
	}{
		{"max_tip_matching_score_in_pixels", cfg.MaxTipMatchingScoreInPixels},
		{"max_matching_score_to_consider_tip_not_hidden_by_arm", cfg.MaxMatchingScoreToConsiderTipNotHiddenByArm},
		{"max_score_to_consider_new_tip_as_the_same_as_an_existing_one", cfg.MaxScoreToConsiderNewTipAsTheSameAsExisting},
		{"min_chopstick_length_in_pixels", cfg.MinChopstickLengthInPixels},
		{"max_chopstick_length_in_pixels", cfg.MaxChopstickLengthInPixels},
		{"max_matching_score_to_consider_two_tips_as_a_chopstick", cfg.MaxMatchingScoreToConsiderTwoTipsAsAChopstick},
	}
	for _, d := range distances {
		if math.IsNaN(d.value) || d.value < 0 {
			return &ConfigurationError{Field: d.field, Reason: fmt.Sprintf("must be non-negative, got %v", d.value)}
		}
	}
	if cfg.MinChopstickLengthInPixels > cfg.MaxChopstickLengthInPixels {
		return &ConfigurationError{
			Field:  "min_chopstick_length_in_pixels",
			Reason: fmt.Sprintf("greater than max_chopstick_length_in_pixels (%v > %v)", cfg.MinChopstickLengthInPixels, cfg.MaxChopstickLengthInPixels),
		}
	}
	if cfg.TipMatchingAlgorithm > MatchingAlgorithmHungarian {
		return &ConfigurationError{Field: "tip_matching_algorithm", Reason: "unknown algorithm " + cfg.TipMatchingAlgorithm.String()}
	}
	if cfg.TipSmoothing > TipSmoothingKalman {
		return &ConfigurationError{Field: "tip_smoothing", Reason: "unknown smoothing " + cfg.TipSmoothing.String()}
	}
	return nil
}
