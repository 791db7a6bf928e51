package tracking

import (
	"testing"

	"github.com/pkg/errors"
)

func TestDefaultConfigurationIsValid(t *testing.T) {
	if err := DefaultConfiguration().Validate(); err != nil {
		t.Errorf("Default configuration should be valid: %v", err)
	}
}

func TestConfigurationValidate(t *testing.T) {
	broken := map[string]func(cfg *Configuration){
		"frame_width":                                       func(cfg *Configuration) { cfg.FrameWidth = 0 },
		"min_tip_detection_confidence":                      func(cfg *Configuration) { cfg.MinTipDetectionConfidence = 1.5 },
		"min_arm_detection_confidence":                      func(cfg *Configuration) { cfg.MinArmDetectionConfidence = -0.1 },
		"nb_frames_after_which_a_tip_is_considered_missing": func(cfg *Configuration) { cfg.NbFramesAfterWhichATipIsConsideredMissing = 0 },
		"max_tip_matching_score_in_pixels":                  func(cfg *Configuration) { cfg.MaxTipMatchingScoreInPixels = -1 },
		"min_chopstick_length_in_pixels":                    func(cfg *Configuration) { cfg.MinChopstickLengthInPixels = 600 },
		"tip_matching_algorithm":                            func(cfg *Configuration) { cfg.TipMatchingAlgorithm = MatchingAlgorithm(42) },
		"tip_smoothing":                                     func(cfg *Configuration) { cfg.TipSmoothing = TipSmoothing(42) },
	}
	for field, breakConfig := range broken {
		cfg := DefaultConfiguration()
		breakConfig(&cfg)
		err := cfg.Validate()
		var cfgErr *ConfigurationError
		if !errors.As(err, &cfgErr) {
			t.Errorf("Field %s: expected *ConfigurationError, got %v", field, err)
			continue
		}
		if cfgErr.Field != field {
			t.Errorf("Wrong field reported: %s, expected %s", cfgErr.Field, field)
		}
	}
}

func TestConstructorsRejectInvalidConfiguration(t *testing.T) {
	cfg := DefaultConfiguration()
	cfg.FrameHeight = -1
	if _, err := NewTipTracker(cfg); err == nil {
		t.Errorf("NewTipTracker should fail with an invalid configuration")
	}
	if _, err := NewChopstickTracker(cfg); err == nil {
		t.Errorf("NewChopstickTracker should fail with an invalid configuration")
	}
	if _, err := NewMotionCompensator(cfg); err == nil {
		t.Errorf("NewMotionCompensator should fail with an invalid configuration")
	}
	if _, err := NewReliabilityFilter(cfg); err == nil {
		t.Errorf("NewReliabilityFilter should fail with an invalid configuration")
	}
	if _, err := NewPipeline(cfg); err == nil {
		t.Errorf("NewPipeline should fail with an invalid configuration")
	}
}

func TestMatchingAlgorithmText(t *testing.T) {
	var algorithm MatchingAlgorithm
	if err := algorithm.UnmarshalText([]byte("hungarian")); err != nil {
		t.Fatal(err)
	}
	if algorithm != MatchingAlgorithmHungarian {
		t.Errorf("Wrong algorithm: %s, expected hungarian", algorithm)
	}
	if err := algorithm.UnmarshalText([]byte("simplex")); err == nil {
		t.Errorf("Unknown algorithm should not be accepted")
	}
	var smoothing TipSmoothing
	if err := smoothing.UnmarshalText([]byte("kalman")); err != nil {
		t.Fatal(err)
	}
	if smoothing != TipSmoothingKalman {
		t.Errorf("Wrong smoothing: %s, expected kalman", smoothing)
	}
}
