package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, tracking.DefaultConfiguration(), cfg)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
frame_width: 1280
frame_height: 720
max_tip_matching_score_in_pixels: 40
tip_matching_algorithm: hungarian
tip_smoothing: kalman
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1280, cfg.FrameWidth)
	assert.Equal(t, 720, cfg.FrameHeight)
	assert.Equal(t, 40.0, cfg.MaxTipMatchingScoreInPixels)
	assert.Equal(t, tracking.MatchingAlgorithmHungarian, cfg.TipMatchingAlgorithm)
	assert.Equal(t, tracking.TipSmoothingKalman, cfg.TipSmoothing)
	// Not in the file
	assert.Equal(t, 0.9, cfg.MinTipDetectionConfidence)
	assert.Equal(t, 70, cfg.NbFramesAfterWhichAChopstickIsConsideredMissing)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "frame_width: 1280\nmin_tip_detection_confidence: 0.8\n")
	t.Setenv("CHOPSTICKS_FRAME_WIDTH", "640")
	t.Setenv("CHOPSTICKS_MAX_CHOPSTICK_LENGTH_IN_PIXELS", "600.5")
	t.Setenv("CHOPSTICKS_TIP_SMOOTHING", "kalman")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 640, cfg.FrameWidth)
	assert.Equal(t, 0.8, cfg.MinTipDetectionConfidence)
	assert.Equal(t, 600.5, cfg.MaxChopstickLengthInPixels)
	assert.Equal(t, tracking.TipSmoothingKalman, cfg.TipSmoothing)
}

func TestLoadInvalid(t *testing.T) {
	path := writeFile(t, "config.yaml", "min_chopstick_length_in_pixels: 700\n")
	_, err := Load(path)
	var cfgErr *tracking.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "expected *tracking.ConfigurationError, got %v", err)
	assert.Equal(t, "min_chopstick_length_in_pixels", cfgErr.Field)

	t.Setenv("CHOPSTICKS_FRAME_HEIGHT", "tall")
	_, err = Load("")
	assert.Error(t, err)
}

func TestLoadUnknownAlgorithm(t *testing.T) {
	path := writeFile(t, "config.yaml", "tip_matching_algorithm: simplex\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	// Registered first so the variable is restored at the end of the test
	t.Setenv("CHOPSTICKS_NB_FRAMES_AFTER_WHICH_A_TIP_IS_CONSIDERED_MISSING", "")
	require.NoError(t, os.Unsetenv("CHOPSTICKS_NB_FRAMES_AFTER_WHICH_A_TIP_IS_CONSIDERED_MISSING"))

	path := writeFile(t, ".env", "CHOPSTICKS_NB_FRAMES_AFTER_WHICH_A_TIP_IS_CONSIDERED_MISSING=12\n")
	require.NoError(t, LoadDotEnv(path))
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.NbFramesAfterWhichATipIsConsideredMissing)
}

func TestApplyEnvLookup(t *testing.T) {
	env := map[string]string{
		"CHOPSTICKS_MIN_ARM_DETECTION_CONFIDENCE": " 0.5 ",
		"CHOPSTICKS_TIP_MATCHING_ALGORITHM":       "hungarian",
		"OTHER_FRAME_WIDTH":                       "1",
	}
	cfg := tracking.DefaultConfiguration()
	err := applyEnv(&cfg, func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	})
	require.NoError(t, err)
	assert.Equal(t, 0.5, cfg.MinArmDetectionConfidence)
	assert.Equal(t, tracking.MatchingAlgorithmHungarian, cfg.TipMatchingAlgorithm)
	assert.Equal(t, 1920, cfg.FrameWidth)
}
