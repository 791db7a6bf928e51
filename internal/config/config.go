// Package config loads the tracking configuration of the command line tool.
//
// Values are layered: defaults, then the YAML file, then environment variables
// (optionally loaded from a .env file) prefixed with CHOPSTICKS_.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable overriding the configuration
const EnvPrefix = "CHOPSTICKS_"

// Load returns the configuration built from defaults, the YAML file at path (skipped when empty)
// and the environment. The result is validated.
func Load(path string) (tracking.Configuration, error) {
	cfg := tracking.DefaultConfiguration()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrapf(err, "Can't read configuration file %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errors.Wrapf(err, "Can't decode configuration file %s", path)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadDotEnv loads variables of the .env file into the environment, existing variables win.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "Can't load env file %s", path)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

func applyEnv(cfg *tracking.Configuration, lookup lookupFunc) error {
	ints := map[string]*int{
		"FRAME_WIDTH":                            &cfg.FrameWidth,
		"FRAME_HEIGHT":                           &cfg.FrameHeight,
		"NB_TIPS_TO_USE_TO_DETECT_CAMERA_MOTION": &cfg.NbTipsToUseToDetectCameraMotion,
		"NB_FRAMES_AFTER_WHICH_A_TIP_IS_CONSIDERED_MISSING":                 &cfg.NbFramesAfterWhichATipIsConsideredMissing,
		"NB_SHAPES_TO_CONSIDER_FOR_COMPUTING_AVERAGE_TIP_POSITION_AND_SIZE": &cfg.NbShapesToConsiderForComputingAverageTip,
		"NB_FRAMES_AFTER_WHICH_A_CHOPSTICK_IS_CONSIDERED_MISSING":           &cfg.NbFramesAfterWhichAChopstickIsConsideredMissing,
	}
	for name, target := range ints {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return errors.Wrapf(err, "Can't parse %s%s", EnvPrefix, name)
		}
		*target = parsed
	}

	floats := map[string]*float64{
		"MIN_TIP_DETECTION_CONFIDENCE":                                 &cfg.MinTipDetectionConfidence,
		"MIN_CHOPSTICK_DETECTION_CONFIDENCE":                           &cfg.MinChopstickDetectionConfidence,
		"MIN_ARM_DETECTION_CONFIDENCE":                                 &cfg.MinArmDetectionConfidence,
		"MAX_TIP_MATCHING_SCORE_IN_PIXELS":                             &cfg.MaxTipMatchingScoreInPixels,
		"MAX_MATCHING_SCORE_TO_CONSIDER_TIP_NOT_HIDDEN_BY_ARM":         &cfg.MaxMatchingScoreToConsiderTipNotHiddenByArm,
		"MAX_SCORE_TO_CONSIDER_NEW_TIP_AS_THE_SAME_AS_AN_EXISTING_ONE": &cfg.MaxScoreToConsiderNewTipAsTheSameAsExisting,
		"MIN_CHOPSTICK_LENGTH_IN_PIXELS":                               &cfg.MinChopstickLengthInPixels,
		"MAX_CHOPSTICK_LENGTH_IN_PIXELS":                               &cfg.MaxChopstickLengthInPixels,
		"MAX_MATCHING_SCORE_TO_CONSIDER_TWO_TIPS_AS_A_CHOPSTICK":       &cfg.MaxMatchingScoreToConsiderTwoTipsAsAChopstick,
	}
	for name, target := range floats {
		value, ok := lookup(EnvPrefix + name)
		if !ok || value == "" {
			continue
		}
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return errors.Wrapf(err, "Can't parse %s%s", EnvPrefix, name)
		}
		*target = parsed
	}

	if value, ok := lookup(EnvPrefix + "TIP_MATCHING_ALGORITHM"); ok && value != "" {
		if err := cfg.TipMatchingAlgorithm.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
			return errors.Wrapf(err, "Can't parse %sTIP_MATCHING_ALGORITHM", EnvPrefix)
		}
	}
	if value, ok := lookup(EnvPrefix + "TIP_SMOOTHING"); ok && value != "" {
		if err := cfg.TipSmoothing.UnmarshalText([]byte(strings.TrimSpace(value))); err != nil {
			return errors.Wrapf(err, "Can't parse %sTIP_SMOOTHING", EnvPrefix)
		}
	}
	return nil
}
