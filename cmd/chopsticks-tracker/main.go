// Command chopsticks-tracker tracks chopsticks over a directory of cached detections
// and writes tips and chopsticks histories as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/LdDl/chopsticks-tracker/framesource"
	"github.com/LdDl/chopsticks-tracker/internal/config"
	"github.com/LdDl/chopsticks-tracker/internal/logger"
	"github.com/LdDl/chopsticks-tracker/tracking"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	configPath     = flag.String("config", "", "Path to YAML configuration file (defaults are used when empty)")
	envPath        = flag.String("env", ".env", "Path to .env file with CHOPSTICKS_* overrides")
	detectionsPath = flag.String("detections", "", "Directory with cached detections, one <frame_index>.json per frame")
	outputPath     = flag.String("output", "", "Output JSON file (stdout when empty)")
	devLogs        = flag.Bool("dev", false, "Use human friendly development logs")
)

func main() {
	flag.Parse()

	var err error
	if *devLogs {
		err = logger.InitDevelopment()
	} else {
		err = logger.InitProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't init logger: %s\n", err.Error())
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Log().Error("Tracking failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	if *detectionsPath == "" {
		return errors.New("flag -detections is required")
	}
	if err := config.LoadDotEnv(*envPath); err != nil {
		return err
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	source, err := framesource.OpenDirectory(*detectionsPath)
	if err != nil {
		return err
	}
	logger.Log().Info("Detections found", zap.String("path", *detectionsPath), zap.Int("frames", source.Len()))

	pipeline, err := tracking.NewPipeline(cfg, tracking.WithLogger(logger.Log()))
	if err != nil {
		return err
	}
	result, err := pipeline.Run(source)
	if err != nil {
		return err
	}
	logger.Log().Info("Tracking done",
		zap.String("run_id", result.RunID.String()),
		zap.Int("frames", len(result.Frames)),
		zap.Int("tips", len(result.Tips)),
		zap.Int("chopsticks", len(result.Chopsticks)),
	)

	var out io.Writer = os.Stdout
	if *outputPath != "" {
		file, err := os.Create(*outputPath)
		if err != nil {
			return errors.Wrapf(err, "Can't create output file %s", *outputPath)
		}
		defer file.Close()
		out = file
	}
	return writeResult(out, result)
}

func writeResult(w io.Writer, result *tracking.Result) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return errors.Wrap(err, "Can't encode tracking result")
	}
	return nil
}
