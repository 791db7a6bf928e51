// Package logger holds the process-wide zap logger
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.RWMutex
	current *zap.Logger
)

// InitProduction sets up a JSON logger
func InitProduction() error {
	return build(zap.NewProductionConfig())
}

// InitDevelopment sets up a human friendly console logger with debug level
func InitDevelopment() error {
	return build(zap.NewDevelopmentConfig())
}

func build(cfg zap.Config) error {
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	built, err := cfg.Build()
	if err != nil {
		return err
	}

	mu.Lock()
	defer mu.Unlock()
	if current != nil {
		_ = current.Sync()
	}
	current = built
	zap.ReplaceGlobals(built)
	return nil
}

// Log returns the logger set up by InitProduction or InitDevelopment, zap's global one before that
func Log() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if current == nil {
		return zap.L()
	}
	return current
}

// Sync flushes buffered logs
func Sync() {
	_ = Log().Sync()
}
