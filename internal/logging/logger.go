package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ricirt/sender-queue/internal/config"
)

// New builds the process logger: production JSON encoding with ISO8601
// timestamps, written to the configured log file. With no log file, or with
// Stderr set, it also writes to stderr.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Sampling = nil
	zc.OutputPaths = outputPaths(cfg)
	zc.ErrorOutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

func outputPaths(cfg config.LogConfig) []string {
	if cfg.File == "" {
		return []string{"stderr"}
	}
	if cfg.Stderr {
		return []string{cfg.File, "stderr"}
	}
	return []string{cfg.File}
}
