// Package observability provides the structured logger and the formatted
// verbose-mode output for the CLI.
package observability

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Verbose mode switches to a
// development config with debug level and human-readable output.
func NewLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		return cfg.Build()
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	cfg.DisableStacktrace = true
	return cfg.Build()
}
