// Package logging builds the zap loggers used across paychain.
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey int

var loggerKey = contextKey(0)

var ErrNoLoggerInContext = errors.New("no logger in context")

// Options controls the logger returned by New.
type Options struct {
	// Level is a zap level name: debug, info, warn or error.
	Level string

	// NoColor disables colored level names.
	NoColor bool

	// Writer receives log output. Defaults to os.Stderr.
	Writer io.Writer
}

// New returns a console logger. Output goes to stderr so formatted
// results on stdout stay machine-readable.
func New(opts Options) (*zap.Logger, error) {
	level := zapcore.WarnLevel
	if opts.Level != "" {
		parsed, err := zapcore.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	encCfg.CallerKey = ""
	if opts.NoColor {
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core), nil
}

func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

func LoggerFromContext(ctx context.Context) (*zap.Logger, error) {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return logger, nil
	}

	return nil, ErrNoLoggerInContext
}

// FromContext returns the context logger, or a no-op logger when none is set.
func FromContext(ctx context.Context) *zap.Logger {
	if logger, err := LoggerFromContext(ctx); err == nil {
		return logger
	}
	return zap.NewNop()
}
