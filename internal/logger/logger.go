// Package logger builds the zap logger used for run diagnostics.
package logger

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLevel is used when no level is configured.
const DefaultLevel = "warn"

// Logger wraps a zap logger whose level can be changed after construction,
// once flags and the config file have been read.
type Logger struct {
	*zap.Logger
	level zap.AtomicLevel
}

// New creates a console-encoded logger writing to w.
func New(w io.Writer, level string) (*Logger, error) {
	atomic := zap.NewAtomicLevel()
	l := &Logger{level: atomic}
	if err := l.SetLevel(level); err != nil {
		return nil, err
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), atomic)
	l.Logger = zap.New(core)
	return l, nil
}

// SetLevel changes the minimum level. An empty level selects DefaultLevel.
func (l *Logger) SetLevel(level string) error {
	level = strings.ToLower(strings.TrimSpace(level))
	if level == "" {
		level = DefaultLevel
	}
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current minimum level.
func (l *Logger) Level() zapcore.Level {
	return l.level.Level()
}
