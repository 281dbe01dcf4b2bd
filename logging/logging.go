// Package logging builds the application's zap logger.
package logging

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Name is the root logger name
const Name = "gaana-dl"

// ParseLevel maps DEBUG, INFO, WARN, ERROR or FATAL to a zap level
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return zapcore.DebugLevel, nil
	case "", "INFO":
		return zapcore.InfoLevel, nil
	case "WARN", "WARNING":
		return zapcore.WarnLevel, nil
	case "ERROR":
		return zapcore.ErrorLevel, nil
	case "FATAL":
		return zapcore.FatalLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

// New creates a console logger writing to stderr at level.
// Every entry carries a run_id so the lines of one invocation can be grouped.
func New(level string) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return NewWithSink(lvl, zapcore.Lock(os.Stderr)), nil
}

// NewWithSink builds the logger on an arbitrary writer
func NewWithSink(level zapcore.Level, sink zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller()).
		Named(Name).
		With(zap.String("run_id", RunID()))
}

// RunID returns a time-ordered identifier for this process run
func RunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
