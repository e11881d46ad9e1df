package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Key constants for structured log fields.
const (
	KeyComponent = "component"
	KeyGame      = "game"
	KeyPath      = "path"
	KeyRule      = "rule"
)

// DefaultFileName is the log file written to the temp directory.
const DefaultFileName = "ins2doi.log"

// Options controls where and how the logger writes.
type Options struct {
	Level   string    // debug, info, warn, error (default info)
	Format  string    // json or console (default console)
	File    string    // rotated log file; empty disables file output
	Console io.Writer // nil disables console output
}

// DefaultFile returns the log file path inside the platform temp directory.
func DefaultFile() string {
	return filepath.Join(os.TempDir(), DefaultFileName)
}

// New builds a zap logger from opts. The returned close func flushes the
// logger and closes the log file.
func New(opts Options) (*zap.Logger, func(), error) {
	level := ParseLevel(opts.Level)
	encoder := newEncoder(opts.Format)

	var cores []zapcore.Core
	var file *RotatingWriter

	if opts.Console != nil {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(opts.Console), level))
	}

	if opts.File != "" {
		rw, err := NewRotatingWriter(opts.File, 5, 3)
		if err != nil {
			return nil, nil, err
		}
		file = rw
		cores = append(cores, zapcore.NewCore(encoder.Clone(), zapcore.AddSync(rw), level))
	}

	if len(cores) == 0 {
		return zap.NewNop(), func() {}, nil
	}

	logger := zap.New(zapcore.NewTee(cores...))
	closeFn := func() {
		_ = logger.Sync()
		if file != nil {
			_ = file.Close()
		}
	}
	return logger, closeFn, nil
}

// L returns a child logger tagged with the given component name. A nil
// parent yields a no-op logger so components never need a nil check.
func L(parent *zap.Logger, component string) *zap.Logger {
	if parent == nil {
		parent = zap.NewNop()
	}
	return parent.With(zap.String(KeyComponent, component))
}

// ParseLevel maps a level name onto a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func newEncoder(format string) zapcore.Encoder {
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if strings.EqualFold(format, "json") {
		return zapcore.NewJSONEncoder(cfg)
	}
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(cfg)
}
