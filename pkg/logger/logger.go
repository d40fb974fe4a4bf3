package logger

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the logger.
type Options struct {
	Level string // debug, info, warn, error
	// Format is "console" or "json".
	Format string
	// File, when set, receives a JSON copy of every entry, rotated by size.
	File  string
	RunID string
}

// Diagnostics wraps w in a mutex. Everything written to the diagnostic
// stream by concurrent workers (log entries, progress bar redraws) must go
// through the same returned syncer so writes never interleave.
func Diagnostics(w zapcore.WriteSyncer) zapcore.WriteSyncer {
	return zapcore.Lock(w)
}

// New builds the structured logger. The returned cleanup flushes buffered
// entries and closes the log file.
func New(diag zapcore.WriteSyncer, opts Options) (*zap.Logger, func(), error) {
	level, err := zapcore.ParseLevel(orDefault(opts.Level, "info"))
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	var encoder zapcore.Encoder
	switch orDefault(opts.Format, "console") {
	case "console":
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.TimeKey = ""
		encoder = zapcore.NewConsoleEncoder(cfg)
	case "json":
		encoder = zapcore.NewJSONEncoder(jsonEncoderConfig())
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", opts.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(encoder, diag, level)}
	cleanup := func() {}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return nil, nil, fmt.Errorf("creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(jsonEncoderConfig()), zapcore.AddSync(rotator), level))
		cleanup = func() { _ = rotator.Close() }
	}

	l := zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(diag))
	if opts.RunID != "" {
		l = l.With(zap.String("run_id", opts.RunID))
	}
	return l, func() {
		_ = l.Sync()
		cleanup()
	}, nil
}

func jsonEncoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.MessageKey = "message"
	cfg.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	return cfg
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
