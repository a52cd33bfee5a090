// Package logger builds the process-wide zap logger: human-readable
// console output plus a JSON file sink rotated by lumberjack.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Dir      string // log directory, created if missing
	Filename string
	Debug    bool
}

func DefaultConfig() Config {
	return Config{
		Dir:      "log",
		Filename: "formrunner.log",
	}
}

// New returns the configured logger. Falls back to console-only logging
// when the log directory cannot be created.
func New(cfg Config) *zap.Logger {
	level := zapcore.InfoLevel
	if cfg.Debug {
		level = zapcore.DebugLevel
	}

	consoleEnc := zap.NewDevelopmentEncoderConfig()
	consoleEnc.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(consoleEnc),
		zapcore.Lock(os.Stdout),
		level,
	)

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		l := zap.New(consoleCore)
		l.Warn("log dir not writable, file logging disabled", zap.String("dir", cfg.Dir), zap.Error(err))
		return l
	}

	fileSink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   filepath.Join(cfg.Dir, cfg.Filename),
		MaxSize:    50, // MB
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	})

	fileCore := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		fileSink,
		level,
	)

	return zap.New(zapcore.NewTee(consoleCore, fileCore), zap.AddCaller())
}
