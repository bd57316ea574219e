// Package logging builds the process logger: a zap console or JSON core on
// stderr, optionally tee'd to a rotating log file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the global logger instance
var Logger = zap.NewNop()

// Options selects the logger configuration.
type Options struct {
	Debug      bool
	Level      string // debug, info, warn or error; ignored when Debug is set
	AppName    string
	AppVersion string

	FilePath   string // Rotating JSON log file; empty disables it
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// Setup builds the logger described by opts, installs it as the zap global
// and returns it.
func Setup(opts Options) (*zap.Logger, error) {
	var cfg zap.Config
	if opts.Debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		if opts.Level != "" {
			level, err := zapcore.ParseLevel(opts.Level)
			if err != nil {
				return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
			}
			cfg.Level = zap.NewAtomicLevelAt(level)
		}
	}

	// Add default fields
	cfg.InitialFields = map[string]interface{}{
		"appName":    opts.AppName,
		"appVersion": opts.AppVersion,
	}

	var buildOpts []zap.Option
	if opts.FilePath != "" {
		fileCore := zapcore.NewCore(
			zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
			zapcore.AddSync(fileWriter(opts)),
			cfg.Level,
		).With([]zap.Field{zap.String("appName", opts.AppName), zap.String("appVersion", opts.AppVersion)})
		buildOpts = append(buildOpts, zap.WrapCore(func(core zapcore.Core) zapcore.Core {
			return zapcore.NewTee(core, fileCore)
		}))
	}

	logger, err := cfg.Build(buildOpts...)
	if err != nil {
		return nil, err
	}

	Logger = logger
	zap.ReplaceGlobals(logger)
	return logger, nil
}

func fileWriter(opts Options) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   opts.FilePath,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAgeDays,
		Compress:   false,
	}
}
