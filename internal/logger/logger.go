// Package logger provides the process-wide structured logger built on Zap.
package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// Production logs JSON; everything else gets the console encoder.
// An optional level ("debug", "info", "warn", "error") overrides the
// environment default.
func Init(env string, level ...string) {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
		}

		if len(level) > 0 && level[0] != "" {
			var lvl zapcore.Level
			if err := lvl.UnmarshalText([]byte(level[0])); err == nil {
				cfg.Level = zap.NewAtomicLevelAt(lvl)
			}
		}

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}
		sugar = base.Sugar()
	})
}

// Get returns the global sugared logger, initializing a development
// logger on first use.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
