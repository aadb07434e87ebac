// Package logger provides structured logging using Zap.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	sugar *zap.SugaredLogger
	once  sync.Once
)

// Init initializes the global logger for the given environment.
// "production" gets the JSON encoder, anything else the console encoder.
// LOG_LEVEL (debug, info, warn, error) overrides the environment's default level.
func Init(env string) {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
		}

		if lvl, ok := parseLevel(os.Getenv("LOG_LEVEL")); ok {
			cfg.Level = zap.NewAtomicLevelAt(lvl)
		}

		base, err := cfg.Build()
		if err != nil {
			base = zap.NewNop()
		}

		sugar = base.Sugar()
	})
}

func parseLevel(s string) (zapcore.Level, bool) {
	if s == "" {
		return zapcore.InfoLevel, false
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(s))); err != nil {
		return zapcore.InfoLevel, false
	}
	return lvl, true
}

// Get returns the global sugared logger.
// If Init has not been called, it initializes a development logger.
func Get() *zap.SugaredLogger {
	if sugar == nil {
		Init("development")
	}
	return sugar
}

// WithRequest returns a child logger tagged with the request ID.
func WithRequest(requestID string) *zap.SugaredLogger {
	return Get().With("request_id", requestID)
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync() {
	if sugar != nil {
		_ = sugar.Sync()
	}
}
