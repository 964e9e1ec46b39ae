package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a zap logger for the given mode.
func New(development bool) (*zap.Logger, error) {
	var config zap.Config

	if development {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	return config.Build()
}

// MustNew creates a logger and panics if it fails.
func MustNew(development bool) *zap.Logger {
	log, err := New(development)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	return log
}

// NopSugar returns a sugared logger that discards everything. Test helper.
func NopSugar() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
