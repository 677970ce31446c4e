package config

import (
	"go.uber.org/zap"
)

// NewLogger builds the process logger: console output with a development
// config when env is "dev", JSON otherwise.  level is a zap level name; an
// unknown name falls back to info.
func NewLogger(env, level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if env == "dev" {
		cfg = zap.NewDevelopmentConfig()
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		lvl = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Level = lvl
	return cfg.Build()
}
