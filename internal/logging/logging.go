// File: internal/logging/logging.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package logging builds the zap logger used across the module.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/momentics/hioload-transport/control"
)

// ParseLevel maps a config level name to a zap level. Empty means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	level, err := zapcore.ParseLevel(name)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("log level %q: %w", name, err)
	}
	return level, nil
}

// New builds a production (JSON) or development (console) logger whose level
// follows al, so callers can adjust it on config reload.
func New(cfg control.LogConfig, al zap.AtomicLevel) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	al.SetLevel(level)

	var zc zap.Config
	if cfg.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
		zc.Sampling = nil
		zc.DisableStacktrace = true
	}
	zc.Level = al

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Named("hioload"), nil
}

// Reload applies the level of cfg to al. Unknown levels leave al unchanged.
func Reload(al zap.AtomicLevel, cfg control.LogConfig) error {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return err
	}
	al.SetLevel(level)
	return nil
}
