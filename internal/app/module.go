// File: internal/app/module.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Package app wires configuration, logging, metrics, the engine and debug
// probes into an fx application and installs them as the transport
// package defaults for the application's lifetime.
package app

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/momentics/hioload-transport/adapters"
	"github.com/momentics/hioload-transport/api"
	"github.com/momentics/hioload-transport/control"
	"github.com/momentics/hioload-transport/internal/logging"
	"github.com/momentics/hioload-transport/transport"
)

// Options is supplied by the caller with fx.Supply. Every field is optional.
type Options struct {
	// ConfigFile is a YAML file read on top of defaults and environment.
	ConfigFile string
	// WatchConfig reloads ConfigFile when it changes.
	WatchConfig bool
	// Overrides are applied after the file, e.g. from command line flags.
	Overrides map[string]any
	// Registerer receives the metrics; a private registry is used when nil.
	Registerer prometheus.Registerer
}

type optionsIn struct {
	fx.In

	Options Options `optional:"true"`
}

// Module returns the fx module.
func Module() fx.Option {
	return fx.Module("hioload",
		fx.Provide(
			ProvideConfig,
			ProvideLogger,
			ProvideMetrics,
			ProvideEngine,
			control.NewDebugProbes,
			ProvideControl,
		),
		fx.Invoke(Install),
	)
}

// ProvideConfig builds the config store.
func ProvideConfig(in optionsIn) (*control.ConfigStore, error) {
	cs := control.NewConfigStore()
	if in.Options.ConfigFile != "" {
		if err := cs.LoadFile(in.Options.ConfigFile); err != nil {
			return nil, err
		}
		if in.Options.WatchConfig {
			cs.Watch()
		}
	}
	for key, value := range in.Options.Overrides {
		if err := cs.Set(key, value); err != nil {
			return nil, err
		}
	}
	return cs, nil
}

// ProvideLogger builds the logger and follows log level changes on reload.
func ProvideLogger(cs *control.ConfigStore, lc fx.Lifecycle) (*zap.Logger, error) {
	al := zap.NewAtomicLevel()
	logger, err := logging.New(cs.Config().Log, al)
	if err != nil {
		return nil, err
	}
	cs.OnReload(func(cfg control.Config) {
		if err := logging.Reload(al, cfg.Log); err != nil {
			logger.Warn("ignoring log level from reloaded config", zap.Error(err))
		}
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = logger.Sync()
			return nil
		},
	})
	return logger, nil
}

// ProvideMetrics registers the collectors.
func ProvideMetrics(in optionsIn, cs *control.ConfigStore) (*control.Metrics, error) {
	reg := in.Options.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return control.NewMetrics(cs.Config().Metrics.Namespace, reg)
}

// ProvideEngine starts the engine and closes it on stop.
func ProvideEngine(cs *control.ConfigStore, logger *zap.Logger, m *control.Metrics, lc fx.Lifecycle) *adapters.EngineAdapter {
	cfg := cs.Config().Engine
	engine := adapters.NewEngineAdapter(adapters.EngineConfig{
		Workers:       cfg.Workers,
		PinCPUs:       cfg.PinCPUs,
		FirstCPU:      cfg.FirstCPU,
		QueueCapacity: cfg.QueueCapacity,
		Logger:        logger.Named("engine"),
		OnTask:        m.EngineTask,
	})
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			engine.Close()
			return nil
		},
	})
	return engine
}

// ProvideControl ties config reloads to the engine.
func ProvideControl(cs *control.ConfigStore, dp *control.DebugProbes, engine *adapters.EngineAdapter, logger *zap.Logger) *adapters.ControlAdapter {
	return adapters.NewControlAdapter(cs, dp, engine, logger)
}

// Install makes the logger, metrics and engine the transport defaults while
// the application runs, and restores the previous ones on stop.
func Install(lc fx.Lifecycle, logger *zap.Logger, m *control.Metrics, engine *adapters.EngineAdapter, dp *control.DebugProbes, _ *adapters.ControlAdapter) {
	var prev api.Engine
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			transport.SetLogger(logger)
			transport.SetMetrics(m)
			prev = adapters.SetDefaultEngine(engine)
			dp.RegisterProbe("live_streams", func() any { return transport.LiveStreams() })
			dp.RegisterProbe("standalone", func() any { return transport.DefaultFactoryStats() })
			logger.Info("hioload transport started", zap.Int("engine_workers", engine.NumWorkers()))
			return nil
		},
		OnStop: func(context.Context) error {
			adapters.SetDefaultEngine(prev)
			transport.SetMetrics(nil)
			transport.SetLogger(nil)
			return nil
		},
	})
}
