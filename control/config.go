// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Viper-backed configuration store with defaults, environment overrides
// (HIOLOAD_ prefix), optional YAML file and reload listeners.

package control

import (
	"fmt"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig configures the scheduling engine.
type EngineConfig struct {
	Workers       int  `mapstructure:"workers"`
	PinCPUs       bool `mapstructure:"pin_cpus"`
	FirstCPU      int  `mapstructure:"first_cpu"`
	QueueCapacity int  `mapstructure:"queue_capacity"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig configures prometheus collectors.
type MetricsConfig struct {
	Namespace string `mapstructure:"namespace"`
}

// Config is the decoded configuration.
type Config struct {
	Engine  EngineConfig  `mapstructure:"engine"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// EnvPrefix is prepended to environment overrides: HIOLOAD_ENGINE_WORKERS.
const EnvPrefix = "HIOLOAD"

// ConfigStore holds the live configuration and notifies listeners on change.
type ConfigStore struct {
	mu        sync.RWMutex
	v         *viper.Viper
	current   Config
	listeners []func(Config)
}

// NewConfigStore initializes a store with defaults and environment overrides.
func NewConfigStore() *ConfigStore {
	v := viper.New()
	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.pin_cpus", false)
	v.SetDefault("engine.first_cpu", 0)
	v.SetDefault("engine.queue_capacity", 1024)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("metrics.namespace", "hioload_transport")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cs := &ConfigStore{v: v}
	// Defaults always decode.
	_ = cs.reload()
	return cs
}

// LoadFile reads a YAML configuration file on top of the defaults.
func (cs *ConfigStore) LoadFile(path string) error {
	cs.mu.Lock()
	cs.v.SetConfigFile(path)
	if err := cs.v.ReadInConfig(); err != nil {
		cs.mu.Unlock()
		return fmt.Errorf("read config %s: %w", path, err)
	}
	cs.mu.Unlock()
	return cs.reload()
}

// Watch reloads the configuration whenever the loaded file changes.
func (cs *ConfigStore) Watch() {
	cs.v.OnConfigChange(func(fsnotify.Event) {
		_ = cs.reload()
	})
	cs.v.WatchConfig()
}

// Config returns the current decoded configuration.
func (cs *ConfigStore) Config() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.current
}

// Set overrides one key and dispatches a reload.
func (cs *ConfigStore) Set(key string, value any) error {
	cs.mu.Lock()
	cs.v.Set(key, value)
	cs.mu.Unlock()
	return cs.reload()
}

// GetSnapshot returns every setting as a nested map.
func (cs *ConfigStore) GetSnapshot() map[string]any {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.v.AllSettings()
}

// OnReload registers a listener called with the new configuration.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

func (cs *ConfigStore) reload() error {
	cs.mu.Lock()
	var cfg Config
	if err := cs.v.Unmarshal(&cfg); err != nil {
		cs.mu.Unlock()
		return fmt.Errorf("decode config: %w", err)
	}
	cs.current = cfg
	listeners := make([]func(Config), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}
