// Package config holds the process-wide zone synchronization settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig indicates a configuration value outside its allowed range
var ErrInvalidConfig = errors.New("invalid config")

// ConflictMode политика разрешения конфликтов
type ConflictMode string

const (
	ConflictServerWins ConflictMode = "server-wins"
	ConflictClientWins ConflictMode = "client-wins"
	ConflictMerge      ConflictMode = "merge"
)

// Значения по умолчанию
const (
	DefaultAckTimeout      = 5 * time.Second
	DefaultMaxRetries      = 1
	DefaultLatencyWindow   = 20
	DefaultLatencyAlpha    = 0.2
	DefaultConflictLogSize = 10
)

// ZoneSyncConfig настройки движка синхронизации.
// Значение копируется целиком: изменения, выпущенные до UpdateConfig,
// продолжают жить со снимком, под которым были выпущены.
type ZoneSyncConfig struct {
	ConflictResolutionMode  ConflictMode  `yaml:"conflict_resolution_mode"`
	AckTimeout              time.Duration `yaml:"ack_timeout"`
	MaxRetries              int           `yaml:"max_retries"`
	LatencyWindow           int           `yaml:"latency_window"`
	LatencyAlpha            float64       `yaml:"latency_alpha"`
	ConflictLogSize         int           `yaml:"conflict_log_size"`
	EnableOptimisticUpdates bool          `yaml:"enable_optimistic_updates"`
	Debug                   bool          `yaml:"debug"`
}

// Update is a partial configuration. Nil fields keep their current value.
type Update struct {
	ConflictResolutionMode  *ConflictMode  `yaml:"conflict_resolution_mode"`
	AckTimeout              *time.Duration `yaml:"ack_timeout"`
	MaxRetries              *int           `yaml:"max_retries"`
	LatencyWindow           *int           `yaml:"latency_window"`
	LatencyAlpha            *float64       `yaml:"latency_alpha"`
	ConflictLogSize         *int           `yaml:"conflict_log_size"`
	EnableOptimisticUpdates *bool          `yaml:"enable_optimistic_updates"`
	Debug                   *bool          `yaml:"debug"`
}

// Default returns the built-in configuration.
func Default() ZoneSyncConfig {
	return ZoneSyncConfig{
		EnableOptimisticUpdates: true,
		ConflictResolutionMode:  ConflictServerWins,
		AckTimeout:              DefaultAckTimeout,
		MaxRetries:              DefaultMaxRetries,
		LatencyWindow:           DefaultLatencyWindow,
		LatencyAlpha:            DefaultLatencyAlpha,
		ConflictLogSize:         DefaultConflictLogSize,
	}
}

// New layers the partial update over the defaults and validates the result.
func New(u Update) (ZoneSyncConfig, error) {
	cfg := Default().Merge(u)
	if err := cfg.Validate(); err != nil {
		return ZoneSyncConfig{}, err
	}
	return cfg, nil
}

// Merge returns a copy of c with every non-nil field of u applied.
func (c ZoneSyncConfig) Merge(u Update) ZoneSyncConfig {
	if u.EnableOptimisticUpdates != nil {
		c.EnableOptimisticUpdates = *u.EnableOptimisticUpdates
	}
	if u.ConflictResolutionMode != nil {
		c.ConflictResolutionMode = *u.ConflictResolutionMode
	}
	if u.AckTimeout != nil {
		c.AckTimeout = *u.AckTimeout
	}
	if u.MaxRetries != nil {
		c.MaxRetries = *u.MaxRetries
	}
	if u.LatencyWindow != nil {
		c.LatencyWindow = *u.LatencyWindow
	}
	if u.LatencyAlpha != nil {
		c.LatencyAlpha = *u.LatencyAlpha
	}
	if u.ConflictLogSize != nil {
		c.ConflictLogSize = *u.ConflictLogSize
	}
	if u.Debug != nil {
		c.Debug = *u.Debug
	}
	return c
}

// Validate проверяет диапазоны значений
func (c ZoneSyncConfig) Validate() error {
	switch c.ConflictResolutionMode {
	case ConflictServerWins, ConflictClientWins, ConflictMerge:
	default:
		return fmt.Errorf("%w: unknown conflict resolution mode %q", ErrInvalidConfig, c.ConflictResolutionMode)
	}
	if c.AckTimeout <= 0 {
		return fmt.Errorf("%w: ack timeout must be positive, got %s", ErrInvalidConfig, c.AckTimeout)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative, got %d", ErrInvalidConfig, c.MaxRetries)
	}
	if c.LatencyWindow < 2 {
		return fmt.Errorf("%w: latency window must hold at least 2 samples, got %d", ErrInvalidConfig, c.LatencyWindow)
	}
	if c.LatencyAlpha <= 0 || c.LatencyAlpha > 1 {
		return fmt.Errorf("%w: latency alpha must be in (0, 1], got %v", ErrInvalidConfig, c.LatencyAlpha)
	}
	if c.ConflictLogSize < 1 {
		return fmt.Errorf("%w: conflict log size must be positive, got %d", ErrInvalidConfig, c.ConflictLogSize)
	}
	return nil
}

// Load reads a YAML file containing a partial configuration.
// A missing path returns an empty Update.
func Load(path string) (Update, error) {
	var u Update
	if err := loadYAML(path, &u); err != nil {
		return Update{}, err
	}
	return u, nil
}

func loadYAML(path string, out any) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// Ptr returns a pointer to v. Handy for building an Update inline.
func Ptr[T any](v T) *T {
	return &v
}
