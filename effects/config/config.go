// Package config loads manager and sink settings from YAML with
// environment overrides.
//
//	dispatch_by_default: false
//	log_level: info
//	async:
//	  buffer_size: 64
//	  num_workers: 4
//	nats:
//	  url: nats://localhost:4222
//	  subject_prefix: effects.actions
//	  connect_attempts: 3
//	  connect_backoff: 500ms
//
// Every value can be overridden by an EFFECTS_ prefixed variable, for
// instance EFFECTS_DISPATCH_BY_DEFAULT=true or EFFECTS_NATS_URL.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/on-the-ground/effect_ive_dispatch/effects"
	"github.com/on-the-ground/effect_ive_dispatch/effects/log"
	"github.com/on-the-ground/effect_ive_dispatch/effects/sink/async"
	"github.com/on-the-ground/effect_ive_dispatch/effects/sink/natsbus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	DispatchByDefault bool         `yaml:"dispatch_by_default" env:"DISPATCH_BY_DEFAULT"`
	LogLevel          log.LogLevel `yaml:"log_level" env:"LOG_LEVEL"`
	Async             Async        `yaml:"async" envPrefix:"ASYNC_"`
	NATS              NATS         `yaml:"nats" envPrefix:"NATS_"`
}

type Async struct {
	BufferSize int `yaml:"buffer_size" env:"BUFFER_SIZE"`
	NumWorkers int `yaml:"num_workers" env:"NUM_WORKERS"`
}

// NATS is disabled while URL is empty.
type NATS struct {
	URL             string        `yaml:"url" env:"URL"`
	SubjectPrefix   string        `yaml:"subject_prefix" env:"SUBJECT_PREFIX"`
	ConnectAttempts int           `yaml:"connect_attempts" env:"CONNECT_ATTEMPTS"`
	// ConnectBackoff is the first wait between connect attempts; later
	// waits double, up to natsbus.MaxConnectDelay.
	ConnectBackoff  time.Duration `yaml:"connect_backoff" env:"CONNECT_BACKOFF"`
}

func Default() Config {
	return Config{
		DispatchByDefault: false,
		LogLevel:          log.LogInfo,
		Async:             Async{BufferSize: 64, NumWorkers: 1},
		NATS: NATS{
			SubjectPrefix:   natsbus.DefaultSubjectPrefix,
			ConnectAttempts: 3,
			ConnectBackoff:  500 * time.Millisecond,
		},
	}
}

// Load reads the YAML file at path. A missing path only applies defaults and
// environment overrides.
func Load(path string) (Config, error) {
	if path == "" {
		return Parse(nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %q: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes data over Default, then applies environment overrides.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to parse yaml: %w", err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.LogLevel {
	case log.LogDebug, log.LogInfo, log.LogWarn, log.LogError:
	default:
		return fmt.Errorf("%w: %s: unknown level %q", ErrInvalidConfig, KeyLogLevel, c.LogLevel)
	}
	if c.Async.BufferSize < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeyAsyncBufferSize)
	}
	if c.Async.NumWorkers < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeyAsyncNumWorkers)
	}
	if c.NATS.URL != "" && c.NATS.SubjectPrefix == "" {
		return fmt.Errorf("%w: %s is required with %s", ErrInvalidConfig, KeyNATSSubjectPrefix, KeyNATSURL)
	}
	if c.NATS.ConnectAttempts < 1 {
		return fmt.Errorf("%w: %s must be at least 1", ErrInvalidConfig, KeyNATSConnectAttempts)
	}
	if c.NATS.ConnectBackoff < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalidConfig, KeyNATSConnectBackoff)
	}
	return nil
}

func (c Config) Logger() (*zap.Logger, error) {
	return log.New(c.LogLevel)
}

func (c Config) AsyncConfig() async.Config {
	return async.NewConfig(c.Async.BufferSize, c.Async.NumWorkers)
}

// NATSOptions returns the natsbus options for c, and false when NATS is
// disabled.
func (c Config) NATSOptions(logger *zap.Logger) ([]natsbus.Option, bool) {
	if c.NATS.URL == "" {
		return nil, false
	}
	return []natsbus.Option{
		natsbus.WithSubjectPrefix(c.NATS.SubjectPrefix),
		natsbus.WithConnectRetry(c.NATS.ConnectAttempts, c.NATS.ConnectBackoff),
		natsbus.WithLogger(logger),
	}, true
}

// ManagerOptions translates c into manager options logging to logger.
func (c Config) ManagerOptions(logger *zap.Logger) []effects.Option {
	return []effects.Option{
		effects.WithConfig(effects.Config{DispatchByDefault: c.DispatchByDefault}),
		effects.WithLogger(logger),
	}
}
