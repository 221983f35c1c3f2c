package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if PBP_CONFIG is set
//  3. env (prefix PBP_)
func Load(ctx context.Context) (*Config, error) {
	_ = ctx // reserved for future remote providers

	base := New()
	k := koanf.New(".")

	if path := os.Getenv("PBP_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: PBP_WORKER_COUNT, PBP_SINK_PATH, ...
	// Underscores are preserved to match the koanf tags on the struct;
	// double underscores address nested keys (PBP_ZONES__CORNER_MIN_X).
	envProvider := env.Provider("PBP_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pbp_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the engine cannot run with.
func validate(cfg *Config) error {
	switch {
	case cfg.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case cfg.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case cfg.SinkDriver != "sqlite" && cfg.SinkDriver != "memory":
		return fmt.Errorf("%w: unknown sink_driver %q", ErrInvalidConfig, cfg.SinkDriver)
	case cfg.SinkDriver == "sqlite" && cfg.SinkPath == "":
		return fmt.Errorf("%w: sink_path must not be empty", ErrInvalidConfig)
	case cfg.ClutchClockSeconds <= 0 || cfg.ClutchMargin <= 0:
		return fmt.Errorf("%w: clutch window thresholds must be positive", ErrInvalidConfig)
	}
	return nil
}
