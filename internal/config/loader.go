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

const (
	envPrefix  = "NETSTATS_"
	envConfig  = "NETSTATS_CONFIG"
	weightsKey = "rating_weights"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if NETSTATS_CONFIG is set
//  3. env (prefix NETSTATS_)
//
// Rating weights can be set individually from the environment, e.g.
// NETSTATS_RATING_WEIGHTS_GOALS=0.25.
func Load(ctx context.Context) (*Config, error) {
	base := New(ctx)

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// NETSTATS_QUEUE_SIZE -> queue_size; NETSTATS_RATING_WEIGHTS_GOALS -> rating_weights.goals
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
		if strings.HasPrefix(s, weightsKey+"_") {
			return weightsKey + "." + strings.TrimPrefix(s, weightsKey+"_")
		}
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *base
	cfg.RatingWeights = make(map[string]float64, len(base.RatingWeights))
	for name, w := range base.RatingWeights {
		cfg.RatingWeights[name] = w
	}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
