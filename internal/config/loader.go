package config

import (
	"context"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if TAKEPOINT_CONFIG is set
//  3. env (prefix TAKEPOINT_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("TAKEPOINT_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	// Environment variables: TAKEPOINT_ADDR, TAKEPOINT_REGISTER_KEY, ...
	// Map env keys like TAKEPOINT_SESSION_TTL_SECONDS -> session_ttl_seconds.
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("TAKEPOINT_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "takepoint_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return ErrEmptyAddr
	case c.InstanceTTLSeconds <= 0 || c.SessionTTLSeconds <= 0:
		return ErrInvalidTTL
	case c.RegistrySweepSeconds <= 0 || c.SessionSweepSeconds <= 0 || c.BoundaryCheckSeconds <= 0:
		return ErrInvalidInterval
	case c.LeaderboardSize <= 0:
		return ErrInvalidLeaderboardSize
	}
	return nil
}
