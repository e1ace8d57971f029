package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix     = "CLUBHUB_"
	EnvConfigFile = "CLUBHUB_CONFIG"
)

// Load builds a Config by layering, from low to high precedence:
//  1. defaults (New)
//  2. the YAML file named by CLUBHUB_CONFIG, if set
//  3. env vars with the CLUBHUB_ prefix (CLUBHUB_LOG_LEVEL -> log_level)
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(EnvConfigFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: env: %w", ErrLoadConfig, err)
	}

	cfg := *New()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting, wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(c.Addr) == "" {
		return invalid("addr must not be empty")
	}
	switch c.StorageBackend {
	case StorageMemory:
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return invalid("database_url is required when storage_backend=postgres")
		}
	default:
		return invalid("storage_backend must be memory or postgres, got %q", c.StorageBackend)
	}
	switch c.AuthMode {
	case AuthModeDev:
	case AuthModeJWT:
		if c.JWTIssuer == "" || c.JWTAudience == "" || c.JWTJWKSURL == "" {
			return invalid("jwt_issuer, jwt_audience and jwt_jwks_url are required when auth_mode=jwt")
		}
	default:
		return invalid("auth_mode must be jwt or dev, got %q", c.AuthMode)
	}
	if c.SessionCacheSize <= 0 {
		return invalid("session_cache_size must be positive")
	}
	if c.MutationTimeout <= 0 || c.LookupTimeout <= 0 {
		return invalid("mutation_timeout and lookup_timeout must be positive")
	}
	return nil
}
