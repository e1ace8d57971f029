// Package config defines the service configuration and how it is loaded.
package config

import "time"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	AuthModeJWT = "jwt"
	AuthModeDev = "dev"
)

// Config contains process configuration.
type Config struct {
	// Addr is the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// StorageBackend selects the backend of record: memory or postgres.
	StorageBackend string `koanf:"storage_backend"`
	DatabaseURL    string `koanf:"database_url"`
	DBTracing      bool   `koanf:"db_tracing"`

	// AuthMode is jwt (verify bearer tokens) or dev (trust X-Debug-* headers).
	AuthMode   string `koanf:"auth_mode"`
	DevSubject string `koanf:"dev_subject"`
	DevRole    string `koanf:"dev_role"`

	JWTIssuer                 string        `koanf:"jwt_issuer"`
	JWTAudience               string        `koanf:"jwt_audience"`
	JWTJWKSURL                string        `koanf:"jwt_jwks_url"`
	JWTClockSkew              time.Duration `koanf:"jwt_clock_skew"`
	JWTJWKSRefreshInterval    time.Duration `koanf:"jwt_jwks_refresh_interval"`
	JWTJWKSMinRefreshInterval time.Duration `koanf:"jwt_jwks_min_refresh_interval"`
	JWTHTTPTimeout            time.Duration `koanf:"jwt_http_timeout"`

	// NATSURL enables publishing notices to NATS. Empty logs them instead.
	NATSURL     string `koanf:"nats_url"`
	NATSSubject string `koanf:"nats_subject"`

	// OTLPEndpoint enables trace export over OTLP/gRPC. Empty disables tracing.
	OTLPEndpoint string `koanf:"otlp_endpoint"`

	// SessionCacheSize bounds the number of live view sessions.
	SessionCacheSize int           `koanf:"session_cache_size"`
	MutationTimeout  time.Duration `koanf:"mutation_timeout"`
	LookupTimeout    time.Duration `koanf:"lookup_timeout"`

	// SeedDemo loads demo clubs into the memory backend on startup.
	SeedDemo bool `koanf:"seed_demo"`
}

// New returns a Config holding the defaults.
func New() *Config {
	return &Config{
		Addr:                      ":8080",
		LogLevel:                  "info",
		StorageBackend:            StorageMemory,
		AuthMode:                  AuthModeJWT,
		DevRole:                   "member",
		JWTClockSkew:              30 * time.Second,
		JWTJWKSRefreshInterval:    5 * time.Minute,
		JWTJWKSMinRefreshInterval: 10 * time.Second,
		JWTHTTPTimeout:            5 * time.Second,
		NATSSubject:               "clubportal.notices",
		SessionCacheSize:          10_000,
		MutationTimeout:           10 * time.Second,
		LookupTimeout:             5 * time.Second,
	}
}
