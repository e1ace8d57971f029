package config

import "time"

// JWTConfig configures JWT verification against a JWKS endpoint.
type JWTConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string

	ClockSkew              time.Duration
	JWKSRefreshInterval    time.Duration
	JWKSMinRefreshInterval time.Duration

	HTTPTimeout time.Duration
}

// JWT returns the verifier settings of c.
func (c *Config) JWT() JWTConfig {
	return JWTConfig{
		Issuer:                 c.JWTIssuer,
		Audience:               c.JWTAudience,
		JWKSURL:                c.JWTJWKSURL,
		ClockSkew:              c.JWTClockSkew,
		JWKSRefreshInterval:    c.JWTJWKSRefreshInterval,
		JWKSMinRefreshInterval: c.JWTJWKSMinRefreshInterval,
		HTTPTimeout:            c.JWTHTTPTimeout,
	}
}
