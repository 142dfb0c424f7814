package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/google/uuid"
)

// AuthMode selects the identity resolution strategy for the whole deployment.
// It is a closed set: unknown values are rejected at load time.
type AuthMode int

const (
	// AuthModeJWT authenticates requests by bearer token only.
	AuthModeJWT AuthMode = iota
	// AuthModeProxyHeader trusts identity headers injected by oauth2-proxy.
	AuthModeProxyHeader
	// AuthModeHybrid prefers proxy headers and falls back to bearer tokens.
	AuthModeHybrid
	// AuthModeForwarded is the narrow header variant: username taken from the
	// preferred-username header (forwarded-user as fallback), lookup keyed by
	// username, with a synthetic dev identity in the local environment.
	AuthModeForwarded
)

func (m AuthMode) String() string {
	switch m {
	case AuthModeJWT:
		return "jwt"
	case AuthModeProxyHeader:
		return "oauth2-proxy"
	case AuthModeHybrid:
		return "hybrid"
	case AuthModeForwarded:
		return "forwarded"
	}
	return fmt.Sprintf("AuthMode(%d)", int(m))
}

// UnmarshalText parses AUTH_MODE during env.Parse.
func (m *AuthMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "", "jwt":
		*m = AuthModeJWT
	case "oauth2-proxy":
		*m = AuthModeProxyHeader
	case "hybrid":
		*m = AuthModeHybrid
	case "forwarded":
		*m = AuthModeForwarded
	default:
		return fmt.Errorf("unknown auth mode %q (want jwt, oauth2-proxy, hybrid or forwarded)", text)
	}
	return nil
}

const (
	EnvLocal      = "local"
	EnvStaging    = "staging"
	EnvProduction = "production"
)

type Config struct {
	// Server
	Port        string `env:"PORT" envDefault:"8000"`
	Environment string `env:"ENVIRONMENT" envDefault:"local"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"app"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	// Token signing
	JWTSecret         string        `env:"JWT_SECRET"`
	AccessTokenExpiry time.Duration `env:"ACCESS_TOKEN_EXPIRY" envDefault:"192h"`

	// Identity resolution
	AuthMode                     AuthMode `env:"AUTH_MODE" envDefault:"jwt"`
	ProxyEmailHeader             string   `env:"OAUTH2_PROXY_EMAIL_HEADER" envDefault:"X-Forwarded-Email"`
	ProxyUserHeader              string   `env:"OAUTH2_PROXY_USER_HEADER" envDefault:"X-Forwarded-User"`
	ProxyPreferredUsernameHeader string   `env:"OAUTH2_PROXY_PREFERRED_USERNAME_HEADER" envDefault:"X-Forwarded-Preferred-Username"`

	// First superuser provisioning (skipped when email is empty)
	FirstSuperuser         string `env:"FIRST_SUPERUSER"`
	FirstSuperuserPassword string `env:"FIRST_SUPERUSER_PASSWORD"`

	// Items test configuration: when auth is disabled, created items are
	// stamped with the default owner instead of a resolved identity.
	ItemsAuthDisabled  bool      `env:"ITEMS_AUTH_DISABLED" envDefault:"false"`
	DefaultItemOwnerID uuid.UUID `env:"DEFAULT_ITEM_OWNER_ID" envDefault:"00000000-0000-0000-0000-000000000001"`
}

// Load parses configuration from the environment. Unknown AUTH_MODE values
// and malformed durations fail here rather than at first use.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// IsLocal reports whether this deployment runs in the local development
// environment. The forwarded-mode synthetic identity is gated on this.
func (c *Config) IsLocal() bool {
	return c.Environment == EnvLocal
}
