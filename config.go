package authkit

import (
	"errors"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ValidationMode selects how Engine.Validate treats the session registry.
type ValidationMode uint8

const (
	// ModeStrict accepts a token only when both the signature checks out
	// and the registry still knows it. Logout revokes immediately.
	ModeStrict ValidationMode = iota
	// ModeJWTOnly trusts the signature alone and never touches the
	// registry. Cheaper, but a logged-out token stays usable until exp.
	ModeJWTOnly
)

// Config is the static configuration consumed at Build time.
type Config struct {
	JWT            JWTConfig
	HTTP           HTTPConfig
	Lock           LockConfig
	Metrics        MetricsConfig
	ValidationMode ValidationMode
}

// JWTConfig carries the signing parameters.
type JWTConfig struct {
	Secret     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
	Audience   string
	Leeway     time.Duration
}

// HTTPConfig describes where bearer tokens travel on the wire.
type HTTPConfig struct {
	Header string
	Prefix string
}

// LockConfig configures the distributed lock.
type LockConfig struct {
	DefaultTTL time.Duration
}

// DefaultConfig returns the defaults: two-hour access tokens, seven-day
// refresh tokens, bearer tokens in the Authorization header, strict
// validation, 30 second lock TTL.
func DefaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  2 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
			Issuer:     "authkit",
			Audience:   "authkit-client",
		},
		HTTP: HTTPConfig{
			Header: "Authorization",
			Prefix: "Bearer ",
		},
		Lock: LockConfig{
			DefaultTTL: 30 * time.Second,
		},
		Metrics:        MetricsConfig{Enabled: true},
		ValidationMode: ModeStrict,
	}
}

type envSpec struct {
	Secret         string        `envconfig:"SECRET" required:"true"`
	AccessTTL      time.Duration `envconfig:"ACCESS_TTL" default:"2h"`
	RefreshTTL     time.Duration `envconfig:"REFRESH_TTL" default:"168h"`
	Issuer         string        `envconfig:"ISSUER" default:"authkit"`
	Audience       string        `envconfig:"AUDIENCE" default:"authkit-client"`
	Leeway         time.Duration `envconfig:"LEEWAY" default:"0"`
	Header         string        `envconfig:"HEADER" default:"Authorization"`
	TokenPrefix    string        `envconfig:"TOKEN_PREFIX" default:"Bearer "`
	LockTTL        time.Duration `envconfig:"LOCK_TTL" default:"30s"`
	Metrics        bool          `envconfig:"METRICS" default:"true"`
	MetricsLatency bool          `envconfig:"METRICS_LATENCY" default:"false"`
	ValidationMode string        `envconfig:"VALIDATION_MODE" default:"strict"`
}

// ConfigFromEnv reads configuration from AUTHKIT_* environment variables.
// AUTHKIT_SECRET is required; everything else falls back to the defaults.
func ConfigFromEnv() (Config, error) {
	var env envSpec
	if err := envconfig.Process("authkit", &env); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	cfg.JWT.Secret = env.Secret
	cfg.JWT.AccessTTL = env.AccessTTL
	cfg.JWT.RefreshTTL = env.RefreshTTL
	cfg.JWT.Issuer = env.Issuer
	cfg.JWT.Audience = env.Audience
	cfg.JWT.Leeway = env.Leeway
	cfg.HTTP.Header = env.Header
	cfg.HTTP.Prefix = env.TokenPrefix
	cfg.Lock.DefaultTTL = env.LockTTL
	cfg.Metrics = MetricsConfig{Enabled: env.Metrics, EnableLatency: env.MetricsLatency}

	switch env.ValidationMode {
	case "strict":
		cfg.ValidationMode = ModeStrict
	case "jwt-only":
		cfg.ValidationMode = ModeJWTOnly
	default:
		return Config{}, errors.New("authkit: validation mode must be strict or jwt-only")
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.JWT.Secret == "" {
		return errors.New("authkit: signing secret is required")
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("authkit: token TTLs must be positive")
	}
	if c.HTTP.Header == "" || c.HTTP.Prefix == "" {
		return errors.New("authkit: token header and prefix must be set")
	}
	if c.ValidationMode != ModeStrict && c.ValidationMode != ModeJWTOnly {
		return errors.New("authkit: invalid validation mode")
	}
	return nil
}
