package goSession

import (
	"errors"
	"net/url"
	"strings"
	"time"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	AuthEndpoint AuthEndpointConfig
	TokenStore   TokenStoreConfig
	Preflight    PreflightConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
	Security     SecurityConfig
}

/*
====================================
AUTH ENDPOINT CONFIG
====================================
*/

// AuthEndpointConfig defines a public type used by goSession APIs.
//
// AuthEndpointConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuthEndpointConfig struct {
	BaseURL     string
	VerifyPath  string
	RefreshPath string
	ProfilePath string // subject ID is appended as the final path segment
	Timeout     time.Duration
	UserAgent   string
}

/*
====================================
TOKEN STORE CONFIG
====================================
*/

// TokenStoreConfig defines a public type used by goSession APIs.
//
// TokenStoreConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenStoreConfig struct {
	RedisPrefix string
	// Namespace isolates one client identity per store; typically a device or
	// installation ID.
	Namespace  string
	AccessTTL  time.Duration // 0 = no expiry
	RefreshTTL time.Duration // 0 = no expiry

	// Dial readiness backoff (tokenstore.WaitReady). Never applied inside a
	// bootstrap run.
	DialMaxAttempts uint64
	DialBaseDelay   time.Duration
	DialMaxDelay    time.Duration
}

/*
====================================
PREFLIGHT CONFIG
====================================
*/

// PreflightConfig controls the local access-token inspection that runs before
// the network verify. Disabled by default: when off, every stored access token
// is verified against the auth endpoint. When on, a locally-expired (or, with
// a verify key configured, locally-rejected) token takes the refresh branch
// without spending a network round-trip.
type PreflightConfig struct {
	Enabled       bool
	SigningMethod string // "ed25519" (default) or "hs256"; only used with VerifyKey
	VerifyKey     []byte // optional; empty means exp-only inspection
	Leeway        time.Duration
}

// AuditConfig defines a public type used by goSession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by goSession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by goSession APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	ProductionMode bool
	// RequireTLSEndpoint rejects plain-http auth endpoints at build time.
	RequireTLSEndpoint bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the baseline preset: preflight off, audit and metrics
// off, non-production. Callers must still set AuthEndpoint.BaseURL and
// TokenStore.Namespace before building.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		AuthEndpoint: AuthEndpointConfig{
			VerifyPath:  "/auth/verify",
			RefreshPath: "/auth/refresh",
			ProfilePath: "/users",
			Timeout:     10 * time.Second,
			UserAgent:   "goSession",
		},
		TokenStore: TokenStoreConfig{
			RedisPrefix:     "sb",
			AccessTTL:       0,
			RefreshTTL:      0,
			DialMaxAttempts: 5,
			DialBaseDelay:   200 * time.Millisecond,
			DialMaxDelay:    5 * time.Second,
		},
		Preflight: PreflightConfig{
			Enabled:       false,
			SigningMethod: "ed25519",
			Leeway:        30 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Security: SecurityConfig{
			ProductionMode:     false,
			RequireTLSEndpoint: false,
		},
	}
}

// HardenedConfig returns the production preset: TLS-only endpoint, preflight
// enabled with exp-only inspection, audit and metrics on.
func HardenedConfig() Config {
	cfg := defaultConfig()
	cfg.Security.ProductionMode = true
	cfg.Security.RequireTLSEndpoint = true
	cfg.Preflight.Enabled = true
	cfg.Audit.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.AuthEndpoint.Timeout = 5 * time.Second
	return cfg
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Preflight.VerifyKey = cloneBytes(cfg.Preflight.VerifyKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	// Auth endpoint
	if c.AuthEndpoint.BaseURL == "" {
		return errors.New("AuthEndpoint BaseURL is required")
	}
	u, err := url.Parse(c.AuthEndpoint.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("AuthEndpoint BaseURL must be an absolute URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("AuthEndpoint BaseURL scheme must be http or https")
	}
	if c.Security.RequireTLSEndpoint && u.Scheme != "https" {
		return errors.New("RequireTLSEndpoint requires an https AuthEndpoint BaseURL")
	}
	if c.AuthEndpoint.Timeout <= 0 {
		return errors.New("AuthEndpoint Timeout must be > 0")
	}
	for _, p := range []string{c.AuthEndpoint.VerifyPath, c.AuthEndpoint.RefreshPath, c.AuthEndpoint.ProfilePath} {
		if p == "" || !strings.HasPrefix(p, "/") {
			return errors.New("AuthEndpoint paths must be non-empty and start with '/'")
		}
	}

	// Token store
	if c.TokenStore.RedisPrefix == "" {
		return errors.New("TokenStore RedisPrefix is required")
	}
	if c.TokenStore.Namespace == "" {
		return errors.New("TokenStore Namespace is required")
	}
	if c.TokenStore.AccessTTL < 0 || c.TokenStore.RefreshTTL < 0 {
		return errors.New("TokenStore TTLs must be >= 0")
	}
	if c.TokenStore.DialMaxAttempts > 0 {
		if c.TokenStore.DialBaseDelay <= 0 {
			return errors.New("TokenStore DialBaseDelay must be > 0 when dial retry is enabled")
		}
		if c.TokenStore.DialMaxDelay < c.TokenStore.DialBaseDelay {
			return errors.New("TokenStore DialMaxDelay must be >= DialBaseDelay")
		}
	}

	// Preflight
	if c.Preflight.Enabled {
		if c.Preflight.Leeway < 0 || c.Preflight.Leeway > 2*time.Minute {
			return errors.New("Preflight Leeway must be between 0 and 2m")
		}
		if len(c.Preflight.VerifyKey) > 0 {
			switch c.Preflight.SigningMethod {
			case "ed25519", "hs256":
				// valid
			default:
				return errors.New("Preflight SigningMethod must be ed25519 or hs256")
			}
		}
	}

	// Audit
	if c.Audit.Enabled {
		if c.Audit.BufferSize <= 0 {
			return errors.New("Audit BufferSize must be > 0 when audit is enabled")
		}
	}

	// Production hardening
	if c.Security.ProductionMode {
		if !c.Security.RequireTLSEndpoint {
			return errors.New("ProductionMode requires RequireTLSEndpoint")
		}
		if c.AuthEndpoint.Timeout > 30*time.Second {
			return errors.New("ProductionMode requires AuthEndpoint Timeout <= 30s")
		}
	}

	return nil
}
