package goSession

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/state"
	"github.com/MrEthical07/goSession/tokenstore"
)

// Builder defines a public type used by goSession APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config Config
	redis  *redis.Client

	authClient AuthClient
	auditSink  AuditSink

	built bool
}

// New describes the new operation and its observable behavior.
//
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuthClient overrides the HTTP auth endpoint client, mainly for tests
// and for deployments that front the endpoint with their own transport.
func (b *Builder) WithAuthClient(client AuthClient) *Builder {
	b.authClient = client
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- TOKEN STORE --------
	store := tokenstore.NewStore(b.redis, tokenstore.Options{
		Prefix:          cfg.TokenStore.RedisPrefix,
		Namespace:       cfg.TokenStore.Namespace,
		AccessTTL:       cfg.TokenStore.AccessTTL,
		RefreshTTL:      cfg.TokenStore.RefreshTTL,
		DialMaxAttempts: int(cfg.TokenStore.DialMaxAttempts),
		DialBaseDelay:   cfg.TokenStore.DialBaseDelay,
		DialMaxDelay:    cfg.TokenStore.DialMaxDelay,
	})

	// -------- AUTH ENDPOINT CLIENT --------
	client := b.authClient
	if client == nil {
		client = authclient.NewClient(authclient.Options{
			BaseURL:     cfg.AuthEndpoint.BaseURL,
			VerifyPath:  cfg.AuthEndpoint.VerifyPath,
			RefreshPath: cfg.AuthEndpoint.RefreshPath,
			ProfilePath: cfg.AuthEndpoint.ProfilePath,
			Timeout:     cfg.AuthEndpoint.Timeout,
			UserAgent:   cfg.AuthEndpoint.UserAgent,
		})
	}

	engine := &Engine{
		config:     cloneConfig(cfg),
		tokenStore: store,
		client:     client,
		state:      state.New(),
	}

	// -------- PREFLIGHT INSPECTOR --------
	if cfg.Preflight.Enabled {
		inspector, err := jwt.NewInspector(jwt.Config{
			SigningMethod: jwt.SigningMethod(cfg.Preflight.SigningMethod),
			VerifyKey:     cloneBytes(cfg.Preflight.VerifyKey),
			Leeway:        cfg.Preflight.Leeway,
		})
		if err != nil {
			return nil, err
		}
		engine.inspector = inspector
	}

	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.flows = flows.New(flows.Deps{
		Bootstrap: flows.BootstrapDeps{
			Store:            store,
			Endpoint:         client,
			PreflightExpired: engine.preflightExpired(),
			Warn:             warnLog,
		},
		Logout: flows.LogoutDeps{
			Store: store,
		},
	})

	b.built = true

	return engine, nil
}
