package goSession

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/MrEthical07/goSession/internal/flows"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/session"
	"github.com/MrEthical07/goSession/state"
	"github.com/MrEthical07/goSession/tokenstore"
)

// Engine defines a public type used by goSession APIs.
//
// Engine instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Engine struct {
	config     Config
	tokenStore *tokenstore.Store
	client     AuthClient
	inspector  *jwt.Inspector
	flows      flows.Service
	state      *state.Store
	audit      *auditDispatcher
	metrics    *Metrics

	// latch guarantees one bootstrap run per state generation even when the
	// host invokes Bootstrap more than once for the same logical lifetime.
	latch atomic.Bool
	runMu sync.Mutex
}

func warnLog(msg string, _ ...any) {
	log.Print(msg)
}

/*==== LIFECYCLE ====*/

// Bootstrap resolves the stored credential pair into a session outcome. The
// first call for a state generation runs the protocol; every later call
// waits for that run's resolution and returns the same outcome without
// touching the network or the token store. An error is returned only for
// engine misuse or a cancelled wait, never for a protocol failure — those
// fold into an unauthenticated outcome.
func (e *Engine) Bootstrap(ctx context.Context) (Outcome, error) {
	if e == nil || !e.flows.Initialized() {
		return session.Unauthenticated(), ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	if !e.latch.CompareAndSwap(false, true) {
		return e.awaitResolution(ctx)
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()
	return e.runBootstrap(ctx), nil
}

// Rebootstrap starts a fresh state generation and runs the protocol again.
// Intended for after login or logout, when the stored credentials changed
// and the resolved outcome is stale. Blocks until any in-flight run resolves
// first.
func (e *Engine) Rebootstrap(ctx context.Context) (Outcome, error) {
	if e == nil || !e.flows.Initialized() {
		return session.Unauthenticated(), ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	e.runMu.Lock()
	defer e.runMu.Unlock()

	e.state.Reset()
	e.latch.Store(true)
	return e.runBootstrap(ctx), nil
}

// Logout clears both stored tokens and resolves the state to
// unauthenticated. The state transition happens even when the clear fails;
// the error reports the failed clear so the caller can retry it.
func (e *Engine) Logout(ctx context.Context) error {
	if e == nil || !e.flows.Initialized() {
		return ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}

	res := e.flows.Logout(ctx)
	e.state.Resolve(session.Unauthenticated())
	e.latch.Store(true)

	e.metricInc(MetricLogout)
	event := AuditEvent{
		EventType: AuditLogout,
		DeviceID:  session.DeviceIDFromContext(ctx),
		Success:   res.Failure == flows.LogoutFailureNone,
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	}
	e.auditEmit(ctx, event)

	if res.Failure != flows.LogoutFailureNone {
		return res.Err
	}
	e.metricInc(MetricTokensCleared)
	return nil
}

// WaitStoreReady blocks until the token store answers a ping, using the
// configured dial backoff. Call it once at process start, before Bootstrap.
func (e *Engine) WaitStoreReady(ctx context.Context) error {
	if e == nil || e.tokenStore == nil {
		return ErrEngineNotReady
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return e.tokenStore.WaitReady(ctx)
}

/*==== STATE ACCESS ====*/

// State exposes the application state store: the verifying flag, the
// resolved outcome, and the resolution channel consumers block on.
func (e *Engine) State() *state.Store {
	if e == nil {
		return nil
	}
	return e.state
}

// Outcome returns the resolved outcome, or ErrNotResolved while a bootstrap
// run is still in flight.
func (e *Engine) Outcome() (Outcome, error) {
	if e == nil || e.state == nil {
		return session.Unauthenticated(), ErrEngineNotReady
	}
	outcome, final := e.state.Outcome()
	if !final {
		return session.Unauthenticated(), ErrNotResolved
	}
	return outcome, nil
}

/*==== HOUSEKEEPING ====*/

// Close describes the close operation and its observable behavior.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

/*==== INTERNALS ====*/

func (e *Engine) runBootstrap(ctx context.Context) Outcome {
	runID := uuid.NewString()
	deviceID := session.DeviceIDFromContext(ctx)
	start := time.Now()

	e.metricInc(MetricBootstrapStarted)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditBootstrapStarted,
		RunID:     runID,
		DeviceID:  deviceID,
		Success:   true,
	})

	res := e.flows.Bootstrap(ctx)
	e.state.Resolve(res.Outcome)

	e.recordBootstrapMetrics(res, time.Since(start))
	e.auditEmit(ctx, bootstrapResolvedEvent(res, runID, deviceID))
	if res.TokensCleared {
		e.auditEmit(ctx, AuditEvent{
			EventType: AuditTokensCleared,
			RunID:     runID,
			DeviceID:  deviceID,
			Success:   true,
		})
	}

	return res.Outcome
}

func (e *Engine) awaitResolution(ctx context.Context) (Outcome, error) {
	e.metricInc(MetricBootstrapSkipped)
	e.auditEmit(ctx, AuditEvent{
		EventType: AuditBootstrapSkipped,
		DeviceID:  session.DeviceIDFromContext(ctx),
		Success:   true,
	})

	select {
	case <-e.state.Resolved():
		outcome, _ := e.state.Outcome()
		return outcome, nil
	case <-ctx.Done():
		return session.Unauthenticated(), ctx.Err()
	}
}

func (e *Engine) recordBootstrapMetrics(res flows.BootstrapResult, elapsed time.Duration) {
	if res.Outcome.Authenticated {
		e.metricInc(MetricBootstrapAuthenticated)
		e.metricInc(MetricVerifyValid)
		e.metricInc(MetricProfileSuccess)
	} else {
		e.metricInc(MetricBootstrapUnauthenticated)
	}

	switch res.Failure {
	case flows.BootstrapFailureStoreRead:
		e.metricInc(MetricStoreUnavailable)
	case flows.BootstrapFailureProfile:
		e.metricInc(MetricVerifyValid)
		e.metricInc(MetricProfileFailure)
	case flows.BootstrapFailureNoRefreshToken, flows.BootstrapFailureRefresh, flows.BootstrapFailureReverify:
		e.metricInc(MetricVerifyInvalid)
	}

	if res.Refreshed {
		e.metricInc(MetricRefreshSuccess)
	} else if res.Failure == flows.BootstrapFailureRefresh {
		e.metricInc(MetricRefreshFailure)
	}
	if res.TokensCleared {
		e.metricInc(MetricTokensCleared)
	}

	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricBootstrapLatency, elapsed)
	}
}

func bootstrapResolvedEvent(res flows.BootstrapResult, runID, deviceID string) AuditEvent {
	event := AuditEvent{
		EventType: AuditBootstrapResolved,
		RunID:     runID,
		SubjectID: res.SubjectID,
		DeviceID:  deviceID,
		Success:   res.Outcome.Authenticated,
		Metadata: map[string]string{
			"resolution": failureKindString(res.Failure),
		},
	}
	if res.Refreshed {
		event.Metadata["refreshed"] = "true"
	}
	if res.Err != nil {
		event.Error = res.Err.Error()
	} else if res.VerifyErr != nil {
		event.Error = res.VerifyErr.Error()
	}
	return event
}

func failureKindString(kind flows.BootstrapFailureKind) string {
	switch kind {
	case flows.BootstrapFailureNone:
		return "authenticated"
	case flows.BootstrapFailureStoreRead:
		return "store_read_failed"
	case flows.BootstrapFailureNoCredentials:
		return "no_credentials"
	case flows.BootstrapFailureProfile:
		return "profile_failed"
	case flows.BootstrapFailureNoRefreshToken:
		return "no_refresh_token"
	case flows.BootstrapFailureRefresh:
		return "refresh_failed"
	case flows.BootstrapFailureReverify:
		return "reverify_failed"
	default:
		return "unknown"
	}
}

func (e *Engine) preflightExpired() func(string) bool {
	if !e.config.Preflight.Enabled {
		return nil
	}
	return func(token string) bool {
		if e.inspector == nil {
			return false
		}
		expired := e.inspector.Expired(token, time.Now())
		if expired {
			e.metricInc(MetricVerifySkippedPreflight)
		}
		return expired
	}
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) auditEmit(ctx context.Context, event AuditEvent) {
	if e == nil || e.audit == nil {
		return
	}
	e.audit.Emit(ctx, event)
}
