package goSession

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Audit event types emitted by the engine.
const (
	AuditBootstrapStarted  = "bootstrap_started"
	AuditBootstrapResolved = "bootstrap_resolved"
	AuditBootstrapSkipped  = "bootstrap_skipped"
	AuditTokensCleared     = "tokens_cleared"
	AuditLogout            = "logout"
)

// auditDispatcher decouples sink latency from the bootstrap hot path. Events
// flow through a buffered channel to a single worker goroutine; on Close the
// channel is drained before the worker exits.
type auditDispatcher struct {
	cfg       AuditConfig
	sink      AuditSink
	events    chan AuditEvent
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newAuditDispatcher(cfg AuditConfig, sink AuditSink) *auditDispatcher {
	if !cfg.Enabled {
		return nil
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if sink == nil {
		sink = NoOpSink{}
	}

	d := &auditDispatcher{
		cfg:    cfg,
		sink:   sink,
		events: make(chan AuditEvent, cfg.BufferSize),
		done:   make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *auditDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		case <-d.done:
			d.drain()
			return
		}
	}
}

func (d *auditDispatcher) drain() {
	for {
		select {
		case event := <-d.events:
			d.sink.Emit(context.Background(), event)
		default:
			return
		}
	}
}

// Emit enqueues the event. A full buffer drops the event when DropIfFull is
// set (counted via Dropped), otherwise Emit blocks until the worker catches
// up or ctx is cancelled. A zero Timestamp is stamped here so callers can
// build events without touching the clock.
func (d *auditDispatcher) Emit(ctx context.Context, event AuditEvent) {
	if d == nil || d.closed.Load() {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if d.cfg.DropIfFull {
		select {
		case d.events <- event:
		case <-d.done:
		default:
			d.dropped.Add(1)
		}
		return
	}

	select {
	case d.events <- event:
	case <-ctx.Done():
	case <-d.done:
	}
}

// Close stops the worker after draining buffered events. Safe to call more
// than once; Emit after Close is a no-op.
func (d *auditDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the buffer was full.
func (d *auditDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}
