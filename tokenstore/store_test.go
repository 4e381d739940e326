package tokenstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newStoreTest(t *testing.T, opts Options) (*Store, *miniredis.Miniredis, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := NewStore(rdb, opts)
	return store, mr, func() {
		rdb.Close()
		mr.Close()
	}
}

func TestCredentialsEmptyStore(t *testing.T) {
	store, _, done := newStoreTest(t, Options{})
	defer done()
	ctx := context.Background()

	creds, err := store.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.HasAccess() || creds.HasRefresh() {
		t.Fatalf("expected empty credentials, got %+v", creds)
	}
}

func TestSetAndReadBack(t *testing.T) {
	store, _, done := newStoreTest(t, Options{Namespace: "app1"})
	defer done()
	ctx := context.Background()

	if err := store.SetAccess(ctx, "acc-1"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	if err := store.SetRefresh(ctx, "ref-1"); err != nil {
		t.Fatalf("set refresh: %v", err)
	}
	creds, err := store.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.AccessToken != "acc-1" || creds.RefreshToken != "ref-1" {
		t.Fatalf("unexpected credentials: %+v", creds)
	}
}

func TestSetEmptyDeletesSlot(t *testing.T) {
	store, _, done := newStoreTest(t, Options{})
	defer done()
	ctx := context.Background()

	if err := store.SetAccess(ctx, "acc-1"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	if err := store.SetAccess(ctx, ""); err != nil {
		t.Fatalf("clear access: %v", err)
	}
	creds, err := store.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.HasAccess() {
		t.Fatalf("access token should have been deleted, got %q", creds.AccessToken)
	}
}

func TestClearRemovesBothAndIsIdempotent(t *testing.T) {
	store, _, done := newStoreTest(t, Options{})
	defer done()
	ctx := context.Background()

	if err := store.SetAccess(ctx, "acc-1"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	if err := store.SetRefresh(ctx, "ref-1"); err != nil {
		t.Fatalf("set refresh: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("first clear: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	creds, err := store.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.HasAccess() || creds.HasRefresh() {
		t.Fatalf("expected empty credentials after clear, got %+v", creds)
	}
}

func TestNamespacesDoNotCollide(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	a := NewStore(rdb, Options{Namespace: "a"})
	b := NewStore(rdb, Options{Namespace: "b"})
	ctx := context.Background()

	if err := a.SetAccess(ctx, "acc-a"); err != nil {
		t.Fatalf("set access a: %v", err)
	}
	creds, err := b.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials b: %v", err)
	}
	if creds.HasAccess() {
		t.Fatalf("namespace b should not see namespace a token, got %q", creds.AccessToken)
	}
}

func TestAccessTTLExpires(t *testing.T) {
	store, mr, done := newStoreTest(t, Options{AccessTTL: time.Minute})
	defer done()
	ctx := context.Background()

	if err := store.SetAccess(ctx, "acc-1"); err != nil {
		t.Fatalf("set access: %v", err)
	}
	mr.FastForward(2 * time.Minute)

	creds, err := store.Credentials(ctx)
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	if creds.HasAccess() {
		t.Fatalf("access token should have expired, got %q", creds.AccessToken)
	}
}

func TestTransportFailureWrapsSentinel(t *testing.T) {
	store, mr, done := newStoreTest(t, Options{})
	defer done()
	ctx := context.Background()
	mr.Close()

	if _, err := store.Credentials(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("credentials error = %v, want ErrStoreUnavailable", err)
	}
	if err := store.SetAccess(ctx, "acc-1"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("set access error = %v, want ErrStoreUnavailable", err)
	}
	if err := store.Clear(ctx); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("clear error = %v, want ErrStoreUnavailable", err)
	}
}

func TestWaitReadySucceedsImmediately(t *testing.T) {
	store, _, done := newStoreTest(t, Options{DialMaxAttempts: 3, DialBaseDelay: time.Millisecond})
	defer done()

	if err := store.WaitReady(context.Background()); err != nil {
		t.Fatalf("wait ready: %v", err)
	}
}

func TestWaitReadyExhaustsAttempts(t *testing.T) {
	store, mr, done := newStoreTest(t, Options{DialMaxAttempts: 2, DialBaseDelay: time.Millisecond})
	defer done()
	mr.Close()

	if err := store.WaitReady(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("wait ready error = %v, want ErrStoreUnavailable", err)
	}
}
