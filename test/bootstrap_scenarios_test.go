package test

import (
	"context"
	"testing"
	"time"

	"github.com/MrEthical07/goSession/session"
)

func TestFirstVisitNoTokens(t *testing.T) {
	backend := newFakeBackend()
	f, done := newFixture(t, backend)
	defer done()

	outcome, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if outcome.Authenticated {
		t.Fatal("expected unauthenticated on first visit")
	}
	v, r, p := backend.calls()
	if v+r+p != 0 {
		t.Fatalf("first visit hit the network: verify=%d refresh=%d profile=%d", v, r, p)
	}
}

func TestReturningUserValidToken(t *testing.T) {
	backend := newFakeBackend()
	backend.validTokens["acc-1"] = "u-1"
	backend.profiles["u-1"] = session.Profile{SubjectID: "u-1", DisplayName: "Asha", Role: "customer"}

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-1", "ref-1")

	outcome, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !outcome.Authenticated || outcome.Profile.DisplayName != "Asha" {
		t.Fatalf("unexpected outcome: %+v", outcome)
	}
	v, r, p := backend.calls()
	if v != 1 || r != 0 || p != 1 {
		t.Fatalf("call sequence: verify=%d refresh=%d profile=%d, want 1/0/1", v, r, p)
	}
}

func TestExpiredAccessValidRefresh(t *testing.T) {
	backend := newFakeBackend()
	backend.refreshMap["ref-1"] = "acc-new"
	backend.validTokens["acc-new"] = "u-1"
	backend.profiles["u-1"] = session.Profile{SubjectID: "u-1", DisplayName: "Asha"}

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-stale", "ref-1")

	outcome, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if !outcome.Authenticated {
		t.Fatal("expected authenticated after refresh")
	}
	v, r, p := backend.calls()
	if v != 2 || r != 1 || p != 1 {
		t.Fatalf("call sequence: verify=%d refresh=%d profile=%d, want 2/1/1", v, r, p)
	}
	access, refresh := f.storedTokens()
	if access != "acc-new" {
		t.Fatalf("stored access = %q, want acc-new", access)
	}
	if refresh != "ref-1" {
		t.Fatalf("stored refresh = %q, want ref-1 (refresh token is not rotated)", refresh)
	}
}

func TestExpiredAccessDeadRefresh(t *testing.T) {
	backend := newFakeBackend()

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-stale", "ref-dead")

	outcome, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if outcome.Authenticated {
		t.Fatal("expected unauthenticated")
	}
	access, refresh := f.storedTokens()
	if access != "" || refresh != "" {
		t.Fatalf("tokens not cleared: access=%q refresh=%q", access, refresh)
	}

	// A later run over the cleared store resolves without network calls.
	vBefore, rBefore, pBefore := backend.calls()
	outcome, err = f.engine.Rebootstrap(context.Background())
	if err != nil {
		t.Fatalf("rebootstrap: %v", err)
	}
	if outcome.Authenticated {
		t.Fatal("cleared store resurrected a session")
	}
	vAfter, rAfter, pAfter := backend.calls()
	if vAfter != vBefore || rAfter != rBefore || pAfter != pBefore {
		t.Fatal("run over cleared store hit the network")
	}
}

func TestVerifiedTokenProfileDeadEnd(t *testing.T) {
	backend := newFakeBackend()
	backend.validTokens["acc-1"] = "u-1"
	backend.failProfiles = true

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-1", "ref-1")

	outcome, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if outcome.Authenticated {
		t.Fatal("expected unauthenticated dead end")
	}
	v, r, p := backend.calls()
	if r != 0 {
		t.Fatalf("profile dead end triggered a refresh: refresh=%d", r)
	}
	if v != 1 || p != 1 {
		t.Fatalf("call sequence: verify=%d profile=%d, want 1/1", v, p)
	}
	access, _ := f.storedTokens()
	if access != "acc-1" {
		t.Fatal("profile dead end must not mutate the store")
	}
}

func TestConsumersNeverObserveTornState(t *testing.T) {
	backend := newFakeBackend()
	backend.validTokens["acc-1"] = "u-1"
	backend.profiles["u-1"] = session.Profile{SubjectID: "u-1"}

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-1", "ref-1")

	state := f.engine.State()
	observed := make(chan session.Outcome, 1)
	go func() {
		<-state.Resolved()
		snap := state.Snapshot()
		if snap.Verifying {
			t.Error("woken consumer saw verifying=true")
		}
		observed <- snap.Outcome
	}()

	if _, err := f.engine.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	select {
	case outcome := <-observed:
		if !outcome.Authenticated || outcome.Profile == nil {
			t.Fatalf("consumer saw torn outcome: %+v", outcome)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer never woke")
	}
}

func TestMountHookFiresTwice(t *testing.T) {
	backend := newFakeBackend()
	backend.validTokens["acc-1"] = "u-1"
	backend.profiles["u-1"] = session.Profile{SubjectID: "u-1"}

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-1", "ref-1")

	first, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	second, err := f.engine.Bootstrap(context.Background())
	if err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}
	if !first.Authenticated || !second.Authenticated {
		t.Fatal("both calls should see the authenticated outcome")
	}
	v, _, p := backend.calls()
	if v != 1 || p != 1 {
		t.Fatalf("double mount re-ran the protocol: verify=%d profile=%d", v, p)
	}
}

func TestLogoutThenBootstrap(t *testing.T) {
	backend := newFakeBackend()
	backend.validTokens["acc-1"] = "u-1"
	backend.profiles["u-1"] = session.Profile{SubjectID: "u-1"}

	f, done := newFixture(t, backend)
	defer done()
	f.seed(t, "acc-1", "ref-1")

	if _, err := f.engine.Bootstrap(context.Background()); err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	if err := f.engine.Logout(context.Background()); err != nil {
		t.Fatalf("logout: %v", err)
	}

	outcome, err := f.engine.Rebootstrap(context.Background())
	if err != nil {
		t.Fatalf("rebootstrap: %v", err)
	}
	if outcome.Authenticated {
		t.Fatal("expected unauthenticated after logout")
	}
}
