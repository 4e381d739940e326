package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/session"
)

// fakeBackend is an in-memory auth endpoint speaking the wire protocol the
// engine's HTTP client expects.
type fakeBackend struct {
	mu sync.Mutex

	validTokens map[string]string // access token -> subject ID
	refreshMap  map[string]string // refresh token -> new access token
	profiles    map[string]session.Profile

	verifyCalls  int
	refreshCalls int
	profileCalls int

	failProfiles bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		validTokens: map[string]string{},
		refreshMap:  map[string]string{},
		profiles:    map[string]session.Profile{},
	}
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.verifyCalls++

		var req struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		subject, ok := b.validTokens[req.AccessToken]
		json.NewEncoder(w).Encode(map[string]any{"valid": ok, "subjectId": subject})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.refreshCalls++

		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		access, ok := b.refreshMap[req.RefreshToken]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"accessToken": access})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.profileCalls++

		if b.failProfiles {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		subject := r.URL.Path[len("/users/"):]
		profile, ok := b.profiles[subject]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(profile)
	})
	return mux
}

func (b *fakeBackend) calls() (int, int, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.verifyCalls, b.refreshCalls, b.profileCalls
}

type fixture struct {
	engine  *goSession.Engine
	backend *fakeBackend
	redis   *miniredis.Miniredis
}

func newFixture(t *testing.T, backend *fakeBackend) (*fixture, func()) {
	t.Helper()

	srv := httptest.NewServer(backend.handler())

	mr, err := miniredis.Run()
	if err != nil {
		srv.Close()
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := goSession.DefaultConfig()
	cfg.AuthEndpoint.BaseURL = srv.URL
	cfg.TokenStore.Namespace = "t1"
	cfg.Metrics.Enabled = true

	engine, err := goSession.New().
		WithConfig(cfg).
		WithRedis(rdb).
		Build()
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}

	f := &fixture{engine: engine, backend: backend, redis: mr}
	return f, func() {
		engine.Close()
		rdb.Close()
		mr.Close()
		srv.Close()
	}
}

func (f *fixture) seed(t *testing.T, access, refresh string) {
	t.Helper()
	if access != "" {
		if err := f.redis.Set("sb:t1:access", access); err != nil {
			t.Fatalf("seed access: %v", err)
		}
	}
	if refresh != "" {
		if err := f.redis.Set("sb:t1:refresh", refresh); err != nil {
			t.Fatalf("seed refresh: %v", err)
		}
	}
}

func (f *fixture) storedTokens() (string, string) {
	access, _ := f.redis.Get("sb:t1:access")
	refresh, _ := f.redis.Get("sb:t1:refresh")
	return access, refresh
}
