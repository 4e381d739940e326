// Command gosession-probe drives one or more bootstrap runs against a real
// or simulated deployment and prints the resolved outcomes plus a metrics
// snapshot. With no flags it is fully self-contained: it starts miniredis
// and an in-process auth endpoint, seeds a credential pair, and exercises
// the whole protocol.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	goSession "github.com/MrEthical07/goSession"
)

func main() {
	var (
		endpoint  = flag.String("endpoint", "", "auth endpoint base URL; if empty, an in-process fake endpoint is used")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		namespace = flag.String("namespace", "probe", "token store namespace")
		access    = flag.String("access", "", "access token to seed before the first run")
		refresh   = flag.String("refresh", "", "refresh token to seed before the first run")
		runs      = flag.Int("runs", 1, "bootstrap generations to execute")
		logout    = flag.Bool("logout", false, "logout after the final run")
		auditOut  = flag.Bool("audit", false, "print audit events as JSON lines")
	)
	flag.Parse()

	if *runs <= 0 {
		fmt.Fprintln(os.Stderr, "runs must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	var mr *miniredis.Miniredis
	if addr == "" {
		var err error
		mr, err = miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		cleanup = append(cleanup, mr.Close)
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	cleanup = append(cleanup, func() { _ = client.Close() })

	baseURL := *endpoint
	if baseURL == "" {
		srv := httptest.NewServer(fakeEndpoint())
		cleanup = append(cleanup, srv.Close)
		baseURL = srv.URL
		fmt.Printf("using fake auth endpoint at %s\n", baseURL)
		if *access == "" && *refresh == "" {
			*access = "probe-access"
			*refresh = "probe-refresh"
		}
	}

	cfg := goSession.DefaultConfig()
	cfg.AuthEndpoint.BaseURL = baseURL
	cfg.TokenStore.Namespace = *namespace
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	if *auditOut {
		cfg.Audit.Enabled = true
	}

	builder := goSession.New().WithConfig(cfg).WithRedis(client)
	if *auditOut {
		builder = builder.WithAuditSink(goSession.NewJSONWriterSink(os.Stdout))
	}
	engine, err := builder.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build failed: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	if err := engine.WaitStoreReady(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "token store not ready: %v\n", err)
		os.Exit(1)
	}

	seedCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	seed(seedCtx, client, cfg.TokenStore.RedisPrefix, *namespace, *access, *refresh)

	for i := 0; i < *runs; i++ {
		var (
			outcome goSession.Outcome
			err     error
		)
		start := time.Now()
		if i == 0 {
			outcome, err = engine.Bootstrap(ctx)
		} else {
			outcome, err = engine.Rebootstrap(ctx)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "run %d failed: %v\n", i+1, err)
			os.Exit(1)
		}
		printOutcome(i+1, outcome, time.Since(start))
	}

	if *logout {
		if err := engine.Logout(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "logout failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("logged out, tokens cleared")
	}

	printMetrics(engine.MetricsSnapshot())
	if dropped := engine.AuditDropped(); dropped > 0 {
		fmt.Printf("audit events dropped: %d\n", dropped)
	}
}

func seed(ctx context.Context, client *redis.Client, prefix, namespace, access, refresh string) {
	if access != "" {
		_ = client.Set(ctx, prefix+":"+namespace+":access", access, 0).Err()
	}
	if refresh != "" {
		_ = client.Set(ctx, prefix+":"+namespace+":refresh", refresh, 0).Err()
	}
}

func printOutcome(run int, outcome goSession.Outcome, elapsed time.Duration) {
	if outcome.Authenticated {
		fmt.Printf("run %d: authenticated as %s (%s)\n",
			run, outcome.Profile.SubjectID, elapsed.Round(time.Microsecond))
		return
	}
	fmt.Printf("run %d: unauthenticated (%s)\n", run, elapsed.Round(time.Microsecond))
}

func printMetrics(snap goSession.MetricsSnapshot) {
	fmt.Println("metrics:")
	names := map[goSession.MetricID]string{
		goSession.MetricBootstrapStarted:         "bootstrap_started",
		goSession.MetricBootstrapSkipped:         "bootstrap_skipped",
		goSession.MetricBootstrapAuthenticated:   "bootstrap_authenticated",
		goSession.MetricBootstrapUnauthenticated: "bootstrap_unauthenticated",
		goSession.MetricVerifyValid:              "verify_valid",
		goSession.MetricVerifyInvalid:            "verify_invalid",
		goSession.MetricVerifySkippedPreflight:   "verify_skipped_preflight",
		goSession.MetricRefreshSuccess:           "refresh_success",
		goSession.MetricRefreshFailure:           "refresh_failure",
		goSession.MetricProfileSuccess:           "profile_success",
		goSession.MetricProfileFailure:           "profile_failure",
		goSession.MetricStoreUnavailable:         "store_unavailable",
		goSession.MetricTokensCleared:            "tokens_cleared",
		goSession.MetricLogout:                   "logout",
	}
	for id, name := range names {
		if count := snap.Counters[id]; count > 0 {
			fmt.Printf("  %s: %d\n", name, count)
		}
	}
	if buckets, ok := snap.Histograms[goSession.MetricBootstrapLatency]; ok {
		fmt.Printf("  bootstrap latency buckets: %v\n", buckets)
	}
}

// fakeEndpoint implements the wire protocol with one hard-coded identity:
// access token "probe-access" verifies as subject "probe-user", and refresh
// token "probe-refresh" mints a fresh "probe-access".
func fakeEndpoint() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/verify", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			AccessToken string `json:"accessToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		valid := req.AccessToken == "probe-access"
		subject := ""
		if valid {
			subject = "probe-user"
		}
		json.NewEncoder(w).Encode(map[string]any{"valid": valid, "subjectId": subject})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			RefreshToken string `json:"refreshToken"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if req.RefreshToken != "probe-refresh" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"accessToken": "probe-access"})
	})
	mux.HandleFunc("/users/", func(w http.ResponseWriter, r *http.Request) {
		subject := r.URL.Path[len("/users/"):]
		if subject != "probe-user" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"subjectId":   subject,
			"displayName": "Probe User",
			"role":        "customer",
		})
	})
	return mux
}
