// Package goSession resolves client session state on application load: given a
// possibly-stale access token and a refresh token in durable storage, it decides
// whether the holder is authenticated, which profile they carry, and how to
// recover an expired access token without re-prompting for credentials.
//
// The package is the client-side companion to a goAuth-style backend. The engine
// runs the session bootstrap protocol exactly once per [Engine] lifetime — a
// one-shot latch absorbs double invocation — and always terminates in a clean
// authenticated or unauthenticated resolution. External failures (unreachable
// auth endpoint, declined tokens, missing profile) never escape as errors; they
// fold into state transitions inside the protocol.
//
// # Architecture boundaries
//
// goSession is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (Outcome, Profile, MetricsSnapshot). Protocol orchestration lives
// under internal/flows; credential persistence in tokenstore; the HTTP
// collaborator client in authclient; resolved-state publication in state.
//
// # What this package must NOT do
//
//   - Surface a transport or rejection error from a bootstrap run to the caller.
//     The worst observable outcome is an unauthenticated resolution.
//   - Retry verify/refresh/profile calls inside a single run. Connection-level
//     backoff exists only in tokenstore.WaitReady, outside the protocol.
//   - Expose Redis clients, HTTP internals, or the state store's mutex in its
//     public API.
//
// # Ordering contract
//
// Consumers gating on the verifying flag are guaranteed a resolved outcome:
// the state store clears verifying strictly after the outcome is written, in
// one critical section. Route guards should block on State().Resolved().
package goSession
