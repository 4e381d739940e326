// Package tokenstore persists the access/refresh token pair in Redis so a
// session survives application reloads and process restarts.
//
// The store is exclusively owned by the engine during a bootstrap run: no
// concurrent protocol writer is assumed. An external logout may clear tokens
// at any time; a run in flight races only against that explicit user action.
//
// # Architecture boundaries
//
// Every Redis transport failure is wrapped as ErrStoreUnavailable so callers
// can classify it with errors.Is. Clear removes both tokens with a single
// multi-key DEL — no intermediate one-token state is observable.
//
// # What this package must NOT do
//
//   - Decide protocol semantics. It never interprets token contents.
//   - Retry inside Credentials/SetAccess/SetRefresh/Clear. Backoff exists
//     only in WaitReady, for process-start readiness.
package tokenstore
