// Package flows contains pure-function orchestrators for every Engine operation.
//
// Each flow function (RunBootstrap, RunLogout) accepts a typed dependency
// struct and returns results without side-effects beyond those dependencies.
// This design enables exhaustive unit testing with mock dependencies and
// keeps the Engine type thin.
//
// RunBootstrap is the single linear state machine that resolves a stored
// credential pair into an authenticated or unauthenticated outcome. There is
// exactly one refresh attempt and exactly one re-verification per run; no
// branch recurses and every branch terminates in a resolved outcome.
//
// # Architecture boundaries
//
// Flow functions coordinate calls to the token store and the auth endpoint
// client. They do NOT own any of these resources — ownership stays with the
// Engine.
//
// # What this package must NOT do
//
//   - Hold mutable state between calls.
//   - Import goSession (to avoid import cycles).
//   - Perform I/O directly — all I/O is mediated through dependency interfaces.
//   - Return an error to the caller. Every external failure folds into an
//     unauthenticated result.
package flows
