// Package authclient speaks HTTP to the auth endpoint collaborator: token
// verification, token refresh, and profile retrieval.
//
// Every failure is classified into exactly one of two families so the
// bootstrap engine can fold it without inspecting transport detail:
//
//   - ErrTransport: the endpoint could not be reached, timed out, or
//     answered with a body the client cannot decode.
//   - ErrRejected (and its refinements ErrRefreshInvalid and
//     ErrProfileUnavailable): the endpoint answered and declined.
//
// A verify response of valid=false is not an error at all; it is a
// first-class protocol outcome and is reported through VerifyResult.
//
// The client never retries. Latency is bounded by the configured timeout on
// every call.
package authclient
