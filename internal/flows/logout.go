package flows

import "context"

// LogoutFailureKind classifies logout failures for root-level mapping.
type LogoutFailureKind int

const (
	LogoutFailureNone LogoutFailureKind = iota
	LogoutFailureClear
)

// LogoutResult carries logout failure metadata.
type LogoutResult struct {
	Failure LogoutFailureKind
	Err     error
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	Store CredentialStore
}

// RunLogout removes both stored tokens. Clearing an already-empty store is a
// success; only a store transport failure is reported, and even then the
// caller still transitions its state to unauthenticated.
func RunLogout(ctx context.Context, deps LogoutDeps) LogoutResult {
	if err := deps.Store.Clear(ctx); err != nil {
		return LogoutResult{Failure: LogoutFailureClear, Err: err}
	}
	return LogoutResult{}
}
