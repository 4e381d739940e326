package flows

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// BootstrapFailureKind classifies why a run resolved Unauthenticated, for
// root-level audit and metrics mapping. BootstrapFailureNone means the run
// resolved Authenticated.
type BootstrapFailureKind int

const (
	BootstrapFailureNone BootstrapFailureKind = iota
	BootstrapFailureStoreRead
	BootstrapFailureNoCredentials
	BootstrapFailureProfile
	BootstrapFailureNoRefreshToken
	BootstrapFailureRefresh
	BootstrapFailureReverify
)

// BootstrapResult carries the resolved outcome plus failure metadata.
type BootstrapResult struct {
	Failure BootstrapFailureKind
	// Err is the error at the terminal step, nil for BootstrapFailureNone
	// and BootstrapFailureNoCredentials.
	Err error
	// VerifyErr is the first-pass verify error that forced the refresh
	// branch, when there was one. Kept separately from Err because the
	// refresh branch has its own terminal step.
	VerifyErr     error
	Outcome       session.Outcome
	SubjectID     string
	Refreshed     bool
	TokensCleared bool
}

// BootstrapDeps captures bootstrap flow dependencies.
type BootstrapDeps struct {
	Store    CredentialStore
	Endpoint AuthEndpoint
	// PreflightExpired, when non-nil, reports whether the access token is
	// provably expired locally so the first verify call can be skipped.
	PreflightExpired func(token string) bool
	Warn             func(string, ...any)
}

// RunBootstrap resolves the stored credential pair into an outcome. The run
// is total: it never returns an error and never leaves the caller without a
// resolved outcome. Token store mutation happens only on refresh success
// (persist the new access token) and on proven-dead credentials (clear).
func RunBootstrap(ctx context.Context, deps BootstrapDeps) BootstrapResult {
	creds, err := deps.Store.Credentials(ctx)
	if err != nil {
		return BootstrapResult{
			Failure: BootstrapFailureStoreRead,
			Err:     err,
			Outcome: session.Unauthenticated(),
		}
	}
	if !creds.HasAccess() {
		return BootstrapResult{
			Failure: BootstrapFailureNoCredentials,
			Outcome: session.Unauthenticated(),
		}
	}

	var verifyErr error
	if deps.PreflightExpired == nil || !deps.PreflightExpired(creds.AccessToken) {
		res, err := deps.Endpoint.Verify(ctx, creds.AccessToken)
		if err == nil && res.Valid {
			profile, perr := deps.Endpoint.FetchProfile(ctx, res.SubjectID)
			if perr != nil {
				// A verified token whose profile cannot be fetched is a
				// dead end, not a retry loop.
				return BootstrapResult{
					Failure:   BootstrapFailureProfile,
					Err:       perr,
					SubjectID: res.SubjectID,
					Outcome:   session.Unauthenticated(),
				}
			}
			return BootstrapResult{
				SubjectID: res.SubjectID,
				Outcome:   session.Authenticated(profile),
			}
		}
		// An unreachable endpoint and a valid=false verdict converge here:
		// neither can be trusted as proof of validity.
		verifyErr = err
	}

	if !creds.HasRefresh() {
		cleared := true
		if clearErr := deps.Store.SetAccess(ctx, ""); clearErr != nil {
			cleared = false
			if deps.Warn != nil {
				deps.Warn("goSession: access token clear failed")
			}
		}
		return BootstrapResult{
			Failure:       BootstrapFailureNoRefreshToken,
			VerifyErr:     verifyErr,
			Outcome:       session.Unauthenticated(),
			TokensCleared: cleared,
		}
	}

	newAccess, err := deps.Endpoint.Refresh(ctx, creds.RefreshToken)
	if err != nil {
		cleared := true
		if clearErr := deps.Store.Clear(ctx); clearErr != nil {
			cleared = false
			if deps.Warn != nil {
				deps.Warn("goSession: token clear failed after refresh failure")
			}
		}
		return BootstrapResult{
			Failure:       BootstrapFailureRefresh,
			Err:           err,
			VerifyErr:     verifyErr,
			Outcome:       session.Unauthenticated(),
			TokensCleared: cleared,
		}
	}

	if werr := deps.Store.SetAccess(ctx, newAccess); werr != nil && deps.Warn != nil {
		// The token is in hand; a persistence failure costs durability,
		// not this run's outcome.
		deps.Warn("goSession: refreshed access token persist failed")
	}

	// Second pass, exactly once. A failure here is terminal and does not
	// clear tokens: the refresh just succeeded, so the credentials are not
	// proven dead.
	res, err := deps.Endpoint.Verify(ctx, newAccess)
	if err != nil || !res.Valid {
		return BootstrapResult{
			Failure:   BootstrapFailureReverify,
			Err:       err,
			VerifyErr: verifyErr,
			Refreshed: true,
			Outcome:   session.Unauthenticated(),
		}
	}
	profile, perr := deps.Endpoint.FetchProfile(ctx, res.SubjectID)
	if perr != nil {
		return BootstrapResult{
			Failure:   BootstrapFailureProfile,
			Err:       perr,
			VerifyErr: verifyErr,
			SubjectID: res.SubjectID,
			Refreshed: true,
			Outcome:   session.Unauthenticated(),
		}
	}
	return BootstrapResult{
		SubjectID: res.SubjectID,
		Refreshed: true,
		Outcome:   session.Authenticated(profile),
	}
}
