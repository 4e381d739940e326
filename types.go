package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// Profile is the account profile resolved by a successful bootstrap run.
type Profile = session.Profile

// Address is a delivery address attached to a [Profile].
type Address = session.Address

// Credentials is the token pair read from the token store.
type Credentials = session.Credentials

// VerifyResult is returned by [AuthClient.Verify]. Valid=false with a nil
// error is a semantic rejection of the token, not a transport failure.
type VerifyResult = session.VerifyResult

// Outcome is the terminal value of a bootstrap run.
type Outcome = session.Outcome

// Unauthenticated is the zero outcome.
func Unauthenticated() Outcome { return session.Unauthenticated() }

// Authenticated wraps a resolved profile in an authenticated outcome.
func Authenticated(p *Profile) Outcome { return session.Authenticated(p) }

// AuthClient is the collaborator contract the engine drives. Implementations
// must distinguish transport failures (wrap [ErrTransport]) from semantic
// rejections (wrap [ErrRejected]); the engine folds both into the protocol
// but audits them differently.
//
// The standard HTTP implementation lives in package authclient.
type AuthClient interface {
	Verify(ctx context.Context, accessToken string) (VerifyResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	FetchProfile(ctx context.Context, subjectID string) (*Profile, error)
}
