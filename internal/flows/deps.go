package flows

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// CredentialStore is the slice of the token store the flows need.
type CredentialStore interface {
	Credentials(ctx context.Context) (session.Credentials, error)
	SetAccess(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// AuthEndpoint is the slice of the auth endpoint client the flows need.
type AuthEndpoint interface {
	Verify(ctx context.Context, accessToken string) (session.VerifyResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	FetchProfile(ctx context.Context, subjectID string) (*session.Profile, error)
}

// Deps groups flow dependency sets. Root engine builds this once and delegates
// request methods to the matching flow implementation.
type Deps struct {
	Bootstrap BootstrapDeps
	Logout    LogoutDeps
}
