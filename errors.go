package goSession

import (
	"errors"

	"github.com/MrEthical07/goSession/authclient"
	"github.com/MrEthical07/goSession/jwt"
	"github.com/MrEthical07/goSession/tokenstore"
)

var (
	// ErrTransport is an exported constant or variable used by the session bootstrap engine.
	ErrTransport = authclient.ErrTransport
	// ErrRejected is an exported constant or variable used by the session bootstrap engine.
	ErrRejected = authclient.ErrRejected
	// ErrTokenInvalid is an exported constant or variable used by the session bootstrap engine.
	ErrTokenInvalid = jwt.ErrTokenInvalid
	// ErrRefreshInvalid is an exported constant or variable used by the session bootstrap engine.
	ErrRefreshInvalid = authclient.ErrRefreshInvalid
	// ErrProfileUnavailable is an exported constant or variable used by the session bootstrap engine.
	ErrProfileUnavailable = authclient.ErrProfileUnavailable
	// ErrStoreUnavailable is an exported constant or variable used by the session bootstrap engine.
	ErrStoreUnavailable = tokenstore.ErrStoreUnavailable
	// ErrEngineNotReady is an exported constant or variable used by the session bootstrap engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrNotResolved is an exported constant or variable used by the session bootstrap engine.
	ErrNotResolved = errors.New("bootstrap not resolved")
)

// IsTransport reports whether err classifies as a transport failure: the
// collaborator could not be reached or answered with garbage.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport) || errors.Is(err, ErrStoreUnavailable)
}

// IsRejection reports whether err classifies as a semantic rejection: the
// collaborator responded but declined (invalid token, unknown subject,
// expired refresh token).
func IsRejection(err error) bool {
	return errors.Is(err, ErrRejected) ||
		errors.Is(err, ErrTokenInvalid) ||
		errors.Is(err, ErrRefreshInvalid) ||
		errors.Is(err, ErrProfileUnavailable)
}
