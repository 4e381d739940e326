package session

import "time"

// Profile is the account profile resolved by a successful bootstrap run.
// It is created once per run and replaced wholesale on logout or
// re-bootstrap; the engine never mutates it partially.
type Profile struct {
	SubjectID    string
	DisplayName  string
	Role         string
	ContactEmail string
	ContactPhone string
	Addresses    []Address
	CreatedAt    time.Time
}

// Address is a delivery address attached to a [Profile].
type Address struct {
	Label   string
	Line1   string
	Line2   string
	City    string
	Pincode string
}

// Credentials is the token pair read from the token store. An empty string
// means the token is absent. If AccessToken is non-empty it was, at some
// point, returned by a successful verify or refresh — never fabricated.
type Credentials struct {
	AccessToken  string
	RefreshToken string
}

// HasAccess reports whether an access token is stored.
func (c Credentials) HasAccess() bool { return c.AccessToken != "" }

// HasRefresh reports whether a refresh token is stored.
func (c Credentials) HasRefresh() bool { return c.RefreshToken != "" }

// VerifyResult is the collaborator's answer to a token verification.
// Valid=false with a nil error is a semantic rejection, not a transport
// failure.
type VerifyResult struct {
	Valid     bool
	SubjectID string
}

// Outcome is the terminal value of a bootstrap run: either authenticated
// with a resolved profile, or unauthenticated with a nil profile.
type Outcome struct {
	Authenticated bool
	Profile       *Profile
}

// Unauthenticated is the zero outcome.
func Unauthenticated() Outcome { return Outcome{} }

// Authenticated wraps a resolved profile in an authenticated outcome.
func Authenticated(p *Profile) Outcome {
	return Outcome{Authenticated: true, Profile: p}
}
