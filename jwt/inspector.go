package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenInvalid is an exported constant or variable used by the session bootstrap engine.
var ErrTokenInvalid = errors.New("invalid access token")

// SigningMethod defines a public type used by goSession APIs.
//
// SigningMethod instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SigningMethod string

const (
	// MethodEd25519 is an exported constant or variable used by the session bootstrap engine.
	MethodEd25519 SigningMethod = "ed25519"
	// MethodHS256 is an exported constant or variable used by the session bootstrap engine.
	MethodHS256 SigningMethod = "hs256"
)

// Config defines a public type used by goSession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	SigningMethod SigningMethod
	// VerifyKey enables local signature verification when set. Raw 32-byte
	// ed25519 public keys and PEM encodings are both accepted.
	VerifyKey []byte
	Leeway    time.Duration
}

// Claims carries the subset of registered claims the preflight cares about.
type Claims struct {
	SubjectID string
	ExpiresAt time.Time
}

// Inspector defines a public type used by goSession APIs.
//
// Inspector instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Inspector struct {
	config Config
}

// NewInspector describes the newinspector operation and its observable behavior.
//
// NewInspector may return an error when input validation, dependency calls, or security checks fail.
func NewInspector(cfg Config) (*Inspector, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	switch cfg.SigningMethod {
	case MethodHS256:
	case MethodEd25519, "":
		cfg.SigningMethod = MethodEd25519
		if len(cfg.VerifyKey) > 0 {
			if _, err := parseEdPublicKey(cfg.VerifyKey); err != nil {
				return nil, err
			}
		}
	default:
		return nil, errors.New("unsupported signing method")
	}
	return &Inspector{config: cfg}, nil
}

// Inspect decodes the token and returns its claims. With a verify key
// configured the signature and standard time claims are checked and any
// failure wraps ErrTokenInvalid; without one the claims are decoded
// unverified and only structural garbage is an error.
func (i *Inspector) Inspect(tokenStr string) (Claims, error) {
	if len(i.config.VerifyKey) > 0 {
		return i.inspectVerified(tokenStr)
	}

	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	return registeredToClaims(&claims), nil
}

func (i *Inspector) inspectVerified(tokenStr string) (Claims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{i.method().Alg()}),
	}
	if i.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(i.config.Leeway))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return i.verifyKey()
	})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return Claims{}, ErrTokenInvalid
	}
	return registeredToClaims(claims), nil
}

// Expired reports whether the token carries an exp claim in the past,
// beyond the configured leeway. A token without an exp claim is never
// considered expired; an undecodable token is, since it can only fail
// downstream anyway.
func (i *Inspector) Expired(tokenStr string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Time.Add(i.config.Leeway).Before(now)
}

func (i *Inspector) method() jwt.SigningMethod {
	switch i.config.SigningMethod {
	case MethodHS256:
		return jwt.SigningMethodHS256
	default:
		return jwt.SigningMethodEdDSA
	}
}

func (i *Inspector) verifyKey() (interface{}, error) {
	switch i.config.SigningMethod {
	case MethodHS256:
		return i.config.VerifyKey, nil
	default:
		return parseEdPublicKey(i.config.VerifyKey)
	}
}

func registeredToClaims(rc *jwt.RegisteredClaims) Claims {
	out := Claims{SubjectID: rc.Subject}
	if rc.ExpiresAt != nil {
		out.ExpiresAt = rc.ExpiresAt.Time
	}
	return out
}

func parseEdPublicKey(key []byte) (ed25519.PublicKey, error) {
	if len(key) == ed25519.PublicKeySize {
		return ed25519.PublicKey(key), nil
	}
	parsed, err := jwt.ParseEdPublicKeyFromPEM(key)
	if err != nil {
		return nil, errors.New("invalid ed25519 public key")
	}
	edKey, ok := parsed.(ed25519.PublicKey)
	if !ok {
		return nil, errors.New("invalid ed25519 public key type")
	}
	return edKey, nil
}
