package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sethvargo/go-retry"

	"github.com/MrEthical07/goSession/session"
)

// ErrStoreUnavailable is an exported constant or variable used by the session bootstrap engine.
var ErrStoreUnavailable = errors.New("token store unavailable")

// Options defines a public type used by goSession APIs. Instances of Options
// are treated as immutable unless documented otherwise.
type Options struct {
	// Prefix is the leading key segment shared by all keys the store owns.
	Prefix string
	// Namespace isolates one logical client installation from another when
	// several share a Redis database.
	Namespace string
	// AccessTTL bounds the lifetime of the stored access token. Zero means
	// the token does not expire from the store.
	AccessTTL time.Duration
	// RefreshTTL bounds the lifetime of the stored refresh token. Zero means
	// the token does not expire from the store.
	RefreshTTL time.Duration
	// DialMaxAttempts caps the number of PING attempts WaitReady makes.
	DialMaxAttempts int
	// DialBaseDelay is the first backoff interval between WaitReady attempts.
	DialBaseDelay time.Duration
	// DialMaxDelay caps the backoff interval between WaitReady attempts.
	DialMaxDelay time.Duration
}

// Store persists the credential pair in Redis.
type Store struct {
	rdb  redis.UniversalClient
	opts Options
}

// NewStore describes the newstore operation and its observable behavior.
// It returns a Store bound to rdb; the caller retains ownership of rdb and
// is responsible for closing it.
func NewStore(rdb redis.UniversalClient, opts Options) *Store {
	if opts.Prefix == "" {
		opts.Prefix = "sb"
	}
	return &Store{rdb: rdb, opts: opts}
}

func (s *Store) accessKey() string {
	if s.opts.Namespace == "" {
		return s.opts.Prefix + ":access"
	}
	return s.opts.Prefix + ":" + s.opts.Namespace + ":access"
}

func (s *Store) refreshKey() string {
	if s.opts.Namespace == "" {
		return s.opts.Prefix + ":refresh"
	}
	return s.opts.Prefix + ":" + s.opts.Namespace + ":refresh"
}

// Credentials describes the credentials operation and its observable behavior.
// It reads both tokens in one round trip. A missing key yields an empty
// string for that slot, not an error; only transport failures return an error.
func (s *Store) Credentials(ctx context.Context) (session.Credentials, error) {
	vals, err := s.rdb.MGet(ctx, s.accessKey(), s.refreshKey()).Result()
	if err != nil {
		return session.Credentials{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var creds session.Credentials
	if len(vals) > 0 {
		if v, ok := vals[0].(string); ok {
			creds.AccessToken = v
		}
	}
	if len(vals) > 1 {
		if v, ok := vals[1].(string); ok {
			creds.RefreshToken = v
		}
	}
	return creds, nil
}

// SetAccess describes the setaccess operation and its observable behavior.
// An empty token deletes the stored access token instead of writing an
// empty value.
func (s *Store) SetAccess(ctx context.Context, token string) error {
	if token == "" {
		if err := s.rdb.Del(ctx, s.accessKey()).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}
	if err := s.rdb.Set(ctx, s.accessKey(), token, s.opts.AccessTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// SetRefresh describes the setrefresh operation and its observable behavior.
// An empty token deletes the stored refresh token instead of writing an
// empty value.
func (s *Store) SetRefresh(ctx context.Context, token string) error {
	if token == "" {
		if err := s.rdb.Del(ctx, s.refreshKey()).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		return nil
	}
	if err := s.rdb.Set(ctx, s.refreshKey(), token, s.opts.RefreshTTL).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Clear describes the clear operation and its observable behavior. Both keys
// are removed with a single multi-key DEL, so a concurrent reader never sees
// one token without the other. Clearing an already-empty store succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.rdb.Del(ctx, s.accessKey(), s.refreshKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping describes the ping operation and its observable behavior.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// WaitReady blocks until Redis answers a PING or the attempt budget is
// exhausted. Intended for process start, before the first bootstrap run;
// the per-operation methods never retry on their own.
func (s *Store) WaitReady(ctx context.Context) error {
	attempts := s.opts.DialMaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	base := s.opts.DialBaseDelay
	if base <= 0 {
		base = 200 * time.Millisecond
	}
	backoff := retry.NewExponential(base)
	if s.opts.DialMaxDelay > 0 {
		backoff = retry.WithCappedDuration(s.opts.DialMaxDelay, backoff)
	}
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if pingErr := s.rdb.Ping(ctx).Err(); pingErr != nil {
			return retry.RetryableError(pingErr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
