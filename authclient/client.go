package authclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/MrEthical07/goSession/session"
)

var (
	// ErrTransport is an exported constant or variable used by the session bootstrap engine.
	ErrTransport = errors.New("auth endpoint unreachable")
	// ErrRejected is an exported constant or variable used by the session bootstrap engine.
	ErrRejected = errors.New("auth endpoint rejected request")
	// ErrRefreshInvalid is an exported constant or variable used by the session bootstrap engine.
	ErrRefreshInvalid = errors.New("invalid refresh token")
	// ErrProfileUnavailable is an exported constant or variable used by the session bootstrap engine.
	ErrProfileUnavailable = errors.New("profile unavailable")
)

// Options defines a public type used by goSession APIs. Instances of Options
// are treated as immutable unless documented otherwise.
type Options struct {
	BaseURL     string
	VerifyPath  string
	RefreshPath string
	ProfilePath string
	Timeout     time.Duration
	UserAgent   string
	// HTTPClient overrides the transport. When nil a client with Timeout is
	// built internally.
	HTTPClient *http.Client
}

// Client is the HTTP implementation of the auth endpoint collaborator.
type Client struct {
	base    string
	verify  string
	refresh string
	profile string
	ua      string
	httpc   *http.Client
}

// NewClient describes the newclient operation and its observable behavior.
// Options are assumed validated by the caller; empty paths fall back to the
// conventional defaults.
func NewClient(opts Options) *Client {
	if opts.VerifyPath == "" {
		opts.VerifyPath = "/auth/verify"
	}
	if opts.RefreshPath == "" {
		opts.RefreshPath = "/auth/refresh"
	}
	if opts.ProfilePath == "" {
		opts.ProfilePath = "/users"
	}
	httpc := opts.HTTPClient
	if httpc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpc = &http.Client{Timeout: timeout}
	}
	return &Client{
		base:    strings.TrimRight(opts.BaseURL, "/"),
		verify:  opts.VerifyPath,
		refresh: opts.RefreshPath,
		profile: opts.ProfilePath,
		ua:      opts.UserAgent,
		httpc:   httpc,
	}
}

type verifyRequest struct {
	AccessToken string `json:"accessToken"`
}

type verifyResponse struct {
	Valid     bool   `json:"valid"`
	SubjectID string `json:"subjectId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Verify describes the verify operation and its observable behavior. A 200
// response carries the endpoint's verdict; 401 is folded into valid=false
// because the two are indistinguishable to the caller. Any other non-2xx
// status is a rejection and network failure is a transport error.
func (c *Client) Verify(ctx context.Context, accessToken string) (session.VerifyResult, error) {
	var out verifyResponse
	status, err := c.postJSON(ctx, c.verify, verifyRequest{AccessToken: accessToken}, &out)
	if err != nil {
		return session.VerifyResult{}, err
	}
	switch {
	case status == http.StatusOK:
		return session.VerifyResult{Valid: out.Valid, SubjectID: out.SubjectID}, nil
	case status == http.StatusUnauthorized:
		return session.VerifyResult{Valid: false}, nil
	default:
		return session.VerifyResult{}, fmt.Errorf("%w: verify status %d", ErrRejected, status)
	}
}

// Refresh describes the refresh operation and its observable behavior. On
// success the newly minted access token is returned; 401 and 403 classify as
// ErrRefreshInvalid so the engine knows the stored refresh token is dead.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (string, error) {
	var out refreshResponse
	status, err := c.postJSON(ctx, c.refresh, refreshRequest{RefreshToken: refreshToken}, &out)
	if err != nil {
		return "", err
	}
	switch {
	case status == http.StatusOK:
		if out.AccessToken == "" {
			return "", fmt.Errorf("%w: refresh response missing access token", ErrRejected)
		}
		return out.AccessToken, nil
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return "", fmt.Errorf("%w: refresh status %d", ErrRefreshInvalid, status)
	default:
		return "", fmt.Errorf("%w: refresh status %d", ErrRejected, status)
	}
}

// FetchProfile describes the fetchprofile operation and its observable
// behavior. Any non-2xx answer classifies as ErrProfileUnavailable; the
// bootstrap engine treats an unreachable profile as a dead end either way.
func (c *Client) FetchProfile(ctx context.Context, subjectID string) (*session.Profile, error) {
	target := c.base + c.profile + "/" + url.PathEscape(subjectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	c.setHeaders(ctx, req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: profile status %d", ErrProfileUnavailable, resp.StatusCode)
	}
	var profile session.Profile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode profile: %v", ErrTransport, err)
	}
	if profile.SubjectID == "" {
		profile.SubjectID = subjectID
	}
	return &profile, nil
}

func (c *Client) postJSON(ctx context.Context, path string, in, out any) (int, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return 0, fmt.Errorf("%w: encode request: %v", ErrTransport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(ctx, req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return 0, fmt.Errorf("%w: decode response: %v", ErrTransport, err)
		}
		return resp.StatusCode, nil
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	if c.ua != "" {
		req.Header.Set("User-Agent", c.ua)
	}
	if deviceID := session.DeviceIDFromContext(ctx); deviceID != "" {
		req.Header.Set("X-Device-ID", deviceID)
	}
	if requestID := session.RequestIDFromContext(ctx); requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}
}
