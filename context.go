package goSession

import (
	"context"

	"github.com/MrEthical07/goSession/session"
)

// WithDeviceID attaches a stable device identifier to ctx. The auth endpoint
// client forwards it as X-Device-ID on every request, and bootstrap audit
// events record it.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return session.WithDeviceID(ctx, deviceID)
}

// WithRequestID attaches a caller-chosen request identifier to ctx. The auth
// endpoint client forwards it as X-Request-ID for request tracing.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return session.WithRequestID(ctx, requestID)
}
