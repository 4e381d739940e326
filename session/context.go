package session

import "context"

type deviceIDContextKey struct{}
type requestIDContextKey struct{}

// WithDeviceID attaches a stable device identifier to ctx. The auth endpoint
// client forwards it on every request so the backend can correlate sessions
// across reloads of the same installation.
func WithDeviceID(ctx context.Context, deviceID string) context.Context {
	return context.WithValue(ctx, deviceIDContextKey{}, deviceID)
}

// WithRequestID attaches a caller-chosen request identifier to ctx for
// request tracing across the auth endpoint boundary.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, requestID)
}

// DeviceIDFromContext returns the device identifier attached with
// WithDeviceID, or "" when none is set.
func DeviceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	deviceID, _ := ctx.Value(deviceIDContextKey{}).(string)
	return deviceID
}

// RequestIDFromContext returns the request identifier attached with
// WithRequestID, or "" when none is set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	requestID, _ := ctx.Value(requestIDContextKey{}).(string)
	return requestID
}
