package contexthelpers

import (
	"context"
)

// value returns the string stored under key or "" when the middleware hasn't run.
func value(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// CurrentPath returns the path of the page being rendered so that the navigation can highlight it.
func CurrentPath(ctx context.Context) string {
	return value(ctx, currentPathKey)
}

func CSRFToken(ctx context.Context) string {
	return value(ctx, csrfTokenKey)
}

func CSPNonce(ctx context.Context) string {
	return value(ctx, cspNonceKey)
}

// RequestID returns the id assigned to the request by the logging middleware.
func RequestID(ctx context.Context) string {
	return value(ctx, requestIDKey)
}
