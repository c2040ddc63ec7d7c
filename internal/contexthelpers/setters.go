package contexthelpers

import (
	"context"
	"net/http"
)

func with(r *http.Request, key contextKey, v string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), key, v))
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	return with(r, currentPathKey, currentPath)
}

func SetCSRFToken(r *http.Request, csrfToken string) *http.Request {
	return with(r, csrfTokenKey, csrfToken)
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	return with(r, cspNonceKey, nonce)
}

func SetRequestID(r *http.Request, requestID string) *http.Request {
	return with(r, requestIDKey, requestID)
}
