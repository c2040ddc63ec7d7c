// Package contexthelpers stores the per-request values that the middleware resolves and the templates read.
package contexthelpers

type contextKey int

const (
	currentPathKey contextKey = iota
	csrfTokenKey
	cspNonceKey
	requestIDKey
)
