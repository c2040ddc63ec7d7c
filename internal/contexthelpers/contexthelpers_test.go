package contexthelpers_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/myrjola/masks/internal/contexthelpers"
	"github.com/stretchr/testify/assert"
)

func TestRequestValues(t *testing.T) {
	t.Parallel()
	r := httptest.NewRequest("GET", "/sessions", nil)
	assert.Empty(t, contexthelpers.CSRFToken(r.Context()))

	r = contexthelpers.SetCurrentPath(r, "/sessions")
	r = contexthelpers.SetCSRFToken(r, "token")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	r = contexthelpers.SetRequestID(r, "id")

	ctx := r.Context()
	assert.Equal(t, "/sessions", contexthelpers.CurrentPath(ctx))
	assert.Equal(t, "token", contexthelpers.CSRFToken(ctx))
	assert.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))
	assert.Equal(t, "id", contexthelpers.RequestID(ctx))
	assert.Empty(t, contexthelpers.RequestID(context.Background()))
}
