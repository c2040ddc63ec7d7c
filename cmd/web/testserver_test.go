package main

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/masks/internal/e2etest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "MASKS_ADDR":
		return "localhost:0", true
	case "MASKS_SQLITE_URL":
		return ":memory:", true
	case "MASKS_SECURE_COOKIES":
		return "false", true
	default:
		return "", false
	}
}

// startTestServer boots the application on a random port with a fresh in-memory database. The server shuts down
// gracefully when the test ends.
func startTestServer(t *testing.T) *e2etest.Server {
	t.Helper()
	server, err := e2etest.StartServer(context.Background(), io.Discard, testLookupEnv, run)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, server.Stop())
	})
	return server
}
