package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/myrjola/masks/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestContextHandler(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(logging.NewContextHandler(slog.NewTextHandler(&buf, nil)))

	ctx := logging.WithAttrs(context.Background(), slog.String("request_id", "r-1"))
	ctx = logging.WithAttrs(ctx, slog.String("uri", "/api/characters"))
	logger.With(slog.String("source", "test")).InfoContext(ctx, "handled")

	out := buf.String()
	require.Contains(t, out, "request_id=r-1")
	require.Contains(t, out, "uri=/api/characters")
	require.Contains(t, out, "source=test")

	// Attributes from a derived context must not leak into the parent.
	buf.Reset()
	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"))
	_ = logging.WithAttrs(parent, slog.String("b", "2"))
	logger.InfoContext(parent, "parent only")
	require.NotContains(t, buf.String(), "b=2")
}
