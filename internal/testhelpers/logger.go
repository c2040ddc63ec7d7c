package testhelpers

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/myrjola/masks/internal/logging"
)

// EnvTestLog enables the test loggers when set, e.g., MASKS_TEST_LOG=1 go test ./...
const EnvTestLog = "MASKS_TEST_LOG"

// NewLogger creates a debug level logger tagged with the name of tb. It discards everything unless EnvTestLog is
// set, in which case it writes to stderr.
func NewLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	var sink io.Writer = io.Discard
	if _, ok := os.LookupEnv(EnvTestLog); ok {
		sink = os.Stderr
	}
	handler := logging.NewContextHandler(slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	return slog.New(handler).With(slog.String("test", tb.Name()))
}
