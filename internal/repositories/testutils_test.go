package repositories_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/myrjola/masks/internal/sqlite"
	"github.com/myrjola/masks/internal/testhelpers"
)

// newTestDB creates a new in-memory database seeded with the demo fixtures.
func newTestDB(t *testing.T) (*sqlite.Database, *slog.Logger) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	logger := testhelpers.NewLogger(t)

	dbs, err := sqlite.NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		cancel()
		t.Fatal(err)
	}

	t.Cleanup(func() {
		cancel()
		if err = dbs.Close(); err != nil {
			t.Error(err)
		}
	})

	return dbs, logger
}
