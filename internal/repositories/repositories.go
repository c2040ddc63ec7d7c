// Package repositories is the data access layer. Each repository maps one aggregate onto its SQLite tables.
package repositories

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/masks/internal/errors"
)

// ErrNotFound is returned when the addressed record does not exist.
var ErrNotFound = errors.NewSentinel("not found")

func rollback(ctx context.Context, logger *slog.Logger, tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to rollback transaction", errors.SlogError(err))
	}
}

// requireAffected returns ErrNotFound when res touched no rows.
func requireAffected(res sql.Result, attrs ...slog.Attr) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "rows affected")
	}
	if n == 0 {
		return errors.Wrap(ErrNotFound, "no rows affected", attrs...)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern returns a LIKE pattern matching values containing q. Use it with ESCAPE '\'.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(q) + "%"
}

// orEmpty keeps empty lists from being encoded as JSON null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
