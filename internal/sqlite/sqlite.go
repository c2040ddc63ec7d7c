package sqlite

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // Enable sqlite3 driver
	"github.com/myrjola/masks/internal/errors"
	"github.com/myrjola/masks/internal/random"
)

//go:embed schema.sql
var schemaDefinition string

//go:embed fixtures.sql
var fixtures string

// demoSeed names the fixture set in the seeds table.
const demoSeed = "demo"

type Database struct {
	ReadWrite *sqlx.DB
	ReadOnly  *sqlx.DB
	logger    *slog.Logger
}

// NewDatabase connects to the database, synchronizes the schema and seeds the demo data once.
//
// The url parameter is the path to the SQLite database file or ":memory:" for an in-memory database. Each
// in-memory database gets a random name so that parallel tests don't share data.
func NewDatabase(ctx context.Context, url string, logger *slog.Logger) (*Database, error) {
	db, err := connect(url, logger)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}

	if err = db.migrateTo(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "synchronize schema")
	}

	if err = db.seed(ctx, demoSeed, fixtures); err != nil {
		return nil, errors.Wrap(err, "apply fixtures")
	}

	go db.startDatabaseOptimizer(ctx)

	return db, nil
}

// connect opens a single-connection read/write pool and a read-only pool against the same database.
//
// See https://github.com/mattn/go-sqlite3/issues/1179#issuecomment-1638083995.
func connect(url string, logger *slog.Logger) (*Database, error) {
	var err error

	// In-memory databases need shared cache so that both pools see the same data.
	// See https://www.sqlite.org/inmemorydb.html.
	inMemoryConfig := ""
	if strings.Contains(url, ":memory:") {
		var (
			randomID     string
			dbNameLength uint = 20
		)
		if randomID, err = random.Letters(dbNameLength); err != nil {
			return nil, errors.Wrap(err, "generate random ID")
		}
		url = randomID
		inMemoryConfig = "&mode=memory&cache=shared"
	}

	// The options prefixed with underscore '_' are SQLite pragmas documented at https://www.sqlite.org/pragma.html.
	commonConfig := strings.Join([]string{
		"_journal_mode=wal",
		// Avoids SQLITE_BUSY errors when the database is under load.
		"_busy_timeout=5000",
		"_synchronous=normal",
		"_foreign_keys=on",
		"_temp_store=memory",
		"_cache_size=-20000",
	}, "&")

	readWriteDSN := fmt.Sprintf("file:%s?_txlock=immediate&%s%s", url, commonConfig, inMemoryConfig)
	readOnlyDSN := fmt.Sprintf("file:%s?_txlock=deferred&_query_only=true&%s%s", url, commonConfig, inMemoryConfig)
	if inMemoryConfig == "" {
		readWriteDSN += "&mode=rwc"
		readOnlyDSN += "&mode=ro"
	}

	var readWrite, readOnly *sqlx.DB
	if readWrite, err = sqlx.Open("sqlite3", readWriteDSN); err != nil {
		return nil, errors.Wrap(err, "open read-write database")
	}
	readWrite.SetMaxOpenConns(1)
	readWrite.SetMaxIdleConns(1)
	readWrite.SetConnMaxLifetime(0)
	readWrite.SetConnMaxIdleTime(0)

	// The read-write connection creates the database file before the read-only pool opens it.
	if err = readWrite.Ping(); err != nil {
		return nil, errors.Wrap(err, "ping read-write database", slog.String("url", url))
	}

	if readOnly, err = sqlx.Open("sqlite3", readOnlyDSN); err != nil {
		return nil, errors.Wrap(err, "open read-only database")
	}
	maxReadConns := 10
	readOnly.SetMaxOpenConns(maxReadConns)
	readOnly.SetMaxIdleConns(maxReadConns)
	readOnly.SetConnMaxLifetime(time.Hour)
	readOnly.SetConnMaxIdleTime(time.Hour)

	return &Database{
		ReadWrite: readWrite,
		ReadOnly:  readOnly,
		logger:    logger,
	}, nil
}

// seed executes the statements in fixtureSQL unless a fixture set with the same name has been applied before.
func (db *Database) seed(ctx context.Context, name string, fixtureSQL string) error {
	tx, err := db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var applied bool
	if err = tx.GetContext(ctx, &applied, "SELECT EXISTS (SELECT 1 FROM seeds WHERE name = ?)", name); err != nil {
		return errors.Wrap(err, "query seeds", slog.String("seed", name))
	}
	if applied {
		return nil
	}
	if _, err = tx.ExecContext(ctx, fixtureSQL); err != nil {
		return errors.Wrap(err, "execute fixtures", slog.String("seed", name))
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO seeds (name, applied_at) VALUES (?, ?)",
		name, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "record seed", slog.String("seed", name))
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "applied fixtures", slog.String("seed", name))
	return nil
}

// Close closes both connection pools.
func (db *Database) Close() error {
	return errors.Join(db.ReadOnly.Close(), db.ReadWrite.Close())
}

