package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/myrjola/masks/internal/errors"
)

// schemaObject is a row of sqlite_schema.
type schemaObject struct {
	Type  string `db:"type"`
	Name  string `db:"name"`
	Table string `db:"tbl_name"`
	SQL   string `db:"sql"`
}

const schemaObjectsQuery = `SELECT type, name, tbl_name, sql
FROM sqlite_schema
WHERE name NOT LIKE 'sqlite_%' AND sql IS NOT NULL
ORDER BY CASE type WHEN 'table' THEN 0 ELSE 1 END, name`

// migrateTo brings the database schema in line with schemaDefinition.
//
// The migration is declarative:
//
//  1. Tables, indexes and triggers missing from schemaDefinition are dropped.
//  2. New tables are created.
//  3. Tables whose definition changed are rebuilt with the 12-step procedure and their common columns copied over.
//  4. Indexes and triggers are created or replaced to match schemaDefinition.
//
// See https://www.sqlite.org/lang_altertable.html#otheralter and
// https://david.rothlis.net/declarative-schema-migration-for-sqlite/.
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) error {
	target, err := loadTargetSchema(ctx, schemaDefinition)
	if err != nil {
		return errors.Wrap(err, "load target schema")
	}
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close schema target database",
				errors.SlogError(closeErr))
		}
	}()

	var targetObjects []schemaObject
	if err = target.SelectContext(ctx, &targetObjects, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query target schema")
	}

	// The read-write pool has a single connection. Pin it so that the pragmas apply to the migration.
	conn, err := db.ReadWrite.Connx(ctx)
	if err != nil {
		return errors.Wrap(err, "acquire connection")
	}
	defer conn.Close()

	// Foreign key enforcement can only be toggled outside a transaction.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign keys")
	}
	defer func() {
		if _, fkErr := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); fkErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to re-enable foreign keys", errors.SlogError(fkErr))
		}
	}()

	tx, err := conn.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		_ = tx.Rollback()
	}()

	m := migration{db: db, tx: tx, target: target, targetObjects: targetObjects}
	if err = m.run(ctx); err != nil {
		return err
	}

	var violations []struct {
		Table  string `db:"table"`
		RowID  *int64 `db:"rowid"`
		Parent string `db:"parent"`
		FKID   int64  `db:"fkid"`
	}
	if err = tx.SelectContext(ctx, &violations, "PRAGMA foreign_key_check"); err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	if len(violations) > 0 {
		return errors.New("foreign key violations after migration",
			slog.String("table", violations[0].Table), slog.Int("count", len(violations)))
	}

	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit migration")
	}
	return nil
}

// loadTargetSchema creates schemaDefinition in a private in-memory database.
func loadTargetSchema(ctx context.Context, schemaDefinition string) (*sqlx.DB, error) {
	target, err := sqlx.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	// Every new connection to :memory: is a new database.
	target.SetMaxOpenConns(1)
	target.SetConnMaxLifetime(0)
	target.SetConnMaxIdleTime(0)
	if strings.TrimSpace(schemaDefinition) == "" {
		return target, nil
	}
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		_ = target.Close()
		return nil, errors.Wrap(err, "execute schema definition")
	}
	return target, nil
}

type migration struct {
	db            *Database
	tx            *sqlx.Tx
	target        *sqlx.DB
	targetObjects []schemaObject
}

func (m migration) run(ctx context.Context) error {
	var current []schemaObject
	if err := m.tx.SelectContext(ctx, &current, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query current schema")
	}
	wanted := index(m.targetObjects)

	// Drop stale indexes and triggers before their tables.
	for _, obj := range current {
		if obj.Type == "table" {
			continue
		}
		if w, ok := wanted[obj.Name]; !ok || w.Type != obj.Type {
			if err := m.drop(ctx, obj); err != nil {
				return err
			}
		}
	}
	for _, obj := range current {
		if obj.Type != "table" {
			continue
		}
		if w, ok := wanted[obj.Name]; !ok || w.Type != "table" {
			if err := m.drop(ctx, obj); err != nil {
				return err
			}
		}
	}

	existing := index(current)
	for _, obj := range m.targetObjects {
		if obj.Type != "table" {
			continue
		}
		cur, ok := existing[obj.Name]
		switch {
		case !ok:
			m.db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("table", obj.Name))
			if _, err := m.tx.ExecContext(ctx, obj.SQL); err != nil {
				return errors.Wrap(err, "create table", slog.String("query", obj.SQL))
			}
		case normalizeTableSQL(cur) != obj.SQL:
			if err := m.rebuildTable(ctx, cur, obj); err != nil {
				return errors.Wrap(err, "rebuild table", slog.String("table", obj.Name))
			}
		}
	}

	// Rebuilt tables lost their indexes and triggers, so compare against the schema as it is now.
	var migrated []schemaObject
	if err := m.tx.SelectContext(ctx, &migrated, schemaObjectsQuery); err != nil {
		return errors.Wrap(err, "query migrated schema")
	}
	existing = index(migrated)
	for _, obj := range m.targetObjects {
		if obj.Type == "table" {
			continue
		}
		cur, ok := existing[obj.Name]
		if ok && cur.SQL == obj.SQL {
			continue
		}
		if ok {
			if err := m.drop(ctx, cur); err != nil {
				return err
			}
		}
		m.db.logger.LogAttrs(ctx, slog.LevelInfo, "creating "+obj.Type, slog.String("name", obj.Name))
		if _, err := m.tx.ExecContext(ctx, obj.SQL); err != nil {
			return errors.Wrap(err, "create "+obj.Type, slog.String("query", obj.SQL))
		}
	}
	return nil
}

func (m migration) drop(ctx context.Context, obj schemaObject) error {
	m.db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping "+obj.Type, slog.String("name", obj.Name))
	stmt := fmt.Sprintf(`DROP %s IF EXISTS "%s"`, strings.ToUpper(obj.Type), obj.Name)
	if _, err := m.tx.ExecContext(ctx, stmt); err != nil {
		return errors.Wrap(err, "drop "+obj.Type, slog.String("name", obj.Name))
	}
	return nil
}

// rebuildTable runs steps 4 to 7 of https://www.sqlite.org/lang_altertable.html#otheralter.
func (m migration) rebuildTable(ctx context.Context, current, target schemaObject) error {
	m.db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating table",
		slog.String("table", target.Name),
		slog.String("current_sql", current.SQL),
		slog.String("new_sql", target.SQL))

	tempName := target.Name + "_migration_temp"
	tempSQL := strings.Replace(target.SQL, target.Name, tempName, 1)
	if _, err := m.tx.ExecContext(ctx, tempSQL); err != nil {
		return errors.Wrap(err, "create table with temporary name", slog.String("query", tempSQL))
	}

	var currentColumns, targetColumns []string
	if err := m.tx.SelectContext(ctx, &currentColumns, "SELECT name FROM pragma_table_info(?)", current.Name); err != nil {
		return errors.Wrap(err, "query current columns")
	}
	if err := m.target.SelectContext(ctx, &targetColumns, "SELECT name FROM pragma_table_info(?)", target.Name); err != nil {
		return errors.Wrap(err, "query target columns")
	}
	var common []string
	for _, c := range targetColumns {
		if slices.Contains(currentColumns, c) {
			common = append(common, `"`+c+`"`)
		}
	}
	if len(common) > 0 {
		cols := strings.Join(common, ", ")
		copySQL := fmt.Sprintf(`INSERT INTO "%s" (%s) SELECT %s FROM "%s"`, tempName, cols, cols, current.Name)
		if _, err := m.tx.ExecContext(ctx, copySQL); err != nil {
			return errors.Wrap(err, "copy data", slog.String("query", copySQL))
		}
	}

	if _, err := m.tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE "%s"`, current.Name)); err != nil {
		return errors.Wrap(err, "drop old table")
	}
	if _, err := m.tx.ExecContext(ctx,
		fmt.Sprintf(`ALTER TABLE "%s" RENAME TO "%s"`, tempName, target.Name)); err != nil {
		return errors.Wrap(err, "rename new table")
	}
	return nil
}

func index(objects []schemaObject) map[string]schemaObject {
	m := make(map[string]schemaObject, len(objects))
	for _, obj := range objects {
		m[obj.Name] = obj
	}
	return m
}

// normalizeTableSQL undoes the quoting that ALTER TABLE RENAME adds to the table name of a rebuilt table.
func normalizeTableSQL(obj schemaObject) string {
	return strings.Replace(obj.SQL, `"`+obj.Name+`"`, obj.Name, 1)
}
