package store

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

// Dialects understood by NewDB.
const (
	Postgres = "pgx"
	SQLite   = "sqlite3"
)

// DB wraps sql.DB holding the session_values table on Postgres (pgx) or SQLite.
type DB struct {
	Client *sql.DB
	driver string
}

// NewDB opens the database, pings it and creates the schema.
func NewDB(ctx context.Context, driver, dsn string) (*DB, error) {
	if driver != Postgres && driver != SQLite {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == SQLite {
		// one writer; an in-memory database also lives on a single connection
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(time.Hour)
	}
	d := &DB{Client: db, driver: driver}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}
	if err := d.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	_, err := d.Client.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_values (
			scope      TEXT NOT NULL,
			key        TEXT NOT NULL,
			value      TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (scope, key)
		)
	`)
	return errors.Wrap(err, "creating session_values")
}

var placeholder = regexp.MustCompile(`\$(\d+)`)

// rebind rewrites $N placeholders into SQLite's ?N form.
func (d *DB) rebind(query string) string {
	if d.driver != SQLite {
		return query
	}
	return placeholder.ReplaceAllString(query, "?$1")
}

// Values returns the key/value view of one scope (a browser session or a CLI profile).
func (d *DB) Values(scope string) *Values {
	return &Values{db: d, scope: scope}
}

// Purge drops every value of scope.
func (d *DB) Purge(ctx context.Context, scope string) error {
	_, err := d.Client.ExecContext(ctx, d.rebind(`DELETE FROM session_values WHERE scope = $1`), scope)
	return err
}

// Close closes the underlying connection.
func (d *DB) Close() error {
	if d == nil || d.Client == nil {
		return nil
	}
	return d.Client.Close()
}

// Values stores session keys in session_values.
type Values struct {
	db    *DB
	scope string
}

// Get returns "" for a missing key.
func (v *Values) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := v.db.Client.QueryRowContext(ctx, v.db.rebind(`
		SELECT value FROM session_values WHERE scope = $1 AND key = $2
	`), v.scope, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

func (v *Values) Set(ctx context.Context, key, value string) error {
	_, err := v.db.Client.ExecContext(ctx, v.db.rebind(`
		INSERT INTO session_values (scope, key, value, updated_at)
		VALUES ($1, $2, $3, CURRENT_TIMESTAMP)
		ON CONFLICT (scope, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = CURRENT_TIMESTAMP
	`), v.scope, key, value)
	return err
}

func (v *Values) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := v.db.Client.ExecContext(ctx, v.db.rebind(`
			DELETE FROM session_values WHERE scope = $1 AND key = $2
		`), v.scope, key); err != nil {
			return err
		}
	}
	return nil
}
