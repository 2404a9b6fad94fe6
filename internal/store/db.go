package store

import (
	"context"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB is the database handle shared by the controllers.
type DB struct {
	db  *sqlx.DB
	now func() time.Time
}

// Open creates the parent directory if needed, applies pending migrations and
// opens sqlite with a single connection.
//
// Any failure is returned wrapped; callers treat it as fatal.
func Open(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolve database path %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return nil, errors.Wrap(err, "create data directory")
	}

	if err := Migrate(abs); err != nil {
		return nil, err
	}

	db, err := sqlx.Open("sqlite3", dsn(abs))
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1) // sqlite
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "ping sqlite")
	}

	return New(db), nil
}

// New wraps an already opened connection. Migrations are not applied.
func New(db *sqlx.DB) *DB {
	return &DB{db: db, now: time.Now}
}

// Close releases the connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks that the database is reachable.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Migrate applies all up migrations embedded in the binary to the database
// at path. It opens and closes its own connection.
func Migrate(path string) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return errors.Wrap(err, "load migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, "sqlite3://"+path+"?_foreign_keys=on")
	if err != nil {
		return errors.Wrap(err, "init migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}

func dsn(path string) string {
	return fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=5000", path)
}

// timestamp returns the current time normalised for storage.
func (d *DB) timestamp() time.Time {
	return normalize(d.now())
}

func normalize(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
