// Package sqlstore persists recipes in SQLite or Postgres. Schemas are
// embedded and applied with golang-migrate when a DB is opened.
package sqlstore

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/zjrosen/mise/internal/cookbook"
	"github.com/zjrosen/mise/internal/log"
)

//go:embed migrations
var migrationsFS embed.FS

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config selects a database.
type Config struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
	// Path is the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`
	// DSN is the Postgres connection string.
	DSN string `mapstructure:"dsn" yaml:"dsn"`
}

// DB is an open, migrated database.
type DB struct {
	conn    *sql.DB
	dialect dialect
}

// Open connects to the configured database and applies pending migrations.
func Open(cfg Config) (*DB, error) {
	switch cfg.Driver {
	case DriverSQLite, "":
		return NewDB(cfg.Path)
	case DriverPostgres:
		return NewPostgresDB(cfg.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewDB opens the SQLite database at path, creating its directory.
func NewDB(path string) (*DB, error) {
	if path == "" {
		return nil, errors.New("sqlite path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows one writer; a single connection avoids SQLITE_BUSY.
	conn.SetMaxOpenConns(1)

	driver, err := migratesqlite.WithInstance(conn, &migratesqlite.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("sqlite migration driver: %w", err)
	}
	if err := runMigrations(driver, "sqlite", "migrations/sqlite"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatStore, "opened database", "driver", DriverSQLite, "path", path)
	return &DB{conn: conn, dialect: sqliteDialect}, nil
}

// NewPostgresDB opens a Postgres database through pgx.
func NewPostgresDB(dsn string) (*DB, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn required")
	}
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	driver, err := migratepgx.WithInstance(conn, &migratepgx.Config{})
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	if err := runMigrations(driver, "pgx", "migrations/postgres"); err != nil {
		_ = conn.Close()
		return nil, err
	}

	log.Debug(log.CatStore, "opened database", "driver", DriverPostgres)
	return &DB{conn: conn, dialect: postgresDialect}, nil
}

// runMigrations applies every pending up migration. The migrate instance is
// not closed: closing it would close conn.
func runMigrations(driver database.Driver, name, dir string) error {
	src, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, name, driver)
	if err != nil {
		return fmt.Errorf("init migrations: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	version, dirty, err := m.Version()
	if err == nil {
		log.Debug(log.CatStore, "schema version", "version", version, "dirty", dirty)
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Driver names the backing database.
func (db *DB) Driver() string {
	return db.dialect.name
}

// RecipeRepository returns a repository over this database.
func (db *DB) RecipeRepository() cookbook.Repository {
	return newRecipeRepository(db.conn, db.dialect)
}
