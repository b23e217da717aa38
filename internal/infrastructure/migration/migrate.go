// Package migration applies the SQL files under migrations/ with golang-migrate.
package migration

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
)

const (
	migrationsTable  = "schema_migrations"
	lockTimeout      = 30 * time.Second
	statementTimeout = 5 * time.Minute
)

// Status is the schema state recorded in schema_migrations
type Status struct {
	Version uint
	Dirty   bool
}

func (s Status) String() string {
	switch {
	case s.Version == 0:
		return "no migrations applied"
	case s.Dirty:
		return fmt.Sprintf("version %d (dirty)", s.Version)
	}
	return fmt.Sprintf("version %d", s.Version)
}

type Migrator struct {
	m   *migrate.Migrate
	log *zap.Logger
}

// New migrates through an already open connection. The caller keeps
// ownership of db, but Close closes it too.
func New(db *sql.DB, dir string, log *zap.Logger) (*Migrator, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{
		MigrationsTable:  migrationsTable,
		StatementTimeout: statementTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("postgres migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance(sourceURL(dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("open migrations in %s: %w", dir, err)
	}
	return wrap(m, log), nil
}

// NewFromURL opens its own connection from a postgres:// URL
func NewFromURL(databaseURL, dir string, log *zap.Logger) (*Migrator, error) {
	m, err := migrate.New(sourceURL(dir), databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open migrations in %s: %w", dir, err)
	}
	return wrap(m, log), nil
}

func wrap(m *migrate.Migrate, log *zap.Logger) *Migrator {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("migrate")
	m.Log = zapMigrateLogger{log}
	m.LockTimeout = lockTimeout
	return &Migrator{m: m, log: log}
}

func sourceURL(dir string) string {
	if strings.Contains(dir, "://") {
		return dir
	}
	return "file://" + dir
}

func (m *Migrator) Up() error   { return m.run("up", m.m.Up) }
func (m *Migrator) Down() error { return m.run("down", m.m.Down) }

// Steps moves n migrations forward, or back when n is negative
func (m *Migrator) Steps(n int) error {
	return m.run(fmt.Sprintf("step %d", n), func() error { return m.m.Steps(n) })
}

func (m *Migrator) GoTo(version uint) error {
	return m.run(fmt.Sprintf("goto %d", version), func() error { return m.m.Migrate(version) })
}

// run treats "nothing to do" as success and logs where the schema ended up
func (m *Migrator) run(op string, fn func() error) error {
	started := time.Now()
	if err := fn(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate %s: %w", op, err)
	}
	status, err := m.Status()
	if err != nil {
		return err
	}
	m.log.Info("Schema migrated",
		zap.String("op", op),
		zap.Uint("version", status.Version),
		zap.Bool("dirty", status.Dirty),
		zap.Duration("took", time.Since(started)),
	)
	return nil
}

// Status reports version 0 for an empty database
func (m *Migrator) Status() (Status, error) {
	v, dirty, err := m.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty}, nil
}

// Version is Status as a tuple
func (m *Migrator) Version() (uint, bool, error) {
	s, err := m.Status()
	return s.Version, s.Dirty, err
}

// Force records version without running anything, clearing the dirty flag
// left by a failed migration
func (m *Migrator) Force(version int) error {
	m.log.Warn("Forcing schema version", zap.Int("version", version))
	if err := m.m.Force(version); err != nil {
		return fmt.Errorf("force version %d: %w", version, err)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.m.Close()
	return errors.Join(srcErr, dbErr)
}

// zapMigrateLogger receives golang-migrate's progress lines
type zapMigrateLogger struct{ log *zap.Logger }

func (l zapMigrateLogger) Printf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l zapMigrateLogger) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
