//go:build integration

// Package integration runs the storefront against PostgreSQL started with
// testcontainers. One container serves the whole package: migrations run once
// into a template database and every test gets its own copy of it.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const templateDB = "storefront_template"

// TestDB is a migrated database private to one test
type TestDB struct {
	DB  *gorm.DB
	DSN string
}

var shared struct {
	once      sync.Once
	err       error
	container *tcpostgres.PostgresContainer
	baseDSN   *url.URL
}

func TestMain(m *testing.M) {
	code := m.Run()
	if shared.container != nil {
		_ = shared.container.Terminate(context.Background())
	}
	os.Exit(code)
}

// NewTestDB clones the migrated template into a fresh database, dropped when
// the test ends
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	shared.once.Do(func() { shared.err = startTemplate() })
	require.NoError(t, shared.err, "PostgreSQL template setup failed")

	name := "sf_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
	admin := openSQL(t, dsnFor("postgres"))
	_, err := admin.Exec(fmt.Sprintf("CREATE DATABASE %s TEMPLATE %s", name, templateDB))
	require.NoError(t, err, "create test database")

	dsn := dsnFor(name)
	db, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{Logger: gormLogger(), TranslateError: true})
	require.NoError(t, err, "connect test database")
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(10)

	t.Cleanup(func() {
		_ = sqlDB.Close()
		if _, err := admin.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", name)); err != nil {
			t.Logf("drop %s: %v", name, err)
		}
		_ = admin.Close()
	})
	return &TestDB{DB: db, DSN: dsn}
}

func startTemplate() error {
	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase(templateDB),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(90*time.Second)),
	)
	if err != nil {
		return fmt.Errorf("start postgres: %w", err)
	}
	shared.container = container

	raw, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return err
	}
	if shared.baseDSN, err = url.Parse(raw); err != nil {
		return err
	}

	// the template must have no open connections when it is cloned
	db, err := sql.Open("postgres", raw)
	if err != nil {
		return err
	}
	defer db.Close()

	dir := migrationsDir()
	if dir == "" {
		return fmt.Errorf("migrations directory not found")
	}
	m, err := migration.New(db, dir, zap.NewNop())
	if err != nil {
		return err
	}
	return m.Up()
}

func dsnFor(database string) string {
	u := *shared.baseDSN
	u.Path = "/" + database
	return u.String()
}

func openSQL(t *testing.T, dsn string) *sql.DB {
	t.Helper()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	return db
}

func gormLogger() logger.Interface {
	if os.Getenv("TEST_DB_DEBUG") != "" {
		return logger.Default.LogMode(logger.Info)
	}
	return logger.Discard
}

// migrationsDir walks up from this file to the repository's migrations/
func migrationsDir() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return ""
	}
	for dir := filepath.Dir(file); dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "migrations")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}
	}
	return ""
}
