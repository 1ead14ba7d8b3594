// Package testutil provides shared helpers for integration tests.
// Helpers skip the calling test when TEST_DATABASE_URL is not set, so unit
// tests run without Postgres.
package testutil

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql

	"github.com/pkordes/clamcard/migrations"
)

// DSNEnv names the environment variable holding the test database URL.
const DSNEnv = "TEST_DATABASE_URL"

// NewPool opens a pool on the test database and closes it when the test ends.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction on the test database that is rolled back when
// the test ends. Repos built on it leave no rows behind.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()

	tx, err := NewPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// NewSQLDB opens a *sql.DB on the test database through the pgx stdlib driver,
// for goose. It is closed when the test ends.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// MigrateUp applies every pending migration to the database at dsn.
// It is meant for TestMain, where no *testing.T exists, and panics on failure.
func MigrateUp(dsn string) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MigrateUp: open: " + err.Error())
	}
	defer db.Close()

	if _, err := migrations.Up(context.Background(), db); err != nil {
		panic("testutil.MigrateUp: " + err.Error())
	}
}

// requireDSN returns the test database URL, skipping the test if it is unset.
func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
