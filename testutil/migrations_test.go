package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/clamcard/migrations"
	"github.com/pkordes/clamcard/testutil"
)

// tablesByVersion lists the tables each migration version introduces.
var tablesByVersion = map[int64][]string{
	1: {"zones", "stations"},
	2: {"cards", "journeys"},
}

// TestMigrations walks the migrations up one version at a time, checking the
// tables each version adds, then rolls everything back and re-applies it so
// the shared test database is left fully migrated.
//
// Skipped when TEST_DATABASE_URL is not set.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err, "create goose provider")

	ctx := context.Background()

	// Other packages' TestMain may already have migrated this database.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	for version := int64(1); version <= int64(len(tablesByVersion)); version++ {
		res, err := provider.UpByOne(ctx)
		require.NoError(t, err, "up to version %d", version)
		assert.Equal(t, version, res.Source.Version)

		for _, table := range tablesByVersion[version] {
			assertTablePresence(t, db, table, true)
		}
	}

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "down to 0")
	for _, tables := range tablesByVersion {
		for _, table := range tables {
			assertTablePresence(t, db, table, false)
		}
	}

	_, err = provider.Up(ctx)
	require.NoError(t, err, "final up")
}

func assertTablePresence(t *testing.T, db *sql.DB, table string, shouldExist bool) {
	t.Helper()

	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public'
			AND   table_name   = $1
		)`
	var exists bool
	err := db.QueryRowContext(context.Background(), q, table).Scan(&exists)
	require.NoError(t, err, "check table existence for %q", table)

	if shouldExist {
		assert.True(t, exists, "expected table %q to exist", table)
	} else {
		assert.False(t, exists, "expected table %q to not exist", table)
	}
}
