package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectAndMigrateSQLite(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "chat.db")}

	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	require.NoError(t, Migrate(context.Background(), db, cfg, zerolog.Nop()))
	// Second run is a no-op.
	require.NoError(t, Migrate(context.Background(), db, cfg, zerolog.Nop()))
	require.NoError(t, Ping(db))

	assert.True(t, db.Migrator().HasTable("users"))
	assert.True(t, db.Migrator().HasTable("chat_history"))
	assert.True(t, db.Migrator().HasIndex("chat_history", "idx_chat_history_user_conversation"))
}

func TestConnectRejectsBadConfig(t *testing.T) {
	_, err := Connect(Config{Driver: DriverSQLite})
	assert.Error(t, err)

	_, err = Connect(Config{Driver: "mysql", DSN: "x"})
	assert.Error(t, err)
}

func TestMigrateRejectsInMemorySQLite(t *testing.T) {
	cfg := Config{Driver: DriverSQLite, DSN: ":memory:"}
	db, err := Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.Error(t, Migrate(context.Background(), db, cfg, zerolog.Nop()))
}

func TestQuoteIdentifier(t *testing.T) {
	assert.Equal(t, `"support"`, pqQuoteIdentifier("support"))
	assert.Equal(t, `"we""ird"`, pqQuoteIdentifier(`we"ird`))
}

func TestEnsureDatabaseExistsSkipsKeyValueDSN(t *testing.T) {
	assert.NoError(t, ensureDatabaseExists("host=localhost user=postgres dbname=support"))
	assert.NoError(t, ensureDatabaseExists("postgres://u:p@localhost:5432/postgres"))
}
