package persistence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerbook/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestNewDatabase_SQLite(t *testing.T) {
	ctx := context.Background()
	db, err := NewDatabase(ctx, &config.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, "sqlite", db.Dialect())
	require.NoError(t, db.Ping(ctx))
	require.NoError(t, db.AutoMigrate())

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.MaxOpenConnections)

	var fk int
	require.NoError(t, db.DB.Raw("PRAGMA foreign_keys").Scan(&fk).Error)
	assert.Equal(t, 1, fk)
}

func TestNewDatabase_UnsupportedDriver(t *testing.T) {
	_, err := NewDatabase(context.Background(), &config.DatabaseConfig{Driver: "oracle"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported database driver")
}

func TestNewDatabase_RetriesUntilAttemptsExhausted(t *testing.T) {
	var attempts []uint
	_, err := NewDatabaseWithOptions(context.Background(), &config.DatabaseConfig{
		Driver:          "sqlite",
		Path:            "/nonexistent-dir/ledger.db",
		ConnectAttempts: 3,
	}, Options{
		RetryWait: time.Millisecond,
		OnRetry:   func(n uint, _ error) { attempts = append(attempts, n) },
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to database")
	require.GreaterOrEqual(t, len(attempts), 2)
	assert.Equal(t, uint(0), attempts[0])
}

func TestDatabase_Transaction(t *testing.T) {
	db := &Database{DB: newSQLiteDB(t)}
	boom := errors.New("boom")

	err := db.Transaction(context.Background(), func(tx *gorm.DB) error {
		if err := tx.Exec("INSERT INTO categories (id, created_at, updated_at, version, name, name_key, type, color) VALUES ('c1', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP, 1, 'A', 'a', 'income', '#000000')").Error; err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	var n int64
	require.NoError(t, db.DB.Table("categories").Count(&n).Error)
	assert.Equal(t, int64(0), n)
}
