package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/ledgerbook/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice notes", "add_invoice_notes"},
		{"Add-Invoice-Notes", "add_invoice_notes"},
		{"ADD__INVOICE__NOTES", "add_invoice_notes"},
		{"  padded  ", "padded"},
		{"odd!@#chars", "oddchars"},
		{"_leading and trailing_", "leading_and_trailing"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersSequentially(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)

	first, err := CreateMigration(dir, "create customers", "customers table", now)
	require.NoError(t, err)
	assert.Equal(t, "000001", first.Version)
	assert.Equal(t, filepath.Join(dir, "000001_create_customers.up.sql"), first.UpPath)

	second, err := CreateMigration(dir, "Add Index", "", now)
	require.NoError(t, err)
	assert.Equal(t, "000002", second.Version)

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "-- Migration: create_customers")
	assert.Contains(t, string(content), "2024-07-01T12:00:00Z")

	_, err = os.Stat(second.DownPath)
	assert.NoError(t, err)
}

func TestCreateMigration_RejectsEmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "", time.Now())
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000010_late.up.sql":     {},
		"000010_late.down.sql":   {},
		"000002_early.up.sql":    {},
		"000002_early.down.sql":  {},
		"README.md":              {},
		"nested/000003_x.up.sql": {},
	}

	names, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []string{"000002_early", "000010_late"}, names)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	names, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, names)

	for i, name := range names {
		v, err := parseVersion(name)
		require.NoError(t, err)
		assert.Equal(t, i+1, v, "versions must be contiguous")

		_, err = migrations.FS.Open(name + ".down.sql")
		assert.NoError(t, err, "%s has no down migration", name)
	}
}
