package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add invoice table", "add_invoice_table"},
		{"Add-Invoice-Table", "add_invoice_table"},
		{"ADD_INVOICE_TABLE", "add_invoice_table"},
		{"add__invoice__table", "add_invoice_table"},
		{"Add Outbox 123", "add_outbox_123"},
		{"create-expense-category", "create_expense_category"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add invoice table", "Invoice aggregate storage")
	require.NoError(t, err)

	assert.Len(t, mf.Version, 14, "version is a YYYYMMDDHHMMSS timestamp")
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))

	upBase := strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql")
	downBase := strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql")
	assert.Equal(t, upBase, downBase, "pair shares one base name")

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add invoice table")
	assert.Contains(t, string(up), "Invoice aggregate storage")
	assert.Contains(t, string(up), "UP migration SQL")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "rollback")
	assert.Contains(t, string(down), "DOWN migration SQL")
}

func TestCreateMigrationMakesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "migrations")

	_, err := CreateMigration(nested, "init", "initial schema")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()
	for _, f := range []string{
		"000001_init_schema.up.sql",
		"000001_init_schema.down.sql",
		"000002_add_customers.up.sql",
		"000002_add_customers.down.sql",
		"000003_add_outbox.up.sql",
		"000003_add_outbox.down.sql",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- test"), 0644))
	}

	names, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"000001_init_schema",
		"000002_add_customers",
		"000003_add_outbox",
	}, names)
}

func TestListMigrationsEdgeCases(t *testing.T) {
	t.Run("empty directory", func(t *testing.T) {
		names, err := ListMigrations(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("missing directory", func(t *testing.T) {
		names, err := ListMigrations("/nonexistent/path/to/migrations")
		require.NoError(t, err)
		assert.Empty(t, names)
	})

	t.Run("ignores unrelated files and directories", func(t *testing.T) {
		dir := t.TempDir()
		for _, f := range []string{
			"000001_init.up.sql",
			"000001_init.down.sql",
			"README.md",
			".gitkeep",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0644))
		}
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

		names, err := ListMigrations(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{"000001_init"}, names)
	})
}
