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
		{"add vendor aliases", "add_vendor_aliases"},
		{"Add-Vendor-Aliases", "add_vendor_aliases"},
		{"ADD__VENDOR__ALIASES", "add_vendor_aliases"},
		{"index po 2", "index_po_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
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

	first, err := CreateMigration(dir, "add vendor aliases", "Vendor alias lookup table")
	require.NoError(t, err)
	assert.Equal(t, uint(1), first.Version)
	assert.Equal(t, "000001_add_vendor_aliases.up.sql", filepath.Base(first.UpPath))
	assert.Equal(t, "000001_add_vendor_aliases.down.sql", filepath.Base(first.DownPath))

	content, err := os.ReadFile(first.UpPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "-- Vendor alias lookup table"))

	second, err := CreateMigration(dir, "index invoices", "")
	require.NoError(t, err)
	assert.Equal(t, uint(2), second.Version)
	assert.Equal(t, "index invoices", second.Description)
}

func TestCreateMigration_InvalidName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	t.Run("missing directory is empty", func(t *testing.T) {
		entries, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("pairs up and down files in version order", func(t *testing.T) {
		dir := t.TempDir()
		for _, name := range []string{
			"000010_late.up.sql",
			"000002_create_procurement.up.sql",
			"000002_create_procurement.down.sql",
			"README.md",
			"embed.go",
		} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("--"), 0o644))
		}

		entries, err := ListMigrations(dir)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, Entry{Version: 2, Name: "create_procurement", HasUp: true, HasDown: true}, entries[0])
		assert.Equal(t, Entry{Version: 10, Name: "late", HasUp: true}, entries[1])
	})
}

func TestParseFileName(t *testing.T) {
	v, name, dir, ok := parseFileName("000003_create_comparisons.down.sql")
	require.True(t, ok)
	assert.Equal(t, uint(3), v)
	assert.Equal(t, "create_comparisons", name)
	assert.Equal(t, "down", dir)

	_, _, _, ok = parseFileName("create_comparisons.up.sql")
	assert.False(t, ok)
}
