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
	cases := map[string]string{
		"add delivery regions":  "add_delivery_regions",
		"Add-Delivery-Regions":  "add_delivery_regions",
		"CREATE_SALES_SCHEMA":   "create_sales_schema",
		"add__index__on_sales":  "add_index_on_sales",
		"Widen zipcode 2":       "widen_zipcode_2",
		"   spaces   ":          "spaces",
		"drop!@#$legacy":        "droplegacy",
		"trailing_":             "trailing",
		"_leading":              "leading",
		"":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, sanitizeName(in), "name %q", in)
	}
}

func TestCreateMigration(t *testing.T) {
	dir := t.TempDir()

	mf, err := CreateMigration(dir, "add delivery regions", "Region lookup for delivery analytics")
	require.NoError(t, err)

	// Versions sort lexically: YYYYMMDDHHMMSS.
	assert.Len(t, mf.Version, 14)
	assert.True(t, strings.HasSuffix(mf.UpPath, ".up.sql"))
	assert.True(t, strings.HasSuffix(mf.DownPath, ".down.sql"))
	assert.Equal(t,
		strings.TrimSuffix(filepath.Base(mf.UpPath), ".up.sql"),
		strings.TrimSuffix(filepath.Base(mf.DownPath), ".down.sql"))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add delivery regions")
	assert.Contains(t, string(up), "Region lookup for delivery analytics")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback")
}

func TestCreateMigrationCreatesDirectory(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "db", "migrations")

	_, err := CreateMigration(nested, "init", "")
	require.NoError(t, err)

	info, err := os.Stat(nested)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMigrations(t *testing.T) {
	dir := t.TempDir()

	for _, f := range []string{
		"20250812100000_create_sales_schema.up.sql",
		"20250812100000_create_sales_schema.down.sql",
		"20250819140000_create_dashboards.up.sql",
		"20250819140000_create_dashboards.down.sql",
		"README.md",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("-- sql"), 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.up.sql"), 0755))

	migrations, err := ListMigrations(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"20250812100000_create_sales_schema",
		"20250819140000_create_dashboards",
	}, migrations)
}

func TestListMigrationsMissingDirectory(t *testing.T) {
	migrations, err := ListMigrations(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, migrations)
}
