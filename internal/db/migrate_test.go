package db

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMigrationsArePaired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)

	ups := map[string]bool{}
	downs := map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	require.NotEmpty(t, ups)
	require.Equal(t, ups, downs)
}

func TestMenuMigrationSeedsCatalog(t *testing.T) {
	body, err := fs.ReadFile(migrationsFS, "migrations/000001_menu_items.up.sql")
	require.NoError(t, err)
	for _, name := range []string{"Espresso", "Americano", "Cappuccino", "Latte", "Mocha"} {
		require.Contains(t, string(body), "'"+name+"'")
	}
}
