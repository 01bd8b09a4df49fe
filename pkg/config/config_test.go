package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_CreatesDefaultFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)

	configDir := filepath.Join(home, ".config", "pinlist")
	assert.FileExists(t, filepath.Join(configDir, "config.json"))
	assert.Equal(t, "sqlite3", cfg.Database.Driver)
	assert.Equal(t, filepath.Join(configDir, "pinlist.db"), cfg.Database.DSN)
	assert.Equal(t, []string{"Personal", "Urgent"}, cfg.DefaultCategories)
	assert.False(t, cfg.CascadeUnpin)
	assert.Equal(t, "205", cfg.Styles.AccentColor)
	assert.NotEmpty(t, cfg.KeyMap)

	// the written file loads back to the same values
	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoad_FileValues(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"database": {"driver": "postgres", "dsn": "postgres://localhost/pinlist"},
		"default_categories": ["Inbox"],
		"cascade_unpin": true,
		"styles": {"accent_color": "99"}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/pinlist", cfg.Database.DSN)
	assert.Equal(t, []string{"Inbox"}, cfg.DefaultCategories)
	assert.True(t, cfg.CascadeUnpin)
	assert.Equal(t, "99", cfg.Styles.AccentColor)
	assert.Equal(t, "240", cfg.Styles.BorderColor)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("PINLIST_DATABASE_DRIVER", "mysql")
	t.Setenv("PINLIST_DATABASE_DSN", "user:pw@tcp(127.0.0.1:3306)/pinlist")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "user:pw@tcp(127.0.0.1:3306)/pinlist", cfg.Database.DSN)
}

func TestLoad_BrokenFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"database": `), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}
