package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "./mods", cfg.Mods.Directory)
	assert.Equal(t, 4, cfg.Mods.Workers)
	assert.Equal(t, 2, cfg.Collections.RebuildWorkers)
	assert.Equal(t, 64, cfg.Collections.QueueSize)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfig_EnvFile(t *testing.T) {
	dir := t.TempDir()
	env := "MODS_DIRECTORY=/srv/mods\nDATABASE_DRIVER=sqlite\nCOLLECTIONS_REBUILD_WORKERS=3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("MODS_DIRECTORY")
		os.Unsetenv("DATABASE_DRIVER")
		os.Unsetenv("COLLECTIONS_REBUILD_WORKERS")
	})

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "/srv/mods", cfg.Mods.Directory)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 3, cfg.Collections.RebuildWorkers)
}

func TestValidate(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	bad := *cfg
	bad.Database.Driver = "postgres"
	assert.Error(t, bad.Validate())

	bad = *cfg
	bad.Mods.Workers = 0
	assert.Error(t, bad.Validate())
}
