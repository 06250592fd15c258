package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Load("")

	assert.NilError(t, err)
	assert.Equal(t, cfg.Port, "8080")
	assert.Equal(t, cfg.DBDriver, "pgx")
	assert.Equal(t, cfg.PageSize, 12)
	assert.Equal(t, cfg.SilentThreshold, 2)
	assert.Equal(t, cfg.FetchTimeout, 20*time.Second)
	assert.DeepEqual(t, cfg.TemplateColumns, []string{"main", "side", "back", "detail"})
	assert.Assert(t, filepath.IsAbs(cfg.CacheDir))
}

func TestLoad_Environment(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("PAGE_SIZE", "24")
	t.Setenv("TEMPLATE_COLUMNS", "Portada, Lateral")
	t.Setenv("DEFAULT_CATEGORY", "Lateral")

	cfg, err := Load("")

	assert.NilError(t, err)
	assert.Equal(t, cfg.DBDriver, "sqlite")
	assert.Equal(t, cfg.PageSize, 24)
	assert.DeepEqual(t, cfg.TemplateColumns, []string{"main", "side"})
	assert.Equal(t, cfg.DefaultCategory, "side")
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "studio.yaml")
	assert.NilError(t, os.WriteFile(path, []byte("PORT: \"9090\"\nSILENT_THRESHOLD: 4\n"), 0644))

	cfg, err := Load(path)

	assert.NilError(t, err)
	assert.Equal(t, cfg.Port, "9090")
	assert.Equal(t, cfg.SilentThreshold, 4)
}

func TestLoad_Invalid(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("DB_DRIVER", "mysql")

	_, err := Load("")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	assert.NilError(t, err)
	assert.NilError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
