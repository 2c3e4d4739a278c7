package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8501, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "local", cfg.Colorize.Source)
	assert.Greater(t, cfg.Colorize.Workers, 0)
	assert.Equal(t, 24*time.Hour, cfg.ObjectStore.URLTTL)
	assert.Equal(t, filepath.Join("static", "PartObjaverse-Tiny_mesh"), cfg.Dataset.MeshesPath())
	assert.Equal(t, filepath.Join("static", "PartObjaverse-Tiny_mesh_colored"), cfg.Dataset.ColoredPath())
	assert.Equal(t, "PartObjaverse-Tiny_semantic_gt", cfg.Dataset.SemanticGTPath())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("COLORIZE_SOURCE", "hub")
	t.Setenv("COLORIZE_WORKERS", "3")
	t.Setenv("HUB_TIMEOUT", "bogus")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "hub", cfg.Colorize.Source)
	assert.Equal(t, 3, cfg.Colorize.Workers)
	assert.Equal(t, 10*time.Minute, cfg.Hub.Timeout)
}

func TestLoad_InvalidSource(t *testing.T) {
	t.Setenv("COLORIZE_SOURCE", "s3")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_ObjectStoreNeedsBucket(t *testing.T) {
	t.Setenv("OBJECT_STORE_ENABLED", "true")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadWith_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("COLORIZE_FORCE", true)
	v.Set("COLORIZE_WORKERS", 0)

	cfg, err := LoadWith(v)
	require.NoError(t, err)
	assert.True(t, cfg.Colorize.Force)
	assert.Greater(t, cfg.Colorize.Workers, 0)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{User: "u", Password: "p", Host: "db", Port: 5432, Name: "n", SSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/n?sslmode=disable", c.DSN())
}
