package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFile(t *testing.T, path string) Config {
	t.Helper()
	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())
	cfg, err := Load(v)
	require.NoError(t, err)
	return cfg
}

func TestSet_CreatesNewFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	err := Set(configPath, "derivation.conflict_policy", "overwrite")
	require.NoError(t, err)

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "derivation:")
	assert.Contains(t, string(data), "conflict_policy: overwrite")
}

func TestSet_PreservesCommentsAndOtherKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	require.NoError(t, Set(configPath, "render.width", "100"))
	require.NoError(t, Set(configPath, "cache.ttl", "10m"))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "# Mise Configuration")
	assert.Contains(t, content, "keep-first - keep the first entity")
	assert.Contains(t, content, "width: 100")

	cfg := loadFile(t, configPath)
	assert.Equal(t, 100, cfg.Render.Width)
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "text", cfg.Render.Format)
}

func TestSet_FillsCommentOnlySection(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))

	userDir := t.TempDir()
	require.NoError(t, Set(configPath, "catalog.user_dir", userDir))

	cfg := loadFile(t, configPath)
	assert.Equal(t, userDir, cfg.Catalog.UserDir)
}

func TestSet_NestedKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, Set(configPath, "blob.s3.bucket", "recipes"))
	require.NoError(t, Set(configPath, "blob.driver", "s3"))
	require.NoError(t, Set(configPath, "render.pretty", "true"))

	cfg := loadFile(t, configPath)
	assert.Equal(t, "s3", cfg.Blob.Driver)
	assert.Equal(t, "recipes", cfg.Blob.S3.Bucket)
	assert.True(t, cfg.Render.Pretty)
}

func TestSet_RejectsInvalidValue(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefaultConfig(configPath))
	before, err := os.ReadFile(configPath)
	require.NoError(t, err)

	err = Set(configPath, "derivation.conflict_policy", "merge")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "derivation.conflict_policy")

	after, err := os.ReadFile(configPath)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after), "file must be unchanged")
}

func TestSet_RejectsUnknownKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.Error(t, Set(configPath, "render.colour", "red"))
	_, err := os.Stat(configPath)
	assert.True(t, os.IsNotExist(err))
}

func TestSet_InvalidKey(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	require.Error(t, Set(configPath, "render..width", "80"))
	require.Error(t, Set(configPath, "", "80"))
}

func TestSet_MalformedFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("render: [unclosed"), 0o600))

	err := Set(configPath, "render.width", "80")
	require.ErrorContains(t, err, "parsing config")
}
