package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/zjrosen/mise/internal/blob"
	"github.com/zjrosen/mise/internal/infrastructure/sqlstore"
	"github.com/zjrosen/mise/internal/recipe"
	"github.com/zjrosen/mise/internal/tracing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()

	require.Equal(t, "keep-first", cfg.Derivation.ConflictPolicy)
	require.Equal(t, recipe.KeepFirst, cfg.Derivation.Policy())
	require.Equal(t, 30*time.Minute, cfg.Cache.TTL)
	require.Equal(t, sqlstore.DriverSQLite, cfg.Store.Driver)
	require.Equal(t, string(blob.DriverFilesystem), cfg.Blob.Driver)
	require.False(t, cfg.Tracing.Enabled)
	require.Equal(t, tracing.ExporterFile, cfg.Tracing.Exporter)
	require.Equal(t, "text", cfg.Render.Format)
	require.Equal(t, 80, cfg.Render.Width)
	require.NoError(t, Validate(cfg))
}

func TestDerivationConfig_Policy(t *testing.T) {
	require.Equal(t, recipe.Overwrite, DerivationConfig{ConflictPolicy: "overwrite"}.Policy())
	require.Equal(t, recipe.Reject, DerivationConfig{ConflictPolicy: "reject"}.Policy())
	require.Equal(t, recipe.KeepFirst, DerivationConfig{}.Policy())
	require.Equal(t, recipe.KeepFirst, DerivationConfig{ConflictPolicy: "merge"}.Policy())
}

func TestValidateDerivation_UnknownPolicy(t *testing.T) {
	err := ValidateDerivation(DerivationConfig{ConflictPolicy: "merge"})
	require.ErrorIs(t, err, recipe.ErrUnknownPolicy)
	require.Contains(t, err.Error(), "derivation.conflict_policy")
}

func TestValidateCache_NegativeTTL(t *testing.T) {
	require.Error(t, ValidateCache(CacheConfig{TTL: -time.Second}))
	require.NoError(t, ValidateCache(CacheConfig{}))
}

func TestValidateStore(t *testing.T) {
	require.NoError(t, ValidateStore(sqlstore.Config{}))
	require.NoError(t, ValidateStore(sqlstore.Config{Driver: "sqlite", Path: "/tmp/mise.db"}))
	require.NoError(t, ValidateStore(sqlstore.Config{Driver: "postgres", DSN: "postgres://localhost/mise"}))

	err := ValidateStore(sqlstore.Config{Driver: "postgres"})
	require.ErrorContains(t, err, "store.dsn is required")

	err = ValidateStore(sqlstore.Config{Driver: "mysql"})
	require.ErrorContains(t, err, "store.driver")
}

func TestValidateBlob(t *testing.T) {
	require.NoError(t, ValidateBlob(blob.Config{}))
	require.NoError(t, ValidateBlob(blob.Config{Driver: "memory"}))
	require.NoError(t, ValidateBlob(blob.Config{Driver: "s3", S3: blob.S3Config{Bucket: "recipes"}}))

	require.ErrorContains(t, ValidateBlob(blob.Config{Driver: "s3"}), "blob.s3.bucket")
	require.ErrorContains(t, ValidateBlob(blob.Config{Driver: "gcs"}), "blob.driver")
}

func TestValidateTracing(t *testing.T) {
	tests := []struct {
		name    string
		cfg     tracing.Config
		wantErr string
	}{
		{name: "empty", cfg: tracing.Config{}},
		{name: "defaults", cfg: tracing.DefaultConfig()},
		{name: "sample rate too high", cfg: tracing.Config{SampleRate: 1.5}, wantErr: "sample_rate"},
		{name: "sample rate negative", cfg: tracing.Config{SampleRate: -0.1}, wantErr: "sample_rate"},
		{name: "unknown exporter", cfg: tracing.Config{Exporter: "zipkin"}, wantErr: "tracing.exporter"},
		{name: "file without path", cfg: tracing.Config{Enabled: true, Exporter: "file"}, wantErr: "file_path"},
		{name: "disabled file without path", cfg: tracing.Config{Exporter: "file"}},
		{name: "otlp without endpoint", cfg: tracing.Config{Enabled: true, Exporter: "otlp"}, wantErr: "otlp_endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTracing(tt.cfg)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateLog(t *testing.T) {
	for _, level := range []string{"", "debug", "INFO", "warn", "error"} {
		require.NoError(t, ValidateLog(LogConfig{Level: level}), level)
	}
	require.Error(t, ValidateLog(LogConfig{Level: "trace"}))
}

func TestValidateRender(t *testing.T) {
	require.NoError(t, ValidateRender(RenderConfig{Format: "md", Theme: "light"}))
	require.ErrorContains(t, ValidateRender(RenderConfig{Format: "html"}), "render.format")
	require.ErrorContains(t, ValidateRender(RenderConfig{Width: -1}), "render.width")
	require.ErrorContains(t, ValidateRender(RenderConfig{Theme: "sepia"}), "render.theme")
}

func TestDefaultConfigTemplate_Loads(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(DefaultConfigTemplate())))

	cfg, err := Load(v)
	require.NoError(t, err)

	defaults := Defaults()
	require.Equal(t, defaults.Derivation, cfg.Derivation)
	require.Equal(t, defaults.Cache, cfg.Cache)
	require.Equal(t, defaults.Render, cfg.Render)
	require.Equal(t, defaults.Catalog, cfg.Catalog)
	require.Equal(t, "fs", cfg.Blob.Driver)
}

func TestLoad_OverridesAndValidates(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
derivation:
  conflict_policy: reject
cache:
  ttl: 5m
render:
  format: json
  pretty: true
`)))

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, recipe.Reject, cfg.Derivation.Policy())
	require.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	require.Equal(t, "json", cfg.Render.Format)
	require.True(t, cfg.Render.Pretty)
	require.Equal(t, 80, cfg.Render.Width, "unset keys keep defaults")

	v.Set("derivation.conflict_policy", "merge")
	_, err = Load(v)
	require.ErrorIs(t, err, recipe.ErrUnknownPolicy)
}

func TestWriteDefaultConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	require.NoError(t, WriteDefaultConfig(configPath))

	data, err := os.ReadFile(configPath)
	require.NoError(t, err)
	require.Equal(t, DefaultConfigTemplate(), string(data))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
