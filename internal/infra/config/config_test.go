package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.HTTP.Address)
	require.Equal(t, "gpt-4o", cfg.LLM.Model)
	require.Equal(t, 120*time.Second, cfg.LLM.RequestTimeout)
	require.Equal(t, 4, cfg.Analysis.MaxPhotos)
	require.Equal(t, int64(8<<20), cfg.Analysis.MaxPhotoBytes)
	require.Equal(t, 24*time.Hour, cfg.Analysis.CacheTTL)
	require.Equal(t, "memory", cfg.PhotoStore.Backend)
	require.Contains(t, cfg.HTTP.Retry.Exclude, "/api/v1/analyses")
}

func TestLoadFromFile(t *testing.T) {
	raw := `
http:
  address: ":9090"
llm:
  model: gpt-4o-mini
  requestTimeout: 90s
analysis:
  maxPhotos: 2
catalog:
  seedFile: /data/catalog.yaml
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	require.Equal(t, 90*time.Second, cfg.LLM.RequestTimeout)
	require.Equal(t, 2, cfg.Analysis.MaxPhotos)
	require.Equal(t, "/data/catalog.yaml", cfg.Catalog.SeedFile)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  model: from-file\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("LLM_MODEL", "from-env")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("ANALYSIS_MAX_PHOTOS", "3")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "from-env", cfg.LLM.Model)
	require.Equal(t, []string{"https://app.example.com", "https://staging.example.com"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 3, cfg.Analysis.MaxPhotos)
}

func TestLoadMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))
	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"empty address", func(cfg *Config) { cfg.HTTP.Address = "" }},
		{"empty model", func(cfg *Config) { cfg.LLM.Model = "" }},
		{"zero timeout", func(cfg *Config) { cfg.LLM.RequestTimeout = 0 }},
		{"zero max photos", func(cfg *Config) { cfg.Analysis.MaxPhotos = 0 }},
		{"negative cache ttl", func(cfg *Config) { cfg.Analysis.CacheTTL = -time.Minute }},
		{"unknown backend", func(cfg *Config) { cfg.PhotoStore.Backend = "s3" }},
		{"r2 without endpoint", func(cfg *Config) { cfg.PhotoStore.Backend = "r2" }},
		{"redis without addr", func(cfg *Config) { cfg.Cache.RedisEnabled = true }},
		{"rate limit without rpm", func(cfg *Config) { cfg.HTTP.RateLimit.RequestsPerMinute = 0 }},
		{"retry without backoff", func(cfg *Config) { cfg.HTTP.Retry.BaseBackoff = 0 }},
	}
	for _, tc := range cases {
		cfg := defaultConfig()
		tc.mutate(cfg)
		require.Error(t, cfg.Validate(), tc.name)
	}

	require.NoError(t, defaultConfig().Validate())
}
