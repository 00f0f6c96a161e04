package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gallery.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  rate_limit: 5
  minio:
    endpoint: "minio:9000"
    bucket: "places"
client:
  token: "from-file"
`), 0o600))

	t.Setenv("GALLERY_TOKEN", "from-env")
	t.Setenv("GALLERY_MINIO_SECURE", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, 5.0, cfg.Server.RateLimit)
	assert.Equal(t, 40, cfg.Server.RateBurst)
	assert.Equal(t, "places", cfg.Server.Minio.Bucket)
	assert.True(t, cfg.Server.Minio.Secure)
	assert.Equal(t, "from-env", cfg.Client.Token)
	assert.Equal(t, "http://localhost:9000", cfg.Server.PublicURL)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "http://localhost:8080", cfg.Client.BaseURL)
	assert.Equal(t, "text", cfg.Server.LogFormat)
}

func TestApplyEnv_BadNumber(t *testing.T) {
	cfg := &Config{}
	err := cfg.applyEnv(func(k string) (string, bool) {
		if k == "GALLERY_RATE_LIMIT" {
			return "fast", true
		}
		return "", false
	})
	assert.Error(t, err)
}
