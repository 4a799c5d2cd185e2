package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.False(t, cfg.DevSeed)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "bookkeeping.yaml")
	yml := `
http_addr: ":9090"
database_url: "postgres://file"
redis:
  addr: "localhost:6379"
  ttl: 1m
labels:
  bank: "Cash at Bank"
`
	require.NoError(t, os.WriteFile(path, []byte(yml), 0o644))
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("REPORT_CACHE_TTL", "5s")
	t.Setenv("DEV_SEED", "yes")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres://env", cfg.DatabaseURL)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Second, cfg.Redis.TTL)
	assert.True(t, cfg.DevSeed)

	labels, err := cfg.LabelOverrides()
	require.NoError(t, err)
	assert.Equal(t, "Cash at Bank", labels[ledger.AccountTypeBank])
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_FORMAT=text\n"), 0o644))
	// godotenv.Load does not override existing variables; make sure it is unset for this test.
	t.Setenv("LOG_FORMAT", "")
	os.Unsetenv("LOG_FORMAT")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_BadTTL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("REPORT_CACHE_TTL", "soon")
	_, err := Load("")
	assert.Error(t, err)
}

func TestLabelOverrides_UnknownType(t *testing.T) {
	cfg := Default()
	cfg.Labels = map[string]string{"petty_cash": "Petty"}
	_, err := cfg.LabelOverrides()
	assert.Error(t, err)
}
