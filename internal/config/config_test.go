package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func inTempDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.Equal(t, "admin", cfg.User)
	assert.Equal(t, "minibooks.db", cfg.DB.Path)
	assert.Equal(t, ":8888", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, int64(5), cfg.Dashboard.LowStockThreshold)
	assert.False(t, cfg.Production())
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := inTempDir(t)
	t.Setenv("HOME", t.TempDir())
	yaml := "env: production\ndb:\n  path: /var/lib/books.db\nlog:\n  level: debug\n  format: json\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "minibooks.yaml"), []byte(yaml), 0o644))
	t.Setenv("MINIBOOKS_LOG_LEVEL", "warn")
	t.Setenv("MINIBOOKS_SERVER_RATE_LIMIT", "10")
	t.Setenv("MINIBOOKS_DASHBOARD_LOW_STOCK_THRESHOLD", "2")

	cfg, err := Load(New())
	require.NoError(t, err)

	assert.True(t, cfg.Production())
	assert.Equal(t, "/var/lib/books.db", cfg.DB.Path)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 10, cfg.Server.RateLimit)
	assert.Equal(t, int64(2), cfg.Dashboard.LowStockThreshold)
}

func TestValidateCollectsProblems(t *testing.T) {
	inTempDir(t)
	t.Setenv("HOME", t.TempDir())
	v := New()
	v.Set("log.format", "xml")
	v.Set("server.url", "localhost:8888")
	v.Set("db.path", "")
	v.Set("dashboard.low_stock_threshold", -1)

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.format")
	assert.Contains(t, err.Error(), "server.url")
	assert.Contains(t, err.Error(), "db.path")
	assert.Contains(t, err.Error(), "dashboard.low_stock_threshold")
}
