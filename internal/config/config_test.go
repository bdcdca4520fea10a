package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// 指向不存在的目录，走纯默认值路径
	dir := t.TempDir()
	old, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	defer func() { _ = os.Chdir(old) }()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "modop-server", cfg.App.Name)
	assert.Equal(t, ":7100", cfg.TCP.Addr)
	assert.Equal(t, 5000, cfg.TCP.MaxConnections)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, uint(32), cfg.Dispatch.DefaultCapacity)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := `
app:
  name: modop-test
tcp:
  addr: ":9100"
  readTimeout: 15s
dispatch:
  manifest: /tmp/commands.yaml
  defaultCapacity: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "modop-test", cfg.App.Name)
	assert.Equal(t, ":9100", cfg.TCP.Addr)
	assert.Equal(t, 15*time.Second, cfg.TCP.ReadTimeout)
	assert.Equal(t, "/tmp/commands.yaml", cfg.Dispatch.Manifest)
	assert.Equal(t, uint(4), cfg.Dispatch.DefaultCapacity)
	// 未覆盖的键保持默认
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte(":\n  - ["), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
