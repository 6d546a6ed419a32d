package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "factorymon.log", cfg.Log.Filename)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, uint(8080), cfg.Http.Port)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, "file::memory:?cache=shared", cfg.Store.Dsn)
	assert.Equal(t, uint(0), cfg.Store.CacheExpiration)
	assert.Equal(t, uint(10), cfg.Feed.Capacity)
	assert.False(t, cfg.Mqtt.Enabled)
	assert.Equal(t, "factory/+/parameters", cfg.Mqtt.Topic)
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
  console: true
http:
  port: 9090
store:
  type: sqlite
  cacheexpiration: 5
mqtt:
  enabled: true
  broker: tcp://broker:1883
`
	require.NoError(t, ioutil.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Log.Console)
	assert.Equal(t, uint(9090), cfg.Http.Port)
	assert.Equal(t, "sqlite", cfg.Store.Type)
	assert.Equal(t, uint(5), cfg.Store.CacheExpiration)
	assert.True(t, cfg.Mqtt.Enabled)
	assert.Equal(t, "tcp://broker:1883", cfg.Mqtt.Broker)
	assert.Equal(t, "factorymon.log", cfg.Log.Filename, "незаданное значение берётся по умолчанию")
}

func TestLoad_Env(t *testing.T) {
	require.NoError(t, os.Setenv("FACTORYMON_HTTP_PORT", "7070"))
	defer os.Unsetenv("FACTORYMON_HTTP_PORT")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, uint(7070), cfg.Http.Port)
}
