package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, BackendFile, cfg.Store.Backend)
	assert.Equal(t, ".skillgraph/graphs", cfg.Store.Dir)
	assert.Equal(t, 10000, cfg.Run.MaxTicks)
	assert.Zero(t, cfg.Run.Interval)
	assert.Equal(t, 8080, cfg.HTTP.Port)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "skillgraph.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
store:
  backend: redis
  redis_addr: "cache:6379"
  redis_ttl: 1h
run:
  interval: 16ms
`), 0o644))

	t.Setenv("SKILLGRAPH_LOG_LEVEL", "warn")
	t.Setenv("SKILLGRAPH_RUN_MAX_TICKS", "25")
	t.Setenv("SKILLGRAPH_STORE_REDIS_PREFIX", "test:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level, "env beats file")
	assert.Equal(t, BackendRedis, cfg.Store.Backend)
	assert.Equal(t, "cache:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "test:", cfg.Store.RedisPrefix)
	assert.Equal(t, time.Hour, cfg.Store.RedisTTL)
	assert.Equal(t, 25, cfg.Run.MaxTicks)
	assert.Equal(t, 16*time.Millisecond, cfg.Run.Interval)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"Unknown Backend", func(c *Config) { c.Store.Backend = "floppy" }},
		{"Postgres Without DSN", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"Negative Ticks", func(c *Config) { c.Run.MaxTicks = -1 }},
		{"Bad Port", func(c *Config) { c.HTTP.Port = 70000 }},
		{"Short Key", func(c *Config) { c.Store.EncryptionKey = "c2hvcnQ=" }},
		{"Bad Fallback", func(c *Config) {
			c.Store.EncryptionKey = key32
			c.Store.FallbackKeys = []string{"%%%"}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("")
			require.NoError(t, err)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

// key32 is base64 of 32 zero bytes.
const key32 = "AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA="

func TestStoreKeys(t *testing.T) {
	active, fallback, err := StoreConfig{}.Keys()
	require.NoError(t, err)
	assert.Nil(t, active)
	assert.Nil(t, fallback)

	active, fallback, err = StoreConfig{EncryptionKey: key32, FallbackKeys: []string{key32}}.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	assert.Len(t, fallback, 1)
}

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "store.redis_addr", envKey("SKILLGRAPH_STORE_REDIS_ADDR"))
	assert.Equal(t, "log.level", envKey("SKILLGRAPH_LOG_LEVEL"))
}
