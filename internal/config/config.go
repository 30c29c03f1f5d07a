// Package config loads runtime settings from defaults, an optional YAML
// file and SKILLGRAPH_ environment variables, in that order of precedence.
package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKILLGRAPH_"

// Store backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	Log   LogConfig   `koanf:"log"`
	Store StoreConfig `koanf:"store"`
	Run   RunConfig   `koanf:"run"`
	HTTP  HTTPConfig  `koanf:"http"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"` // text, json
}

type StoreConfig struct {
	Backend     string        `koanf:"backend"`
	Dir         string        `koanf:"dir"`
	Format      string        `koanf:"format"` // json, yaml (file backend)
	RedisAddr   string        `koanf:"redis_addr"`
	RedisPrefix string        `koanf:"redis_prefix"`
	RedisTTL    time.Duration `koanf:"redis_ttl"`
	SQLitePath  string        `koanf:"sqlite_path"`
	PostgresDSN string        `koanf:"postgres_dsn"`

	// EncryptionKey is a base64 AES-256 key; when set documents are sealed at rest.
	EncryptionKey string   `koanf:"encryption_key"`
	FallbackKeys  []string `koanf:"fallback_keys"`
	// MaskPatterns are regular expressions over parameter names and inline
	// value keys whose values are masked before saving.
	MaskPatterns []string `koanf:"mask_patterns"`
}

// Keys decodes the encryption keys. Both results are nil when encryption
// is off.
func (s StoreConfig) Keys() ([]byte, [][]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	active, err := decodeKey(s.EncryptionKey)
	if err != nil {
		return nil, nil, fmt.Errorf("store.encryption_key: %w", err)
	}
	fallback := make([][]byte, 0, len(s.FallbackKeys))
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("store.fallback_keys[%d]: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

type RunConfig struct {
	MaxTicks int           `koanf:"max_ticks"`
	Interval time.Duration `koanf:"interval"`
}

type HTTPConfig struct {
	Port int `koanf:"port"`
}

var defaults = map[string]any{
	"log.level":          "info",
	"log.format":         "text",
	"store.backend":      BackendFile,
	"store.dir":          ".skillgraph/graphs",
	"store.format":       "json",
	"store.redis_addr":   "localhost:6379",
	"store.redis_prefix": "skillgraph:graph:",
	"store.redis_ttl":    "0s",
	"store.sqlite_path":  ".skillgraph/graphs.db",
	"store.postgres_dsn": "",
	"run.max_ticks":      10000,
	"run.interval":       "0s",
	"http.port":          8080,
}

// Load reads the configuration. An empty path skips the file layer.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	for key, v := range defaults {
		if err := k.Set(key, v); err != nil {
			return nil, err
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps SKILLGRAPH_STORE_REDIS_ADDR to store.redis_addr: the first
// segment names the section, the rest is the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

// Validate rejects settings no component can act on.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendSQLite, BackendPostgres:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}
	if c.Store.Backend == BackendPostgres && c.Store.PostgresDSN == "" {
		return fmt.Errorf("store.postgres_dsn is required for the postgres backend")
	}
	if _, _, err := c.Store.Keys(); err != nil {
		return err
	}
	if c.Run.MaxTicks < 0 {
		return fmt.Errorf("run.max_ticks must not be negative")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port %d out of range", c.HTTP.Port)
	}
	return nil
}
