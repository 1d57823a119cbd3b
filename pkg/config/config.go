// Package config loads the application configuration from a TOML file,
// layering defaults under whatever the file sets. A missing file is not an
// error: everything runs on defaults out of the box.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/fschmidt/virtualcv/pkg/errors"
)

// DefaultPath is the config location searched when none is given.
const DefaultPath = "~/.config/virtualcv/config.toml"

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Mongo   MongoConfig   `toml:"mongo"`
	Redis   RedisConfig   `toml:"redis"`
	Auth    AuthConfig    `toml:"auth"`
	Content ContentConfig `toml:"content"`
	Cache   CacheConfig   `toml:"cache"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string   `toml:"addr"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// MongoConfig configures the document store. An empty URI selects the
// in-memory store.
type MongoConfig struct {
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// RedisConfig configures session and cache storage. An empty address
// selects in-memory backends.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

// AuthConfig configures editing access.
type AuthConfig struct {
	// WhitelistEmails are the addresses allowed to log in and edit.
	WhitelistEmails []string `toml:"whitelist_emails"`

	// SessionTTL bounds issued sessions, e.g. "24h".
	SessionTTL duration `toml:"session_ttl"`
}

// ContentConfig points at local CV content.
type ContentConfig struct {
	// Path is a JSON file holding the full node set, used instead of the
	// API when rendering offline.
	Path string `toml:"path"`
}

// CacheConfig configures the on-disk response cache.
type CacheConfig struct {
	Dir string   `toml:"dir"`
	TTL duration `toml:"ttl"`
}

// duration wraps time.Duration so TOML files can say "5m" or "24h".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the configuration used when no file overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Mongo: MongoConfig{
			Database: "virtualcv",
		},
		Auth: AuthConfig{
			SessionTTL: duration{24 * time.Hour},
		},
		Cache: CacheConfig{
			TTL: duration{5 * time.Minute},
		},
	}
}

// Load reads the config file at path, falling back to DefaultPath when path
// is empty. A missing file yields Default() without error; a malformed file
// is reported.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	path = expandHome(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "could not read config file")
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "could not parse config file")
	}
	return cfg, nil
}

// SessionTTL returns the configured session lifetime.
func (c Config) SessionTTL() time.Duration { return c.Auth.SessionTTL.Duration }

// CacheTTL returns the configured response cache lifetime.
func (c Config) CacheTTL() time.Duration { return c.Cache.TTL.Duration }

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
