// internal/config/config.go
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

type Config struct {
	Storage struct {
		Backend   string `json:"backend"`    // file, badger
		Compress  bool   `json:"compress"`   // zstd at rest
		CacheSize int    `json:"cache_size"` // objects kept in memory
	} `json:"storage"`

	LogLevel string `json:"log_level"` // debug, info, warn, error
}

func Default() *Config {
	var config Config
	config.Storage.Backend = BackendFile
	config.Storage.CacheSize = 256
	config.LogLevel = "warn"
	return &config
}

// Load reads a JSON config file over the defaults. A missing file is not an
// error when optional is set.
func Load(path string, optional bool) (*Config, error) {
	config := Default()

	if path != "" {
		file, err := os.Open(path)
		switch {
		case err == nil:
			defer file.Close()
			if err := json.NewDecoder(file).Decode(config); err != nil {
				return nil, fmt.Errorf("decoding config %s: %w", path, err)
			}
		case optional && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, err
		}
	}

	if level := os.Getenv("BAT_LOG_LEVEL"); level != "" {
		config.LogLevel = level
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile, BackendBadger:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.Storage.CacheSize)
	}
	return nil
}
