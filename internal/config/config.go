// Package config loads the optional runtime configuration file. The file
// uses INI syntax; every setting has a working default so a missing file is
// not an error.
package config

import (
	"fmt"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultFileName is looked up in the working directory when no explicit
// path is given.
const DefaultFileName = "sakura.ini"

// Config holds the runtime settings a host can tune without flags.
type Config struct {
	// Workers is the size of the execution worker pool.
	Workers int
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// LogFormat is text or json.
	LogFormat string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Workers:   6,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads the configuration file at path. An empty path tries the
// default file name; a missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFileName
	}
	if _, err := os.Stat(path); err != nil {
		if explicit {
			return nil, fmt.Errorf("config file %s not readable: %w", path, err)
		}
		return cfg, nil
	}

	file, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	runtime := file.Section("runtime")
	if key, err := runtime.GetKey("workers"); err == nil {
		workers, err := key.Int()
		if err != nil || workers < 1 {
			return nil, fmt.Errorf("config file %s: runtime.workers must be a positive integer", path)
		}
		cfg.Workers = workers
	}

	logSec := file.Section("log")
	if key, err := logSec.GetKey("level"); err == nil {
		cfg.LogLevel = key.String()
	}
	if key, err := logSec.GetKey("format"); err == nil {
		cfg.LogFormat = key.String()
	}

	return cfg, nil
}
