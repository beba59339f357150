package config

import (
	"encoding/json"
	"os"
)

// DefaultConfig returns a normalized copy of the built-in defaults. Cmds
// fall back to it when no config file exists yet.
func DefaultConfig() Config {
	cfg := defaultConfig()
	applyDefaults(&cfg)
	return cfg
}

// LoadConfigFile reads and normalizes a config file without writing it
// back, unlike Manager. A missing file surfaces as the os.ReadFile error
// so callers can distinguish absent from malformed.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)
	return cfg, nil
}
