// Package config loads and defaults server-config.yml.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds every recognised server-config.yml key. It is immutable
// after Load returns.
type Config struct {
	Addr         string `yaml:"addr"`
	Port         uint16 `yaml:"port"`
	HeartbeatURL string `yaml:"heartbeat_url"`
	Name         string `yaml:"name"`
	MOTD         string `yaml:"motd"`
	Public       bool   `yaml:"public"`
	DoUserAuth   bool   `yaml:"do_user_auth"`
	MaxPlayers   uint32 `yaml:"max_players"`
	DefaultMap   string `yaml:"default_map"`

	// Ambient, not part of the distilled spec's recognised keys, but
	// needed to configure the structured logger.
	LogLevel string `yaml:"log_level"`
	LogFile  string `yaml:"log_file"`
}

// Default returns the documented default configuration.
func Default() Config {
	return Config{
		Addr:         "0.0.0.0",
		Port:         25565,
		HeartbeatURL: "https://www.classicube.net/server/heartbeat",
		Name:         "A classic server",
		MOTD:         "dandelion powered",
		Public:       true,
		DoUserAuth:   true,
		MaxPlayers:   64,
		DefaultMap:   "default",
		LogLevel:     "info",
		LogFile:      "dandelion-classic.log",
	}
}

// Load reads path as YAML. If path does not exist, the defaults are
// written to it and returned. Keys absent from an existing file keep
// their default value; a malformed file is a boot-fatal error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := Save(path, &cfg); err != nil {
			return nil, err
		}
		return &cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
