package config

import (
	"fmt"
	"os"

	"mcpi/pkg/logging"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads and validates the server configuration from configPath.
// Defaults are applied first, then the file is unmarshalled over them, then
// the result is validated. Any failure here aborts startup.
func LoadConfig(configPath string) (ServerConfig, error) {
	cfg := GetDefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return ServerConfig{}, NewStartupError("", ReasonMissingFile,
			fmt.Errorf("reading %s: %w", configPath, err))
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, NewStartupError("", ReasonMalformedData,
			fmt.Errorf("parsing %s: %w", configPath, err))
	}
	logging.Info("ConfigLoader", "Loaded configuration from %s", configPath)

	if err := Validate(&cfg); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}
