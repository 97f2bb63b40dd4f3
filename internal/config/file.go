package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// LoadFile overlays a YAML file onto cfg. Keys absent from the file keep
// their current values.
func LoadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, cfg)
}

// Parse overlays YAML bytes onto cfg.
func Parse(data []byte, cfg *AppConfig) error {
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// LoadDotEnv loads the first .env file found among paths into the process
// environment. Missing files are not an error.
func LoadDotEnv(paths ...string) (string, bool) {
	for _, p := range paths {
		if err := godotenv.Load(p); err == nil {
			return p, true
		}
	}
	return "", false
}
