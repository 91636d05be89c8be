package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/game.yaml
var defaultGameYAML []byte

// LoadGame loads the game configuration.
// Search order: customPath -> ./configs/game.yaml -> embedded default
func LoadGame(customPath string) (GameConfig, error) {
	var cfg GameConfig

	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, cfg.Validate()
	}

	if data, err := os.ReadFile("configs/game.yaml"); err == nil {
		var local GameConfig
		if err := yaml.Unmarshal(data, &local); err == nil && local.Validate() == nil {
			return local, nil
		}
	}

	return Default()
}

// Default parses the embedded configuration.
func Default() (GameConfig, error) {
	var cfg GameConfig
	if err := yaml.Unmarshal(defaultGameYAML, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse embedded game config: %w", err)
	}
	return cfg, cfg.Validate()
}
