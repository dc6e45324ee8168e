package config

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gopkg.in/yaml.v3"
)

// EnvPath names the environment variable consulted when Load gets an empty path.
const EnvPath = "TERRAIN_CONFIG"

// Load reads a YAML file on top of Default and validates the result.
// If path is empty, TERRAIN_CONFIG is tried; with neither set the defaults are returned.
// A seed of 0 in the file is replaced with a random one.
func Load(path string) (Terrain, error) {
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Terrain{}, fmt.Errorf("read terrain config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Terrain{}, fmt.Errorf("parse terrain config %s: %w", path, err)
	}
	for cfg.Seed == 0 {
		cfg.Seed = rand.Int64()
	}
	if err := cfg.Validate(); err != nil {
		return Terrain{}, err
	}
	return cfg, nil
}
