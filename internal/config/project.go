package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/joho/godotenv"
)

// ProjectFile is the name of the project configuration file
const ProjectFile = "everest.toml"

// loadEnvFiles loads .env and .env.local from the project root. Variables
// already set in the environment win.
func loadEnvFiles(projectRoot string) {
	for _, name := range []string{".env", ".env.local"} {
		envFile := filepath.Join(projectRoot, name)
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: Failed to load %s: %v\n", envFile, err)
			}
		}
	}
}

// LoadProjectConfig parses everest.toml and expands ${VAR} references
func LoadProjectConfig(projectRoot string) (*config.ProjectConfig, error) {
	loadEnvFiles(projectRoot)

	var cfg config.ProjectConfig
	path := filepath.Join(projectRoot, ProjectFile)
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", ProjectFile, err)
	}

	if cfg.Networks == nil {
		cfg.Networks = make(map[string]config.NetworkEntry)
	}
	for name, entry := range cfg.Networks {
		entry.RPCURL = os.ExpandEnv(entry.RPCURL)
		cfg.Networks[name] = entry
	}

	defaults := config.DefaultPaths()
	if cfg.Paths.Artifacts == "" {
		cfg.Paths.Artifacts = defaults.Artifacts
	}
	if cfg.Paths.Addresses == "" {
		cfg.Paths.Addresses = defaults.Addresses
	}
	if cfg.Paths.Parameters == "" {
		cfg.Paths.Parameters = defaults.Parameters
	}

	cfg.Deployer.PrivateKey = os.ExpandEnv(cfg.Deployer.PrivateKey)
	return &cfg, nil
}

// ProjectPath resolves a configured path against the project root
func ProjectPath(projectRoot, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(projectRoot, path)
}
