package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/everest-dex/everest-deploy/internal/domain/config"
	"github.com/spf13/viper"
)

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		projectRoot, err = FindProjectRoot()
		if err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:    projectRoot,
		Debug:          v.GetBool("debug"),
		NonInteractive: v.GetBool("non_interactive"),
		JSON:           v.GetBool("json"),
		Timeout:        v.GetDuration("timeout"),
		DryRun:         v.GetBool("dry_run"),
		Confirmation: config.ConfirmationConfig{
			Timeout:        v.GetDuration("confirmation.timeout"),
			InitialBackoff: v.GetDuration("confirmation.initial_backoff"),
			MaxBackoff:     v.GetDuration("confirmation.max_backoff"),
		},
	}

	project, err := LoadProjectConfig(projectRoot)
	if err != nil {
		return nil, err
	}
	if key := v.GetString("private_key"); key != "" {
		project.Deployer.PrivateKey = key
	}
	cfg.Project = project

	if networkName := v.GetString("network"); networkName != "" {
		network, err := NewNetworkResolver(project).Resolve(networkName)
		if err != nil {
			return nil, err
		}
		cfg.Network = network

		params, err := LoadNetworkParameters(ProjectPath(projectRoot, project.Paths.Parameters), networkName)
		switch {
		case err == nil:
			cfg.Parameters = params
		case errors.Is(err, os.ErrNotExist):
			// migration commands run without parameters
		default:
			return nil, err
		}
	}

	return cfg, nil
}

// FindProjectRoot walks up from current directory to find everest.toml
func FindProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, ProjectFile)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an everest project (%s not found)", ProjectFile)
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string) *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("EVEREST")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	v.SetDefault("timeout", "30m")
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("confirmation.timeout", 2*time.Minute)
	v.SetDefault("confirmation.initial_backoff", 100*time.Millisecond)
	v.SetDefault("confirmation.max_backoff", 2*time.Second)

	return v
}

// ProvideNetworkResolver creates a NetworkResolver for Wire dependency injection
func ProvideNetworkResolver(cfg *config.RuntimeConfig) *NetworkResolver {
	return NewNetworkResolver(cfg.Project)
}
