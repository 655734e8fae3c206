package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// For mocking in tests
var osUserHomeDir = os.UserHomeDir

const (
	userConfigDir  = ".config/mcp-kusto"
	configFileName = "config.yaml"

	// EnvConfigFile overrides the configuration file location.
	EnvConfigFile = "MCP_KUSTO_CONFIG"

	// Environment fallback for a single-cluster setup without a config file.
	EnvClusterURL  = "KUSTO_CLUSTER_URL"
	EnvClusterName = "KUSTO_CLUSTER_NAME"
	EnvDatabase    = "KUSTO_DATABASE"
)

// Load builds the configuration by layering, in order: defaults, the
// config file (explicit path, $MCP_KUSTO_CONFIG, or the user config
// directory), and the KUSTO_* environment fallback. The result is
// validated before being returned.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	filePath, err := resolveConfigPath(path)
	if err != nil {
		return nil, err
	}
	if filePath != "" {
		if err := loadFromFile(filePath, cfg); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", filePath, err)
		}
	}

	applyEnvFallback(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveConfigPath picks the configuration file to read. An explicitly
// given path must exist; the discovered locations are optional.
func resolveConfigPath(path string) (string, error) {
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("config file %s: %w", path, err)
		}
		return path, nil
	}

	if envPath := os.Getenv(EnvConfigFile); envPath != "" {
		if _, err := os.Stat(envPath); err != nil {
			return "", fmt.Errorf("config file %s (from %s): %w", envPath, EnvConfigFile, err)
		}
		return envPath, nil
	}

	homeDir, err := osUserHomeDir()
	if err != nil {
		// User config is optional; without a home directory the env
		// fallback may still produce a usable configuration.
		return "", nil
	}
	userPath := filepath.Join(homeDir, userConfigDir, configFileName)
	if _, err := os.Stat(userPath); err != nil {
		return "", nil
	}
	return userPath, nil
}

func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}
	if cfg.Clusters == nil {
		cfg.Clusters = make(map[string]ClusterConfig)
	}
	return nil
}

// applyEnvFallback adds a cluster from KUSTO_CLUSTER_URL when set,
// mirroring the single-cluster quickstart without a config file.
func applyEnvFallback(cfg *Config) {
	clusterURL := os.Getenv(EnvClusterURL)
	if clusterURL == "" {
		return
	}
	name := os.Getenv(EnvClusterName)
	if name == "" {
		name = "default"
	}
	database := os.Getenv(EnvDatabase)
	if database == "" {
		database = "Samples"
	}
	cfg.Clusters[name] = ClusterConfig{URL: clusterURL, Database: database}
}
