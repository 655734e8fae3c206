package config

import (
	"fmt"
	"net/url"
	"sort"
	"time"
)

// ClusterConfig describes one named Kusto cluster endpoint.
type ClusterConfig struct {
	// URL is the cluster endpoint, e.g. https://help.kusto.windows.net.
	URL string `yaml:"url"`
	// Database is the default database for operations against this cluster.
	Database string `yaml:"database"`
	// DefaultLimit overrides the global row limit for this cluster (optional).
	DefaultLimit int `yaml:"defaultLimit,omitempty"`
	// TimeoutSeconds overrides the global query timeout for this cluster (optional).
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty"`
}

// LoggingConfig controls the structured log output.
// Stdout belongs to the MCP transport in stdio mode, so logs go to a file.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file,omitempty"`
}

// Config is the top-level mcp-kusto configuration, loaded once at startup
// and read-only afterwards.
type Config struct {
	// Clusters maps a logical cluster name to its endpoint configuration.
	Clusters map[string]ClusterConfig `yaml:"clusters"`
	// DefaultCluster is used when a tool call does not name a cluster.
	// Empty means the first configured cluster name in sorted order.
	DefaultCluster string `yaml:"defaultCluster,omitempty"`
	// DefaultLimit is the maximum number of rows a query may return.
	// Caller-supplied limits above this value are clamped down.
	DefaultLimit int `yaml:"defaultLimit"`
	// TimeoutSeconds bounds the execution time of a single query.
	TimeoutSeconds int `yaml:"timeoutSeconds"`
	// MaxPayloadRows is a defensive ceiling on shaped payload size,
	// independent of the per-query limit.
	MaxPayloadRows int `yaml:"maxPayloadRows"`

	Logging LoggingConfig `yaml:"logging"`
}

// Default values applied when the configuration file leaves them unset.
const (
	DefaultLimit          = 1000
	DefaultTimeoutSeconds = 60
	DefaultMaxPayloadRows = 5000
	DefaultLogLevel       = "info"
)

// NewDefaultConfig returns a configuration with defaults and no clusters.
func NewDefaultConfig() *Config {
	return &Config{
		Clusters:       make(map[string]ClusterConfig),
		DefaultLimit:   DefaultLimit,
		TimeoutSeconds: DefaultTimeoutSeconds,
		MaxPayloadRows: DefaultMaxPayloadRows,
		Logging:        LoggingConfig{Level: DefaultLogLevel},
	}
}

// ClusterNames returns the configured cluster names in sorted order.
func (c *Config) ClusterNames() []string {
	names := make([]string, 0, len(c.Clusters))
	for name := range c.Clusters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ResolveDefaultCluster returns the cluster name used when a request
// does not specify one.
func (c *Config) ResolveDefaultCluster() string {
	if c.DefaultCluster != "" {
		return c.DefaultCluster
	}
	names := c.ClusterNames()
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

// LimitFor returns the effective maximum row limit for the named cluster.
func (c *Config) LimitFor(cluster string) int {
	if cc, ok := c.Clusters[cluster]; ok && cc.DefaultLimit > 0 {
		return cc.DefaultLimit
	}
	return c.DefaultLimit
}

// TimeoutFor returns the effective query timeout for the named cluster.
func (c *Config) TimeoutFor(cluster string) time.Duration {
	if cc, ok := c.Clusters[cluster]; ok && cc.TimeoutSeconds > 0 {
		return time.Duration(cc.TimeoutSeconds) * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	if len(c.Clusters) == 0 {
		return fmt.Errorf("no clusters configured")
	}
	for name, cc := range c.Clusters {
		if cc.URL == "" {
			return fmt.Errorf("cluster %q: url is required", name)
		}
		u, err := url.Parse(cc.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("cluster %q: invalid url %q", name, cc.URL)
		}
		if cc.Database == "" {
			return fmt.Errorf("cluster %q: database is required", name)
		}
	}
	if c.DefaultCluster != "" {
		if _, ok := c.Clusters[c.DefaultCluster]; !ok {
			return fmt.Errorf("defaultCluster %q is not a configured cluster", c.DefaultCluster)
		}
	}
	if c.DefaultLimit <= 0 {
		return fmt.Errorf("defaultLimit must be positive, got %d", c.DefaultLimit)
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeoutSeconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.MaxPayloadRows <= 0 {
		return fmt.Errorf("maxPayloadRows must be positive, got %d", c.MaxPayloadRows)
	}
	return nil
}
