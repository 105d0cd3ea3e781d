package server

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPrometheusURL is used when neither the config file nor the
// environment names a Prometheus server.
const DefaultPrometheusURL = "http://localhost:9090"

// PrometheusConfig holds the Prometheus server configuration
type PrometheusConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Token    string `yaml:"token"`
	OrgID    string `yaml:"orgID"`
}

// fileConfig is the layout of the optional YAML config file.
type fileConfig struct {
	Prometheus PrometheusConfig `yaml:"prometheus"`
}

// LoadConfigFile reads the Prometheus section of a YAML config file.
func LoadConfigFile(path string) (PrometheusConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PrometheusConfig{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return PrometheusConfig{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg.Prometheus, nil
}

// ApplyEnv overlays non-empty PROMETHEUS_* environment variables on top of c.
func (c PrometheusConfig) ApplyEnv(getenv func(string) string) PrometheusConfig {
	overlay := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	overlay(&c.URL, "PROMETHEUS_URL")
	overlay(&c.Username, "PROMETHEUS_USERNAME")
	overlay(&c.Password, "PROMETHEUS_PASSWORD")
	overlay(&c.Token, "PROMETHEUS_TOKEN")
	overlay(&c.OrgID, "PROMETHEUS_ORGID")

	return c
}

// withDefaults fills in values the user left empty.
func (c PrometheusConfig) withDefaults() PrometheusConfig {
	if c.URL == "" {
		c.URL = DefaultPrometheusURL
	}
	c.URL = strings.TrimRight(c.URL, "/")
	return c
}
