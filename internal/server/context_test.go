package server

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(values map[string]string) func(string) string {
	return func(key string) string {
		return values[key]
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNewServerContextDefaults(t *testing.T) {
	sc, err := NewServerContext(context.Background(), withGetenv(envMap(nil)))
	require.NoError(t, err)
	defer sc.Shutdown()

	assert.Equal(t, DefaultPrometheusURL, sc.PrometheusConfig().URL)
	assert.Equal(t, "dev", sc.Version())
	assert.False(t, sc.IsDebugMode())
	assert.NotNil(t, sc.Logger())
}

func TestNewServerContextConfigPrecedence(t *testing.T) {
	path := writeConfig(t, `
prometheus:
  url: http://from-file:9090/
  username: file-user
  password: file-pass
  orgID: file-org
`)

	tests := []struct {
		name     string
		env      map[string]string
		opts     []ServerOption
		expected PrometheusConfig
	}{
		{
			name: "file only",
			opts: []ServerOption{WithConfigFile(path)},
			expected: PrometheusConfig{
				URL:      "http://from-file:9090",
				Username: "file-user",
				Password: "file-pass",
				OrgID:    "file-org",
			},
		},
		{
			name: "environment overrides file",
			env: map[string]string{
				"PROMETHEUS_URL":   "http://from-env:9090",
				"PROMETHEUS_TOKEN": "env-token",
			},
			opts: []ServerOption{WithConfigFile(path)},
			expected: PrometheusConfig{
				URL:      "http://from-env:9090",
				Username: "file-user",
				Password: "file-pass",
				Token:    "env-token",
				OrgID:    "file-org",
			},
		},
		{
			name: "explicit config wins",
			env:  map[string]string{"PROMETHEUS_URL": "http://from-env:9090"},
			opts: []ServerOption{
				WithConfigFile(path),
				WithPrometheusConfig(PrometheusConfig{URL: "http://explicit:9090"}),
			},
			expected: PrometheusConfig{URL: "http://explicit:9090"},
		},
		{
			name:     "explicit config without URL gets the default",
			opts:     []ServerOption{WithPrometheusConfig(PrometheusConfig{Token: "t"})},
			expected: PrometheusConfig{URL: DefaultPrometheusURL, Token: "t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := append([]ServerOption{withGetenv(envMap(tt.env))}, tt.opts...)
			sc, err := NewServerContext(context.Background(), opts...)
			require.NoError(t, err)
			defer sc.Shutdown()

			assert.Equal(t, tt.expected, sc.PrometheusConfig())
		})
	}
}

func TestNewServerContextBadConfigFile(t *testing.T) {
	_, err := NewServerContext(context.Background(),
		withGetenv(envMap(nil)),
		WithConfigFile(filepath.Join(t.TempDir(), "missing.yaml")),
	)
	require.Error(t, err)

	path := writeConfig(t, "prometheus: [not, a, mapping")
	_, err = NewServerContext(context.Background(),
		withGetenv(envMap(nil)),
		WithConfigFile(path),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestShutdownCancelsContext(t *testing.T) {
	sc, err := NewServerContext(context.Background(), withGetenv(envMap(nil)))
	require.NoError(t, err)

	require.NoError(t, sc.Shutdown())
	<-sc.Context().Done()

	// A second shutdown is a no-op.
	require.NoError(t, sc.Shutdown())
}
