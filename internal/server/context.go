package server

import (
	"context"
	"os"
	"sync"
)

// ServerContext carries the resolved configuration and the lifetime of one
// server process. Fields are set once by NewServerContext.
type ServerContext struct {
	ctx          context.Context
	cancel       context.CancelFunc
	shutdownOnce sync.Once

	debugMode  bool
	logger     Logger
	version    string
	configFile string

	prometheusConfig    PrometheusConfig
	prometheusConfigSet bool
	getenv              func(string) string
}

// ServerOption is a functional option for configuring ServerContext
type ServerOption func(*ServerContext)

// WithDebugMode sets whether debug logging is enabled
func WithDebugMode(enabled bool) ServerOption {
	return func(sc *ServerContext) {
		sc.debugMode = enabled
	}
}

// WithLogger sets the logger for the server context
func WithLogger(logger Logger) ServerOption {
	return func(sc *ServerContext) {
		sc.logger = logger
	}
}

// WithVersion sets the version reported to MCP clients and to Prometheus.
func WithVersion(version string) ServerOption {
	return func(sc *ServerContext) {
		sc.version = version
	}
}

// WithConfigFile sets a YAML file to read the Prometheus configuration from.
// Environment variables still take precedence over the file.
func WithConfigFile(path string) ServerOption {
	return func(sc *ServerContext) {
		sc.configFile = path
	}
}

// WithPrometheusConfig sets the Prometheus configuration. It bypasses the
// config file and the environment.
func WithPrometheusConfig(config PrometheusConfig) ServerOption {
	return func(sc *ServerContext) {
		sc.prometheusConfig = config
		sc.prometheusConfigSet = true
	}
}

// withGetenv replaces os.Getenv, for tests.
func withGetenv(getenv func(string) string) ServerOption {
	return func(sc *ServerContext) {
		sc.getenv = getenv
	}
}

// NewServerContext applies opts and resolves the Prometheus configuration:
// an explicit WithPrometheusConfig wins, otherwise the config file (if any)
// is loaded and PROMETHEUS_* variables are laid over it.
func NewServerContext(ctx context.Context, opts ...ServerOption) (*ServerContext, error) {
	serverCtx, cancel := context.WithCancel(ctx)

	sc := &ServerContext{
		ctx:     serverCtx,
		cancel:  cancel,
		version: "dev",
		getenv:  os.Getenv,
	}

	for _, opt := range opts {
		opt(sc)
	}

	if sc.logger == nil {
		sc.logger = &noopLogger{}
	}

	if !sc.prometheusConfigSet {
		var config PrometheusConfig
		if sc.configFile != "" {
			fromFile, err := LoadConfigFile(sc.configFile)
			if err != nil {
				cancel()
				return nil, err
			}
			config = fromFile
		}
		sc.prometheusConfig = config.ApplyEnv(sc.getenv)
	}
	sc.prometheusConfig = sc.prometheusConfig.withDefaults()

	return sc, nil
}

// Context is cancelled by Shutdown or when the parent context ends.
func (sc *ServerContext) Context() context.Context { return sc.ctx }

func (sc *ServerContext) IsDebugMode() bool { return sc.debugMode }

func (sc *ServerContext) Logger() Logger { return sc.logger }

// Version is reported to MCP clients and in the User-Agent sent to Prometheus.
func (sc *ServerContext) Version() string { return sc.version }

// PrometheusConfig returns the resolved configuration. It never changes
// after NewServerContext returns.
func (sc *ServerContext) PrometheusConfig() PrometheusConfig { return sc.prometheusConfig }

// Shutdown cancels the server context. Repeated calls are no-ops.
func (sc *ServerContext) Shutdown() error {
	sc.shutdownOnce.Do(sc.cancel)
	return nil
}
