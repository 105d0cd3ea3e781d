// Package server provides the core server infrastructure for the Prometheus MCP server.
//
// This package contains:
// - ServerContext: Configuration and shared resources management
// - Logger interface: Structured logging abstraction backed by logr
// - Configuration loading: defaults, an optional YAML file and PROMETHEUS_* variables
//
// Configuration precedence, lowest first:
//
//	default URL (http://localhost:9090) < config file < environment < WithPrometheusConfig
//
// A config file looks like:
//
//	prometheus:
//	  url: https://prometheus.example.com
//	  token: s3cr3t
//	  orgID: tenant-a
//
// Example usage:
//
//	ctx := context.Background()
//	serverContext, err := server.NewServerContext(ctx,
//	    server.WithDebugMode(true),
//	    server.WithLogger(server.NewLogger(server.NewStderrLogr(true))),
//	    server.WithConfigFile("/etc/prometheus-mcp/config.yaml"),
//	)
package server
