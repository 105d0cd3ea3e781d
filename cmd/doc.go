// Package cmd provides the command-line interface for the Prometheus MCP server.
//
// The serve command starts the MCP server over one of the supported
// transports (stdio, sse, streamable-http) and registers the Prometheus
// tools. The version command prints the build version.
//
// Configuration is read from an optional YAML file (--config) and then
// overridden by environment variables:
//   - PROMETHEUS_URL: Prometheus server URL (default http://localhost:9090)
//   - PROMETHEUS_USERNAME: Optional basic auth username
//   - PROMETHEUS_PASSWORD: Optional basic auth password
//   - PROMETHEUS_TOKEN: Optional bearer token for authentication
//   - PROMETHEUS_ORGID: Optional organization ID for multi-tenant setups
//   - OTEL_EXPORTER_OTLP_ENDPOINT: Enables OTLP trace export when set
//
// Example usage:
//
//	prometheus-mcp serve --transport stdio
//	prometheus-mcp serve --transport sse --http-addr :8080
//	prometheus-mcp serve --config /etc/prometheus-mcp.yaml
package cmd
