// Package prometheus exposes the Prometheus HTTP API as MCP tools.
//
// Query tools:
//   - instant-query: evaluate a PromQL expression at a single instant
//   - range-query: evaluate a PromQL expression over a time range
//
// Discovery tools:
//   - get-series: find series matching a selector
//   - get-label-values: list the values of a label
//   - get-metadata: metric type, help and unit
//
// Operational tools:
//   - get-targets: active and dropped scrape targets
//   - get-alerts: currently active alerts
//   - get-rules: alerting and recording rule groups
//   - get-status: config, flags, runtime, buildinfo or tsdb status
//
// Every tool issues exactly one GET against /api/v1 through the shared
// Client and renders the JSON envelope as plain text. A failed request yields
// a fixed per-tool message, an upstream error envelope yields "Error: <msg>",
// and an empty payload yields a per-tool "no data" message.
//
// Example tool usage:
//
//	instant-query: {"query": "up", "time": "2023-01-01T00:00:00Z"}
//	range-query: {"query": "rate(http_requests_total[5m])", "start": "2023-01-01T00:00:00Z", "end": "2023-01-01T01:00:00Z", "step": "1m"}
//	get-label-values: {"labelName": "job"}
//	get-status: {"statusType": "buildinfo"}
package prometheus
