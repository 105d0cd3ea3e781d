package prometheus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/giantswarm/prometheus-mcp/internal/server"
)

// Tool names exposed over MCP.
const (
	ToolInstantQuery   = "instant-query"
	ToolRangeQuery     = "range-query"
	ToolGetSeries      = "get-series"
	ToolGetLabelValues = "get-label-values"
	ToolGetMetadata    = "get-metadata"
	ToolGetTargets     = "get-targets"
	ToolGetAlerts      = "get-alerts"
	ToolGetRules       = "get-rules"
	ToolGetStatus      = "get-status"
)

// handlerFunc is the shape shared by every tool handler in this package.
type handlerFunc func(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error)

func bind(h handlerFunc, client Querier, logger server.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return h(ctx, request, client, logger)
	}
}

// RegisterPrometheusTools registers Prometheus-related tools with the MCP server
func RegisterPrometheusTools(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	client, err := NewClient(sc.PrometheusConfig(), sc.Version(), sc.Logger())
	if err != nil {
		return err
	}

	s.AddTools(Tools(client, sc.Logger())...)
	return nil
}

// Tools returns the full tool table. It is built once at startup and never
// modified; handlers keep no state between calls.
func Tools(client Querier, logger server.Logger) []mcpserver.ServerTool {
	statusValues := make([]string, 0, len(statusTypes))
	for _, t := range statusTypes {
		statusValues = append(statusValues, string(t))
	}

	return []mcpserver.ServerTool{
		{
			Tool: mcp.NewTool(ToolInstantQuery,
				mcp.WithDescription("Execute a PromQL instant query against Prometheus"),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("PromQL query string"),
				),
				mcp.WithString("time",
					mcp.Description("Optional RFC3339 or Unix timestamp (default: current time)"),
				),
				mcp.WithString("timeout",
					mcp.Description("Optional evaluation timeout (e.g., '30s')"),
				),
			),
			Handler: bind(handleInstantQuery, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolRangeQuery,
				mcp.WithDescription("Execute a PromQL range query with start time, end time, and step interval"),
				mcp.WithString("query",
					mcp.Required(),
					mcp.Description("PromQL query string"),
				),
				mcp.WithString("start",
					mcp.Required(),
					mcp.Description("Start time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("end",
					mcp.Required(),
					mcp.Description("End time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("step",
					mcp.Required(),
					mcp.Description("Query resolution step width (e.g., '15s', '1m', '1h')"),
				),
				mcp.WithString("timeout",
					mcp.Description("Optional evaluation timeout (e.g., '30s')"),
				),
			),
			Handler: bind(handleRangeQuery, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetSeries,
				mcp.WithDescription("Find series matching a label selector"),
				mcp.WithString("match",
					mcp.Required(),
					mcp.Description("Series selector, e.g. 'up{job=\"prometheus\"}'"),
				),
				mcp.WithString("start",
					mcp.Description("Optional start time as RFC3339 or Unix timestamp"),
				),
				mcp.WithString("end",
					mcp.Description("Optional end time as RFC3339 or Unix timestamp"),
				),
			),
			Handler: bind(handleGetSeries, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetLabelValues,
				mcp.WithDescription("List the values of a label"),
				mcp.WithString("labelName",
					mcp.Required(),
					mcp.Description("Label name, e.g. 'job'"),
				),
			),
			Handler: bind(handleGetLabelValues, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetMetadata,
				mcp.WithDescription("Get metric metadata (type, help, unit)"),
				mcp.WithString("metric",
					mcp.Description("Optional metric name to restrict the result to"),
				),
				mcp.WithNumber("limit",
					mcp.Description("Optional maximum number of metrics to return"),
				),
			),
			Handler: bind(handleGetMetadata, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetTargets,
				mcp.WithDescription("Get information about scrape targets"),
				mcp.WithString("state",
					mcp.Description("Which targets to show (default: any)"),
					mcp.Enum(targetStateActive, targetStateDropped, targetStateAny),
				),
			),
			Handler: bind(handleGetTargets, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetAlerts,
				mcp.WithDescription("Get all active alerts"),
			),
			Handler: bind(handleGetAlerts, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetRules,
				mcp.WithDescription("Get alerting and recording rules"),
			),
			Handler: bind(handleGetRules, client, logger),
		},
		{
			Tool: mcp.NewTool(ToolGetStatus,
				mcp.WithDescription("Get Prometheus server status information"),
				mcp.WithString("statusType",
					mcp.Required(),
					mcp.Description("Kind of status to fetch"),
					mcp.Enum(statusValues...),
				),
			),
			Handler: bind(handleGetStatus, client, logger),
		},
	}
}

// apiCall describes one gateway request and how to present its outcome.
type apiCall struct {
	endpoint string
	params   url.Values
	failure  string
	noData   string
	format   formatter
}

// execute runs the common handler policy: gateway failure, upstream error,
// empty data, then formatted data with warnings.
func execute(ctx context.Context, client Querier, logger server.Logger, call apiCall) (*mcp.CallToolResult, error) {
	envelope, err := client.Get(ctx, call.endpoint, call.params)
	if err != nil || envelope == nil {
		return mcp.NewToolResultText(call.failure), nil
	}

	if envelope.Status == StatusError {
		return mcp.NewToolResultError("Error: " + orDefault(envelope.Error, "Unknown error")), nil
	}

	if !envelope.HasData() {
		return mcp.NewToolResultText(call.noData), nil
	}

	text, empty, err := call.format(envelope.Data)
	if err != nil {
		logger.Error("Unexpected Prometheus payload", "endpoint", call.endpoint, "error", err)
		return mcp.NewToolResultText(call.failure), nil
	}
	if empty {
		return mcp.NewToolResultText(call.noData), nil
	}

	return mcp.NewToolResultText(text + formatWarnings(envelope.Warnings)), nil
}

// invalidArgument is the result for a bad or missing argument.
func invalidArgument(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + message)
}

func requiredArgument(name string) *mcp.CallToolResult {
	return invalidArgument(fmt.Sprintf("%s parameter is required and must be a string", name))
}

// arguments wraps the raw tool arguments.
type arguments map[string]any

func argumentsOf(request mcp.CallToolRequest) arguments {
	if args := request.GetArguments(); args != nil {
		return args
	}
	return arguments{}
}

// getString returns a non-empty string argument.
func (a arguments) getString(name string) (string, bool) {
	value, ok := a[name].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// getNumber returns a numeric argument formatted for a query string. Numeric
// strings are accepted as well.
func (a arguments) getNumber(name string) (string, bool) {
	switch v := a[name].(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case string:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v, true
		}
	}
	return "", false
}

// getStrings returns a string or a list of strings as a slice, dropping empties.
func (a arguments) getStrings(name string) []string {
	switch v := a[name].(type) {
	case string:
		if v != "" {
			return []string{v}
		}
	case []string:
		return compact(v)
	case []any:
		values := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				values = append(values, s)
			}
		}
		return compact(values)
	}
	return nil
}

func compact(values []string) []string {
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// setOptional copies non-empty optional string arguments into params.
func (a arguments) setOptional(params url.Values, names ...string) {
	for _, name := range names {
		if value, ok := a.getString(name); ok {
			params.Set(name, value)
		}
	}
}

// handleInstantQuery handles the instant-query tool
func handleInstantQuery(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	args := argumentsOf(request)

	query, ok := args.getString("query")
	if !ok {
		return requiredArgument("query"), nil
	}

	params := url.Values{}
	params.Set("query", query)
	args.setOptional(params, "time", "timeout")

	logger.Debug("Executing PromQL query", "query", query, "params", params.Encode())

	return execute(ctx, client, logger, apiCall{
		endpoint: "query",
		params:   params,
		failure:  "Failed to retrieve query results",
		noData:   "No data found for query",
		format:   formatInstantQuery,
	})
}

// handleRangeQuery handles the range-query tool
func handleRangeQuery(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	args := argumentsOf(request)

	params := url.Values{}
	for _, name := range []string{"query", "start", "end", "step"} {
		value, ok := args.getString(name)
		if !ok {
			return requiredArgument(name), nil
		}
		params.Set(name, value)
	}
	args.setOptional(params, "timeout")

	logger.Debug("Executing PromQL range query", "params", params.Encode())

	return execute(ctx, client, logger, apiCall{
		endpoint: "query_range",
		params:   params,
		failure:  "Failed to retrieve range query results",
		noData:   "No data found for query",
		format:   formatRangeQuery,
	})
}

// handleGetSeries handles the get-series tool
func handleGetSeries(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	args := argumentsOf(request)

	matches := args.getStrings("match")
	if len(matches) == 0 {
		return requiredArgument("match"), nil
	}

	params := url.Values{}
	for _, match := range matches {
		params.Add("match[]", match)
	}
	args.setOptional(params, "start", "end")

	logger.Debug("Finding series", "match", matches)

	return execute(ctx, client, logger, apiCall{
		endpoint: "series",
		params:   params,
		failure:  "Failed to retrieve series",
		noData:   "No series found",
		format:   formatSeries,
	})
}

// handleGetLabelValues handles the get-label-values tool
func handleGetLabelValues(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	labelName, ok := argumentsOf(request).getString("labelName")
	if !ok {
		return requiredArgument("labelName"), nil
	}

	logger.Debug("Listing label values", "label", labelName)

	return execute(ctx, client, logger, apiCall{
		endpoint: "label/" + labelName + "/values",
		params:   url.Values{},
		failure:  "Failed to retrieve label values",
		noData:   fmt.Sprintf("No values found for label %q", labelName),
		format:   formatLabelValues,
	})
}

// handleGetMetadata handles the get-metadata tool
func handleGetMetadata(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	args := argumentsOf(request)

	params := url.Values{}
	args.setOptional(params, "metric")
	if limit, ok := args.getNumber("limit"); ok {
		params.Set("limit", limit)
	}

	logger.Debug("Getting metric metadata", "params", params.Encode())

	return execute(ctx, client, logger, apiCall{
		endpoint: "metadata",
		params:   params,
		failure:  "Failed to retrieve metadata",
		noData:   "No metadata found",
		format:   formatMetadata,
	})
}

// handleGetTargets handles the get-targets tool
func handleGetTargets(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	state, ok := argumentsOf(request).getString("state")
	if !ok {
		state = targetStateAny
	}
	switch state {
	case targetStateActive, targetStateDropped, targetStateAny:
	default:
		return invalidArgument(fmt.Sprintf("state must be one of: %s, %s, %s",
			targetStateActive, targetStateDropped, targetStateAny)), nil
	}

	logger.Debug("Getting targets", "state", state)

	return execute(ctx, client, logger, apiCall{
		endpoint: "targets",
		params:   url.Values{},
		failure:  "Failed to retrieve targets",
		noData:   "No targets found",
		format:   formatTargets(state),
	})
}

// handleGetAlerts handles the get-alerts tool
func handleGetAlerts(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	logger.Debug("Getting alerts")

	return execute(ctx, client, logger, apiCall{
		endpoint: "alerts",
		params:   url.Values{},
		failure:  "Failed to retrieve alerts",
		noData:   "No active alerts",
		format:   formatAlerts,
	})
}

// handleGetRules handles the get-rules tool
func handleGetRules(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	logger.Debug("Getting rules")

	return execute(ctx, client, logger, apiCall{
		endpoint: "rules",
		params:   url.Values{},
		failure:  "Failed to retrieve rules",
		noData:   "No rules found",
		format:   formatRules,
	})
}

// handleGetStatus handles the get-status tool
func handleGetStatus(ctx context.Context, request mcp.CallToolRequest, client Querier, logger server.Logger) (*mcp.CallToolResult, error) {
	value, ok := argumentsOf(request).getString("statusType")
	if !ok {
		return requiredArgument("statusType"), nil
	}

	statusType := StatusType(value)
	valid := false
	names := make([]string, 0, len(statusTypes))
	for _, t := range statusTypes {
		names = append(names, string(t))
		valid = valid || t == statusType
	}
	if !valid {
		return invalidArgument("statusType must be one of: " + strings.Join(names, ", ")), nil
	}

	logger.Debug("Getting status", "type", statusType)

	return execute(ctx, client, logger, apiCall{
		endpoint: statusType.endpoint(),
		params:   url.Values{},
		failure:  fmt.Sprintf("Failed to retrieve %s status", statusType),
		noData:   fmt.Sprintf("No %s status data available", statusType),
		format:   formatStatus(statusType),
	})
}
