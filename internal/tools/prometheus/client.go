package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/prometheus/client_golang/api"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/giantswarm/prometheus-mcp/internal/server"
	"github.com/giantswarm/prometheus-mcp/internal/telemetry"
)

// apiPrefix is prepended to every endpoint path.
const apiPrefix = "/api/v1/"

// ClientName identifies this server in the User-Agent header.
const ClientName = "prometheus-mcp"

// Querier fetches one Prometheus API endpoint. A non-nil error means the
// response is unusable; the error has already been logged.
type Querier interface {
	Get(ctx context.Context, endpoint string, params url.Values) (*Envelope, error)
}

// HTTPError is returned when Prometheus answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, truncateString(e.Body, 200))
}

// headerRoundTripper sets fixed headers on every request
type headerRoundTripper struct {
	headers http.Header
	rt      http.RoundTripper
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	for name, values := range h.headers {
		req.Header[name] = values
	}
	return h.rt.RoundTrip(req)
}

// orgIDRoundTripper adds Organization ID header to requests for multi-tenant setups
type orgIDRoundTripper struct {
	orgID string
	rt    http.RoundTripper
}

func (o *orgIDRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if o.orgID != "" {
		req.Header.Set("X-Scope-OrgID", o.orgID)
	}
	return o.rt.RoundTrip(req)
}

// basicAuthRoundTripper adds basic authentication to requests
type basicAuthRoundTripper struct {
	username string
	password string
	rt       http.RoundTripper
}

func (b *basicAuthRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(b.username, b.password)
	return b.rt.RoundTrip(req)
}

// bearerTokenRoundTripper adds bearer token authentication to requests
type bearerTokenRoundTripper struct {
	token string
	rt    http.RoundTripper
}

func (b *bearerTokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "Bearer "+b.token)
	return b.rt.RoundTrip(req)
}

// Client is the request gateway to the Prometheus HTTP API.
type Client struct {
	api    api.Client
	logger server.Logger
}

// NewClient creates a gateway for the configured Prometheus server.
func NewClient(config server.PrometheusConfig, version string, logger server.Logger) (*Client, error) {
	logger.Debug("Creating new Prometheus client", "url", config.URL, "orgID", config.OrgID)

	// Start with default transport
	var roundTripper http.RoundTripper = &headerRoundTripper{
		headers: http.Header{
			"Accept":     []string{"application/json"},
			"User-Agent": []string{ClientName + "/" + version},
		},
		rt: http.DefaultTransport,
	}

	// Add authentication layer
	if config.Token != "" {
		roundTripper = &bearerTokenRoundTripper{
			token: config.Token,
			rt:    roundTripper,
		}
		logger.Debug("Using bearer token authentication")
	} else if config.Username != "" && config.Password != "" {
		roundTripper = &basicAuthRoundTripper{
			username: config.Username,
			password: config.Password,
			rt:       roundTripper,
		}
		logger.Debug("Using basic authentication", "username", config.Username)
	} else {
		logger.Debug("No authentication configured")
	}

	// Add organization ID layer if specified
	if config.OrgID != "" {
		roundTripper = &orgIDRoundTripper{
			orgID: config.OrgID,
			rt:    roundTripper,
		}
		logger.Debug("Using organization ID", "orgID", config.OrgID)
	}

	promClient, err := api.NewClient(api.Config{
		Address:      config.URL,
		RoundTripper: roundTripper,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Prometheus client for %s: %w", config.URL, err)
	}

	return &Client{
		api:    promClient,
		logger: logger,
	}, nil
}

// Get performs a GET against /api/v1/<endpoint> and decodes the envelope.
// Only supplied parameters are sent. Network errors, non-2xx statuses and
// unparseable bodies are logged and returned as errors.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (*Envelope, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "GET "+apiPrefix+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("prometheus.endpoint", endpoint)),
	)
	defer span.End()

	envelope, err := c.get(ctx, endpoint, params)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Error("Prometheus request failed", "endpoint", endpoint, "error", err)
		return nil, err
	}

	if len(envelope.Warnings) > 0 {
		c.logger.Warn("Prometheus returned warnings", "endpoint", endpoint, "warnings", envelope.Warnings)
	}

	return envelope, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values) (*Envelope, error) {
	u := c.api.URL(apiPrefix+endpoint, nil)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	c.logger.Debug("Sending Prometheus request", "url", u.String())

	resp, body, err := c.api.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var envelope Envelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	switch envelope.Status {
	case StatusSuccess, StatusError:
		return &envelope, nil
	default:
		return nil, fmt.Errorf("unexpected response status %q", envelope.Status)
	}
}

// truncateString truncates a string to the specified length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
