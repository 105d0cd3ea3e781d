package prometheus

import (
	"bytes"
	"encoding/json"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

// Envelope statuses reported by the Prometheus HTTP API.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Envelope is the wrapper Prometheus puts around every API response.
// Data stays raw until the formatter for the endpoint decodes it.
type Envelope struct {
	Status    string          `json:"status"`
	Data      json.RawMessage `json:"data,omitempty"`
	ErrorType string          `json:"errorType,omitempty"`
	Error     string          `json:"error,omitempty"`
	Warnings  []string        `json:"warnings,omitempty"`
}

// HasData reports whether data is present and not an empty collection.
func (e *Envelope) HasData() bool {
	return !isEmptyJSON(e.Data)
}

// isEmptyJSON reports whether raw is absent, null, [] or {}.
func isEmptyJSON(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	if len(trimmed) < 2 {
		return false
	}
	first, last := trimmed[0], trimmed[len(trimmed)-1]
	if (first == '[' && last == ']') || (first == '{' && last == '}') {
		return len(bytes.TrimSpace(trimmed[1:len(trimmed)-1])) == 0
	}
	return false
}

// queryData is the payload of the query and query_range endpoints.
type queryData struct {
	ResultType model.ValueType `json:"resultType"`
	Result     json.RawMessage `json:"result"`
}

// metadataData is the payload of the metadata endpoint.
type metadataData map[string][]v1.Metadata

// alertsData is the payload of the alerts endpoint.
type alertsData = v1.AlertsResult

// targetsData is the payload of the targets endpoint.
type targetsData = v1.TargetsResult

// Rule types reported by the rules endpoint.
const (
	ruleTypeAlerting  = "alerting"
	ruleTypeRecording = "recording"
)

// rulesData is the payload of the rules endpoint.
type rulesData struct {
	Groups []ruleGroup `json:"groups"`
}

type ruleGroup struct {
	Name  string `json:"name"`
	File  string `json:"file"`
	Rules []rule `json:"rules"`
}

// rule is tagged by Type. State and Alerts are only set on alerting rules.
type rule struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Query  string            `json:"query"`
	State  string            `json:"state,omitempty"`
	Alerts []json.RawMessage `json:"alerts,omitempty"`
}

// StatusType selects one of the status/* endpoints.
type StatusType string

const (
	StatusConfig    StatusType = "config"
	StatusFlags     StatusType = "flags"
	StatusRuntime   StatusType = "runtime"
	StatusBuildInfo StatusType = "buildinfo"
	StatusTSDB      StatusType = "tsdb"
)

// statusTypes lists the accepted status types in schema order.
var statusTypes = []StatusType{StatusConfig, StatusFlags, StatusRuntime, StatusBuildInfo, StatusTSDB}

// endpoint returns the API path for the status type.
func (t StatusType) endpoint() string {
	if t == StatusRuntime {
		return "status/runtimeinfo"
	}
	return "status/" + string(t)
}

// runtimeInfoData is the payload of status/runtimeinfo.
type runtimeInfoData = v1.RuntimeinfoResult

// buildInfoData is the payload of status/buildinfo.
type buildInfoData = v1.BuildinfoResult

// tsdbData holds the sub-objects of status/tsdb that get rendered.
type tsdbData struct {
	HeadStats                  json.RawMessage `json:"headStats"`
	SeriesCountByMetricName    json.RawMessage `json:"seriesCountByMetricName"`
	LabelValueCountByLabelName json.RawMessage `json:"labelValueCountByLabelName"`
}

// Target states accepted by get-targets.
const (
	targetStateActive  = "active"
	targetStateDropped = "dropped"
	targetStateAny     = "any"
)
