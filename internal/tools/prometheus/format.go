package prometheus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/prometheus/common/model"
)

const (
	separator    = "---"
	valueNone    = "none"
	valueUnknown = "Unknown"
)

// formatter renders the data of a successful envelope. It reports empty=true
// when the payload holds nothing to show, and an error when the payload does
// not match the shape of the endpoint.
type formatter func(data json.RawMessage) (text string, empty bool, err error)

// formatTimestamp renders a Prometheus timestamp as an ISO-8601 UTC string
// with millisecond precision.
func formatTimestamp(t model.Time) string {
	return t.Time().UTC().Format("2006-01-02T15:04:05.000Z")
}

// formatTime renders an RFC 3339 time, or Unknown for the zero value.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return valueUnknown
	}
	return t.Format(time.RFC3339Nano)
}

// formatLabels renders label pairs sorted by name as name="value", joined by ", ".
func formatLabels[M ~map[K]V, K ~string, V ~string](labels M) string {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, string(name))
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, fmt.Sprintf(`%s="%s"`, name, string(labels[K(name)])))
	}
	return strings.Join(pairs, ", ")
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// prettyJSON indents raw JSON with two spaces, keeping key order.
func prettyJSON(raw json.RawMessage) (string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null", nil
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func formatSampleValue(s *model.Sample) string {
	if s.Histogram != nil {
		return s.Histogram.String()
	}
	return s.Value.String()
}

func formatVector(vector model.Vector) string {
	lines := make([]string, 0, len(vector))
	for _, sample := range vector {
		lines = append(lines, fmt.Sprintf("%s: %s @%s",
			formatLabels(sample.Metric), formatSampleValue(sample), formatTimestamp(sample.Timestamp)))
	}
	return strings.Join(lines, "\n\n")
}

func formatMatrix(matrix model.Matrix) string {
	blocks := make([]string, 0, len(matrix))
	for _, stream := range matrix {
		points := make([]string, 0, len(stream.Values)+len(stream.Histograms))
		for _, pair := range stream.Values {
			points = append(points, fmt.Sprintf("%s @%s", pair.Value.String(), formatTimestamp(pair.Timestamp)))
		}
		for _, pair := range stream.Histograms {
			points = append(points, fmt.Sprintf("%s @%s", pair.Histogram.String(), formatTimestamp(pair.Timestamp)))
		}
		blocks = append(blocks, formatLabels(stream.Metric)+"\n"+strings.Join(points, ", "))
	}
	return strings.Join(blocks, "\n\n")
}

// formatInstantQuery renders any of the four query result types.
func formatInstantQuery(data json.RawMessage) (string, bool, error) {
	var qd queryData
	if err := json.Unmarshal(data, &qd); err != nil {
		return "", false, fmt.Errorf("invalid query payload: %w", err)
	}

	switch qd.ResultType {
	case model.ValVector:
		var vector model.Vector
		if err := json.Unmarshal(qd.Result, &vector); err != nil {
			return "", false, fmt.Errorf("invalid vector result: %w", err)
		}
		return formatVector(vector), len(vector) == 0, nil
	case model.ValMatrix:
		var matrix model.Matrix
		if err := json.Unmarshal(qd.Result, &matrix); err != nil {
			return "", false, fmt.Errorf("invalid matrix result: %w", err)
		}
		return formatMatrix(matrix), len(matrix) == 0, nil
	case model.ValScalar:
		if isEmptyJSON(qd.Result) {
			return "", true, nil
		}
		var scalar model.Scalar
		if err := json.Unmarshal(qd.Result, &scalar); err != nil {
			return "", false, fmt.Errorf("invalid scalar result: %w", err)
		}
		return fmt.Sprintf("Scalar value: %s @%s", scalar.Value.String(), formatTimestamp(scalar.Timestamp)), false, nil
	case model.ValString:
		if isEmptyJSON(qd.Result) {
			return "", true, nil
		}
		var str model.String
		if err := json.Unmarshal(qd.Result, &str); err != nil {
			return "", false, fmt.Errorf("invalid string result: %w", err)
		}
		return "String value: " + str.Value, false, nil
	default:
		return "", false, fmt.Errorf("unsupported result type %q", qd.ResultType)
	}
}

// formatRangeQuery always renders the result as a matrix.
func formatRangeQuery(data json.RawMessage) (string, bool, error) {
	var qd queryData
	if err := json.Unmarshal(data, &qd); err != nil {
		return "", false, fmt.Errorf("invalid query payload: %w", err)
	}
	if isEmptyJSON(qd.Result) {
		return "", true, nil
	}

	var matrix model.Matrix
	if err := json.Unmarshal(qd.Result, &matrix); err != nil {
		return "", false, fmt.Errorf("invalid matrix result: %w", err)
	}
	return formatMatrix(matrix), len(matrix) == 0, nil
}

func formatSeries(data json.RawMessage) (string, bool, error) {
	var series []model.LabelSet
	if err := json.Unmarshal(data, &series); err != nil {
		return "", false, fmt.Errorf("invalid series payload: %w", err)
	}

	lines := make([]string, 0, len(series))
	for _, labels := range series {
		lines = append(lines, formatLabels(labels))
	}
	return strings.Join(lines, "\n"), len(series) == 0, nil
}

func formatLabelValues(data json.RawMessage) (string, bool, error) {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return "", false, fmt.Errorf("invalid label values payload: %w", err)
	}
	return strings.Join(values, "\n"), len(values) == 0, nil
}

func formatMetadata(data json.RawMessage) (string, bool, error) {
	var metadata metadataData
	if err := json.Unmarshal(data, &metadata); err != nil {
		return "", false, fmt.Errorf("invalid metadata payload: %w", err)
	}

	names := make([]string, 0, len(metadata))
	for name := range metadata {
		names = append(names, name)
	}
	sort.Strings(names)

	var lines []string
	for _, name := range names {
		for _, md := range metadata[name] {
			lines = append(lines,
				"Metric: "+name,
				"Type: "+string(md.Type),
				"Help: "+md.Help,
				"Unit: "+orDefault(md.Unit, valueNone),
				separator,
			)
		}
	}
	return strings.Join(lines, "\n"), len(lines) == 0, nil
}

// formatTargets returns a formatter that renders the sections selected by state.
func formatTargets(state string) formatter {
	showActive := state == targetStateActive || state == targetStateAny
	showDropped := state == targetStateDropped || state == targetStateAny

	return func(data json.RawMessage) (string, bool, error) {
		var targets targetsData
		if err := json.Unmarshal(data, &targets); err != nil {
			return "", false, fmt.Errorf("invalid targets payload: %w", err)
		}

		if (!showActive || len(targets.Active) == 0) && (!showDropped || len(targets.Dropped) == 0) {
			return "", true, nil
		}

		var sections []string
		if showActive {
			lines := []string{"Active Targets:"}
			for _, target := range targets.Active {
				lines = append(lines,
					"Endpoint: "+target.ScrapeURL,
					"Health: "+orDefault(string(target.Health), valueUnknown),
					"Labels: "+formatLabels(target.Labels),
					"Last Scrape: "+formatTime(target.LastScrape),
					"Last Error: "+orDefault(target.LastError, valueNone),
					separator,
				)
			}
			if len(targets.Active) == 0 {
				lines = append(lines, "No active targets")
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
		if showDropped {
			lines := []string{"Dropped Targets:"}
			for _, target := range targets.Dropped {
				lines = append(lines,
					"Endpoint: "+orDefault(target.DiscoveredLabels["__address__"], valueUnknown),
					"Labels: "+formatLabels(target.DiscoveredLabels),
					separator,
				)
			}
			if len(targets.Dropped) == 0 {
				lines = append(lines, "No dropped targets")
			}
			sections = append(sections, strings.Join(lines, "\n"))
		}
		return strings.Join(sections, "\n\n"), false, nil
	}
}

func formatAlerts(data json.RawMessage) (string, bool, error) {
	var alerts alertsData
	if err := json.Unmarshal(data, &alerts); err != nil {
		return "", false, fmt.Errorf("invalid alerts payload: %w", err)
	}

	var lines []string
	for _, alert := range alerts.Alerts {
		lines = append(lines,
			"Alert: "+orDefault(string(alert.Labels[model.AlertNameLabel]), valueUnknown),
			"State: "+orDefault(string(alert.State), valueUnknown),
			"Labels: "+formatLabels(alert.Labels),
			"Annotations: "+formatLabels(alert.Annotations),
			"Active Since: "+formatTime(alert.ActiveAt),
			separator,
		)
	}
	return strings.Join(lines, "\n"), len(alerts.Alerts) == 0, nil
}

func formatRules(data json.RawMessage) (string, bool, error) {
	var rules rulesData
	if err := json.Unmarshal(data, &rules); err != nil {
		return "", false, fmt.Errorf("invalid rules payload: %w", err)
	}

	groups := make([]string, 0, len(rules.Groups))
	for _, group := range rules.Groups {
		lines := []string{fmt.Sprintf("Group: %s (file: %s)", group.Name, group.File)}
		if len(group.Rules) == 0 {
			lines = append(lines, "No rules in this group")
		}
		for _, r := range group.Rules {
			lines = append(lines,
				"Type: "+orDefault(r.Type, valueUnknown),
				"Name: "+r.Name,
			)
			if r.Type == ruleTypeAlerting {
				lines = append(lines, "State: "+orDefault(r.State, valueUnknown))
			}
			lines = append(lines, "Query: "+r.Query)
			if r.Type == ruleTypeAlerting {
				lines = append(lines, fmt.Sprintf("Active Alerts: %d", len(r.Alerts)))
			}
			lines = append(lines, separator)
		}
		groups = append(groups, strings.Join(lines, "\n"))
	}
	return strings.Join(groups, "\n\n"), len(rules.Groups) == 0, nil
}

// formatStatus returns the formatter for a status type.
func formatStatus(statusType StatusType) formatter {
	switch statusType {
	case StatusConfig:
		return func(data json.RawMessage) (string, bool, error) {
			text, err := prettyJSON(data)
			return text, false, err
		}
	case StatusFlags:
		return formatFlags
	case StatusRuntime:
		return formatRuntimeInfo
	case StatusBuildInfo:
		return formatBuildInfo
	case StatusTSDB:
		return formatTSDB
	default:
		return func(json.RawMessage) (string, bool, error) {
			return "", false, fmt.Errorf("unsupported status type %q", statusType)
		}
	}
}

func formatFlags(data json.RawMessage) (string, bool, error) {
	var flags map[string]string
	if err := json.Unmarshal(data, &flags); err != nil {
		return "", false, fmt.Errorf("invalid flags payload: %w", err)
	}

	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)

	lines := make([]string, 0, len(names))
	for _, name := range names {
		lines = append(lines, fmt.Sprintf("%s: %s", name, flags[name]))
	}
	return strings.Join(lines, "\n"), len(lines) == 0, nil
}

func formatRuntimeInfo(data json.RawMessage) (string, bool, error) {
	var info runtimeInfoData
	if err := json.Unmarshal(data, &info); err != nil {
		return "", false, fmt.Errorf("invalid runtime info payload: %w", err)
	}

	lines := []string{
		"Start Time: " + formatTime(info.StartTime),
		"CWD: " + orDefault(info.CWD, valueUnknown),
		fmt.Sprintf("Reload Config Success: %t", info.ReloadConfigSuccess),
		"Last Config Time: " + formatTime(info.LastConfigTime),
		fmt.Sprintf("Corruption Count: %d", info.CorruptionCount),
		fmt.Sprintf("Goroutine Count: %d", info.GoroutineCount),
		fmt.Sprintf("GOMAXPROCS: %d", info.GOMAXPROCS),
		"GOGC: " + orDefault(info.GOGC, valueNone),
		"GODEBUG: " + orDefault(info.GODEBUG, valueNone),
		"Storage Retention: " + orDefault(info.StorageRetention, valueUnknown),
	}
	return strings.Join(lines, "\n"), false, nil
}

func formatBuildInfo(data json.RawMessage) (string, bool, error) {
	var info buildInfoData
	if err := json.Unmarshal(data, &info); err != nil {
		return "", false, fmt.Errorf("invalid build info payload: %w", err)
	}

	lines := []string{
		"Version: " + orDefault(info.Version, valueUnknown),
		"Revision: " + orDefault(info.Revision, valueUnknown),
		"Branch: " + orDefault(info.Branch, valueUnknown),
		"Build User: " + orDefault(info.BuildUser, valueUnknown),
		"Build Date: " + orDefault(info.BuildDate, valueUnknown),
		"Go Version: " + orDefault(info.GoVersion, valueUnknown),
	}
	return strings.Join(lines, "\n"), false, nil
}

func formatTSDB(data json.RawMessage) (string, bool, error) {
	var tsdb tsdbData
	if err := json.Unmarshal(data, &tsdb); err != nil {
		return "", false, fmt.Errorf("invalid tsdb payload: %w", err)
	}

	sections := []struct {
		title string
		raw   json.RawMessage
	}{
		{"Head Stats:", tsdb.HeadStats},
		{"Series Count By Metric Name:", tsdb.SeriesCountByMetricName},
		{"Label Value Count By Label Name:", tsdb.LabelValueCountByLabelName},
	}

	blocks := make([]string, 0, len(sections))
	for _, section := range sections {
		body, err := prettyJSON(section.raw)
		if err != nil {
			return "", false, fmt.Errorf("invalid tsdb payload: %w", err)
		}
		blocks = append(blocks, section.title+"\n"+body)
	}
	return strings.Join(blocks, "\n\n"), false, nil
}

// formatWarnings renders the warnings block appended to successful output.
func formatWarnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, "- "+w)
	}
	return "\n\nWarnings:\n" + strings.Join(lines, "\n")
}
