package prometheus

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, f formatter, data string) (string, bool) {
	t.Helper()
	text, empty, err := f(json.RawMessage(data))
	require.NoError(t, err)
	return text, empty
}

func TestFormatInstantQuery(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected string
		empty    bool
	}{
		{
			name:     "vector single series",
			data:     `{"resultType":"vector","result":[{"metric":{"job":"x"},"value":[1700000000,"5"]}]}`,
			expected: `job="x": 5 @2023-11-14T22:13:20.000Z`,
		},
		{
			name: "vector sorts labels and separates series",
			data: `{"resultType":"vector","result":[
				{"metric":{"job":"a","__name__":"up","instance":"h:9090"},"value":[1700000000.5,"1"]},
				{"metric":{"job":"b"},"value":[1700000000,"0.25"]}]}`,
			expected: "__name__=\"up\", instance=\"h:9090\", job=\"a\": 1 @2023-11-14T22:13:20.500Z\n\n" +
				"job=\"b\": 0.25 @2023-11-14T22:13:20.000Z",
		},
		{
			name: "matrix",
			data: `{"resultType":"matrix","result":[
				{"metric":{"job":"x"},"values":[[1700000000,"1"],[1700000015,"2.5"]]},
				{"metric":{"job":"y"},"values":[[1700000000,"NaN"]]}]}`,
			expected: "job=\"x\"\n1 @2023-11-14T22:13:20.000Z, 2.5 @2023-11-14T22:13:35.000Z\n\n" +
				"job=\"y\"\nNaN @2023-11-14T22:13:20.000Z",
		},
		{
			name:     "scalar",
			data:     `{"resultType":"scalar","result":[1700000000.123,"42"]}`,
			expected: "Scalar value: 42 @2023-11-14T22:13:20.123Z",
		},
		{
			name:     "string",
			data:     `{"resultType":"string","result":[1700000000,"hello"]}`,
			expected: "String value: hello",
		},
		{
			name:  "empty vector",
			data:  `{"resultType":"vector","result":[]}`,
			empty: true,
		},
		{
			name:  "empty matrix",
			data:  `{"resultType":"matrix","result":null}`,
			empty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, empty := render(t, formatInstantQuery, tt.data)
			assert.Equal(t, tt.empty, empty)
			if !tt.empty {
				assert.Equal(t, tt.expected, text)
			}
		})
	}
}

func TestFormatInstantQueryInvalid(t *testing.T) {
	for _, data := range []string{
		`{"resultType":"histogram","result":[]}`,
		`{"resultType":"vector","result":{"oops":true}}`,
		`[1,2]`,
	} {
		_, _, err := formatInstantQuery(json.RawMessage(data))
		assert.Error(t, err, data)
	}
}

func TestFormatRangeQueryAlwaysMatrix(t *testing.T) {
	text, empty := render(t, formatRangeQuery,
		`{"resultType":"matrix","result":[{"metric":{"job":"x"},"values":[[1700000000,"3"]]}]}`)
	assert.False(t, empty)
	assert.Equal(t, "job=\"x\"\n3 @2023-11-14T22:13:20.000Z", text)

	// A scalar payload is not rendered as a scalar.
	_, _, err := formatRangeQuery(json.RawMessage(`{"resultType":"scalar","result":[1700000000,"42"]}`))
	assert.Error(t, err)

	text, _ = render(t, formatRangeQuery,
		`{"resultType":"vector","result":[{"metric":{"job":"x"},"value":[1700000000,"5"]}]}`)
	assert.NotContains(t, text, "Scalar value")
	assert.NotContains(t, text, "@")

	_, empty = render(t, formatRangeQuery, `{"resultType":"matrix","result":[]}`)
	assert.True(t, empty)
}

func TestFormatSeries(t *testing.T) {
	text, empty := render(t, formatSeries,
		`[{"__name__":"up","job":"prometheus"},{"__name__":"up","job":"node","instance":"n1"}]`)
	assert.False(t, empty)
	assert.Equal(t, "__name__=\"up\", job=\"prometheus\"\n__name__=\"up\", instance=\"n1\", job=\"node\"", text)
}

func TestFormatLabelValues(t *testing.T) {
	text, empty := render(t, formatLabelValues, `["node","prometheus"]`)
	assert.False(t, empty)
	assert.Equal(t, "node\nprometheus", text)
}

func TestFormatMetadata(t *testing.T) {
	text, empty := render(t, formatMetadata, `{
		"up":[{"type":"gauge","help":"Up","unit":""}],
		"http_requests_total":[{"type":"counter","help":"Total","unit":"requests"}]}`)
	assert.False(t, empty)
	assert.Equal(t, "Metric: http_requests_total\nType: counter\nHelp: Total\nUnit: requests\n---\n"+
		"Metric: up\nType: gauge\nHelp: Up\nUnit: none\n---", text)
}

const targetsPayload = `{
	"activeTargets":[{
		"discoveredLabels":{"__address__":"localhost:9090"},
		"labels":{"job":"prometheus","instance":"localhost:9090"},
		"scrapePool":"prometheus",
		"scrapeUrl":"http://localhost:9090/metrics",
		"lastError":"",
		"lastScrape":"2023-11-14T22:13:20.5Z",
		"lastScrapeDuration":0.01,
		"health":"up"}],
	"droppedTargets":[{
		"discoveredLabels":{"__address__":"10.0.0.1:9100","job":"node"}}]}`

func TestFormatTargets(t *testing.T) {
	active := "Active Targets:\n" +
		"Endpoint: http://localhost:9090/metrics\n" +
		"Health: up\n" +
		"Labels: instance=\"localhost:9090\", job=\"prometheus\"\n" +
		"Last Scrape: 2023-11-14T22:13:20.5Z\n" +
		"Last Error: none\n" +
		"---"
	dropped := "Dropped Targets:\n" +
		"Endpoint: 10.0.0.1:9100\n" +
		"Labels: __address__=\"10.0.0.1:9100\", job=\"node\"\n" +
		"---"

	tests := []struct {
		state    string
		expected string
	}{
		{state: targetStateAny, expected: active + "\n\n" + dropped},
		{state: targetStateActive, expected: active},
		{state: targetStateDropped, expected: dropped},
	}

	for _, tt := range tests {
		t.Run(tt.state, func(t *testing.T) {
			text, empty := render(t, formatTargets(tt.state), targetsPayload)
			assert.False(t, empty)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestFormatTargetsEmptySelection(t *testing.T) {
	_, empty := render(t, formatTargets(targetStateActive),
		`{"activeTargets":[],"droppedTargets":[{"discoveredLabels":{"job":"x"}}]}`)
	assert.True(t, empty)

	text, empty := render(t, formatTargets(targetStateAny),
		`{"activeTargets":[],"droppedTargets":[{"discoveredLabels":{"job":"x"}}]}`)
	assert.False(t, empty)
	assert.Equal(t, "Active Targets:\nNo active targets\n\n"+
		"Dropped Targets:\nEndpoint: Unknown\nLabels: job=\"x\"\n---", text)
}

func TestFormatAlerts(t *testing.T) {
	text, empty := render(t, formatAlerts, `{"alerts":[
		{"labels":{"alertname":"HighLoad","severity":"page"},"annotations":{"summary":"load"},
		 "state":"firing","activeAt":"2023-11-14T22:13:20Z"},
		{"labels":{"severity":"info"},"annotations":{},"state":"pending"}]}`)
	assert.False(t, empty)
	assert.Equal(t, "Alert: HighLoad\nState: firing\n"+
		"Labels: alertname=\"HighLoad\", severity=\"page\"\n"+
		"Annotations: summary=\"load\"\n"+
		"Active Since: 2023-11-14T22:13:20Z\n---\n"+
		"Alert: Unknown\nState: pending\n"+
		"Labels: severity=\"info\"\n"+
		"Annotations: \n"+
		"Active Since: Unknown\n---", text)

	_, empty = render(t, formatAlerts, `{"alerts":[]}`)
	assert.True(t, empty)
}

func TestFormatRules(t *testing.T) {
	text, empty := render(t, formatRules, `{"groups":[
		{"name":"g1","file":"/rules/a.yml","rules":[
			{"type":"alerting","name":"InstanceDown","query":"up == 0","state":"firing","alerts":[{},{}]},
			{"type":"recording","name":"job:up:sum","query":"sum by (job) (up)"}]},
		{"name":"empty","file":"/rules/b.yml","rules":[]},
		{"name":"g3","file":"/rules/c.yml","rules":[
			{"type":"recording","name":"r2","query":"y"}]}]}`)
	assert.False(t, empty)
	assert.Equal(t, "Group: g1 (file: /rules/a.yml)\n"+
		"Type: alerting\nName: InstanceDown\nState: firing\nQuery: up == 0\nActive Alerts: 2\n---\n"+
		"Type: recording\nName: job:up:sum\nQuery: sum by (job) (up)\n---\n\n"+
		"Group: empty (file: /rules/b.yml)\nNo rules in this group\n\n"+
		"Group: g3 (file: /rules/c.yml)\n"+
		"Type: recording\nName: r2\nQuery: y\n---", text)

	_, empty = render(t, formatRules, `{"groups":[]}`)
	assert.True(t, empty)
}

func TestFormatStatus(t *testing.T) {
	tests := []struct {
		statusType StatusType
		data       string
		expected   string
	}{
		{
			statusType: StatusConfig,
			data:       `{"yaml":"global: {}\n"}`,
			expected:   "{\n  \"yaml\": \"global: {}\\n\"\n}",
		},
		{
			statusType: StatusFlags,
			data:       `{"web.listen-address":"0.0.0.0:9090","alertmanager.timeout":"10s"}`,
			expected:   "alertmanager.timeout: 10s\nweb.listen-address: 0.0.0.0:9090",
		},
		{
			statusType: StatusBuildInfo,
			data: `{"version":"2.48.0","revision":"abc","branch":"HEAD","buildUser":"root@host",
				"buildDate":"20231116-04:35:21","goVersion":"go1.21.4"}`,
			expected: "Version: 2.48.0\nRevision: abc\nBranch: HEAD\nBuild User: root@host\n" +
				"Build Date: 20231116-04:35:21\nGo Version: go1.21.4",
		},
		{
			statusType: StatusTSDB,
			data: `{"headStats":{"numSeries":10},"seriesCountByMetricName":[{"name":"up","value":3}],
				"labelValueCountByLabelName":[],"memoryInBytesByLabelName":[]}`,
			expected: "Head Stats:\n{\n  \"numSeries\": 10\n}\n\n" +
				"Series Count By Metric Name:\n[\n  {\n    \"name\": \"up\",\n    \"value\": 3\n  }\n]\n\n" +
				"Label Value Count By Label Name:\n[]",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.statusType), func(t *testing.T) {
			text, empty := render(t, formatStatus(tt.statusType), tt.data)
			assert.False(t, empty)
			assert.Equal(t, tt.expected, text)
		})
	}
}

func TestFormatRuntimeInfo(t *testing.T) {
	text, _ := render(t, formatStatus(StatusRuntime), `{
		"startTime":"2023-11-14T22:13:20Z","CWD":"/prometheus","reloadConfigSuccess":true,
		"lastConfigTime":"2023-11-14T22:13:21Z","corruptionCount":0,"goroutineCount":42,
		"GOMAXPROCS":4,"GOGC":"","GODEBUG":"","storageRetention":"15d"}`)

	assert.Equal(t, "Start Time: 2023-11-14T22:13:20Z\n"+
		"CWD: /prometheus\n"+
		"Reload Config Success: true\n"+
		"Last Config Time: 2023-11-14T22:13:21Z\n"+
		"Corruption Count: 0\n"+
		"Goroutine Count: 42\n"+
		"GOMAXPROCS: 4\n"+
		"GOGC: none\n"+
		"GODEBUG: none\n"+
		"Storage Retention: 15d", text)
}

func TestFormatWarnings(t *testing.T) {
	assert.Empty(t, formatWarnings(nil))
	assert.Equal(t, "\n\nWarnings:\n- a\n- b", formatWarnings([]string{"a", "b"}))
}
