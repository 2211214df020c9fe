package weather

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestReport_Format(t *testing.T) {
	results := orderedmap.New[string, Conditions]()
	results.Set("Paris", Conditions{Temperature: 18, Condition: "Cloudy", Humidity: 60, WindSpeed: 12})
	results.Set("Oslo", Conditions{Temperature: -3.5, Condition: "Snow", Humidity: 80.5, WindSpeed: 20})

	report := &Report{
		Timestamp: "2024-01-01T00:00:00Z",
		Results:   results,
	}

	text := report.Format()
	lines := strings.Split(text, "\n")

	assert.Equal(t, "Weather Information (Retrieved: 2024-01-01T00:00:00Z)", lines[0])
	assert.Equal(t, strings.Repeat("=", 60), lines[1])

	assert.Contains(t, text, "🌍 Paris")
	assert.Contains(t, text, "   Temperature: 18°C")
	assert.Contains(t, text, "   Condition: Cloudy")
	assert.Contains(t, text, "   Humidity: 60%")
	assert.Contains(t, text, "   Wind Speed: 12 km/h")

	assert.Contains(t, text, "🌍 Oslo")
	assert.Contains(t, text, "   Temperature: -3.5°C")
	assert.Contains(t, text, "   Humidity: 80.5%")

	// Cities render in the order the backend sent them
	assert.Less(t, strings.Index(text, "Paris"), strings.Index(text, "Oslo"))
}

func TestReport_Format_NoCities(t *testing.T) {
	report := &Report{
		Timestamp: "2024-01-01T00:00:00Z",
		Results:   orderedmap.New[string, Conditions](),
	}

	lines := strings.Split(report.Format(), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Weather Information (Retrieved: 2024-01-01T00:00:00Z)", lines[0])
}

func TestReport_UnmarshalPreservesOrder(t *testing.T) {
	data := []byte(`{
		"timestamp": "2024-01-01T00:00:00Z",
		"results": {
			"Zagreb": {"temperature": 25, "condition": "Sunny", "humidity": 40, "wind_speed": 5},
			"Athens": {"temperature": 30, "condition": "Clear", "humidity": 35, "wind_speed": 8},
			"Berlin": {"temperature": 15, "condition": "Rain", "humidity": 70, "wind_speed": 15}
		}
	}`)

	var report Report
	require.NoError(t, json.Unmarshal(data, &report))

	var got []string
	for pair := report.Results.Oldest(); pair != nil; pair = pair.Next() {
		got = append(got, pair.Key)
	}
	assert.Equal(t, []string{"Zagreb", "Athens", "Berlin"}, got)
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		value    float64
		expected string
	}{
		{18, "18"},
		{18.5, "18.5"},
		{-3.25, "-3.25"},
		{0, "0"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, formatNumber(tt.value))
	}
}
