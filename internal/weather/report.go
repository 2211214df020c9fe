package weather

import (
	"fmt"
	"strconv"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Conditions holds one city's reading
type Conditions struct {
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	Humidity    float64 `json:"humidity"`
	WindSpeed   float64 `json:"wind_speed"`
}

// Report is a successful lookup. Results keeps the cities in the order the
// backend sent them, which is also the order they are rendered in.
type Report struct {
	Timestamp string                                     `json:"timestamp"`
	Results   *orderedmap.OrderedMap[string, Conditions] `json:"results"`
}

// Format renders the report as the text block returned to the RPC client.
func (r *Report) Format() string {
	var lines []string
	lines = append(lines, fmt.Sprintf("Weather Information (Retrieved: %s)", r.Timestamp))
	lines = append(lines, strings.Repeat("=", 60))

	for pair := r.Results.Oldest(); pair != nil; pair = pair.Next() {
		info := pair.Value
		lines = append(lines, fmt.Sprintf("\n🌍 %s", pair.Key))
		lines = append(lines, fmt.Sprintf("   Temperature: %s°C", formatNumber(info.Temperature)))
		lines = append(lines, fmt.Sprintf("   Condition: %s", info.Condition))
		lines = append(lines, fmt.Sprintf("   Humidity: %s%%", formatNumber(info.Humidity)))
		lines = append(lines, fmt.Sprintf("   Wind Speed: %s km/h", formatNumber(info.WindSpeed)))
	}

	return strings.Join(lines, "\n")
}

// formatNumber renders whole values without a decimal point (18, not 18.0)
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
