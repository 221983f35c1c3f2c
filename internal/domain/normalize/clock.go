package normalize

import (
	"strconv"
	"strings"
)

const secondsPerMinute = 60

// ParseClock converts a display clock string to seconds remaining in the
// period. Accepted shapes: "MM:SS", "M:SS.t", "SS.t", "SS". Empty or
// unparsable clocks map to 0 rather than failing the event.
func ParseClock(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Providers occasionally wrap the clock in "PT11M24.00S" (ISO-8601).
	if strings.HasPrefix(s, "PT") {
		return parseISOClock(s)
	}
	parts := strings.SplitN(s, ":", 2)
	if len(parts) == 2 {
		minutes, err1 := strconv.Atoi(parts[0])
		seconds, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return 0
		}
		return float64(minutes*secondsPerMinute) + seconds
	}
	seconds, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0
	}
	return seconds
}

// parseISOClock handles "PT<m>M<s.t>S" clocks used by the NBA stats feed.
func parseISOClock(s string) float64 {
	s = strings.TrimPrefix(s, "PT")
	s = strings.TrimSuffix(s, "S")
	parts := strings.SplitN(s, "M", 2)
	if len(parts) != 2 {
		return 0
	}
	minutes, err1 := strconv.Atoi(parts[0])
	seconds, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil {
		return 0
	}
	return float64(minutes*secondsPerMinute) + seconds
}
