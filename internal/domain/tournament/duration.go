package tournament

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	day = 24 * time.Hour

	// DefaultTimeframe applies whenever a timeframe string cannot be parsed.
	DefaultTimeframe = 28 * day

	maxDuration = time.Duration(1<<63 - 1)
)

var timeframePattern = regexp.MustCompile(`(\d+)\s*(minutes|minute|days|day|weeks|week|months|month)`)

// ParseDuration converts strings such as "2 weeks" or "30minutes" into a
// duration. Months are 30 days; no calendar arithmetic is applied.
func ParseDuration(timeframe string) time.Duration {
	d, ok := parseTimeframe(timeframe)
	if !ok {
		return DefaultTimeframe
	}
	return d
}

// ValidTimeframe reports whether timeframe parses without falling back to the default.
func ValidTimeframe(timeframe string) bool {
	_, ok := parseTimeframe(timeframe)
	return ok
}

func parseTimeframe(timeframe string) (time.Duration, bool) {
	m := timeframePattern.FindStringSubmatch(strings.ToLower(timeframe))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}

	var unit time.Duration
	switch strings.TrimSuffix(m[2], "s") {
	case "minute":
		unit = time.Minute
	case "day":
		unit = day
	case "week":
		unit = 7 * day
	case "month":
		unit = 30 * day
	}
	if n > int64(maxDuration/unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}
