package intervals

import (
	"strconv"
	"strings"
)

// MaxSeconds caps a parsed duration at 99:59:59
const MaxSeconds = 100*3600 - 1

// MaxSets caps the number of sets in a session
const MaxSets = 999

// ParseDuration converts a user-entered time string such as "1:30" or "45" into whole seconds.
// Each colon-separated segment is folded as acc*60 + part. Segments are parsed permissively:
// only the leading digits count, so "12abc" is 12 and "abc" or "-5" is 0.
// Results saturate at MaxSeconds.
func ParseDuration(value string) int {
	seconds := 0
	for _, part := range strings.Split(strings.TrimSpace(value), ":") {
		seconds = seconds*60 + parseSegment(part)
		if seconds >= MaxSeconds {
			return MaxSeconds
		}
	}
	return seconds
}

// ParseSets converts the sets field like ParseDuration, saturating at MaxSets.
func ParseSets(value string) int {
	return min(ParseDuration(value), MaxSets)
}

func parseSegment(part string) int {
	part = strings.TrimSpace(part)
	end := 0
	for end < len(part) && part[end] >= '0' && part[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	n, err := strconv.Atoi(part[:end])
	if err != nil || n > MaxSeconds {
		// Only overflow can fail here
		return MaxSeconds
	}
	return n
}

// FormatSeconds renders seconds the way users type them: "45", "1:30", "1:00:05".
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds/60)%60, seconds%60
	switch {
	case h > 0:
		return strconv.Itoa(h) + ":" + pad2(m) + ":" + pad2(s)
	case m > 0:
		return strconv.Itoa(m) + ":" + pad2(s)
	default:
		return strconv.Itoa(s)
	}
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
