package protocol

import (
	"fmt"
	"strings"
)

// ParseDuration converts an ISO-8601 time duration of the form
// PT[nH][nM][nS] into whole seconds. Only the hours/minutes/seconds subset is
// accepted: calendar servers observed in the wild never send day or week
// components inside an event duration. Any string that does not match the
// subset yields 0; the caller is responsible for logging.
func ParseDuration(duration string) int64 {
	rest, ok := strings.CutPrefix(duration, "PT")
	if !ok || rest == "" {
		return 0
	}

	var total, n int64
	var sawDigit bool
	for _, r := range rest {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int64(r-'0')
			sawDigit = true
		case r == 'H':
			if !sawDigit {
				return 0
			}
			total += n * 3600
			n, sawDigit = 0, false
		case r == 'M':
			if !sawDigit {
				return 0
			}
			total += n * 60
			n, sawDigit = 0, false
		case r == 'S':
			if !sawDigit {
				return 0
			}
			total += n
			n, sawDigit = 0, false
		default:
			return 0
		}
	}
	// Trailing digits without a unit designator make the whole string invalid.
	if sawDigit {
		return 0
	}
	return total
}

// FormatDuration converts whole seconds into an ISO-8601 PT[nH][nM][nS]
// duration. Zero or negative input formats as "PT0S". The output is
// canonical, so FormatDuration(ParseDuration(s)) may differ from s, but
// ParseDuration(FormatDuration(n)) == n holds for every non-negative n.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "PT0S"
	}

	var sb strings.Builder
	sb.WriteString("PT")

	if h := seconds / 3600; h > 0 {
		fmt.Fprintf(&sb, "%dH", h)
		seconds -= h * 3600
	}
	if m := seconds / 60; m > 0 {
		fmt.Fprintf(&sb, "%dM", m)
		seconds -= m * 60
	}
	if seconds > 0 {
		fmt.Fprintf(&sb, "%dS", seconds)
	}
	return sb.String()
}
