package series

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseInterval converts an interval string such as "30s", "5m", "4h" or
// "1d" into a duration. The accepted form is a positive integer followed
// by a single unit letter.
func ParseInterval(s string) (time.Duration, error) {
	trimmed := strings.TrimSpace(s)
	if len(trimmed) < 2 {
		return 0, fmt.Errorf("series: invalid interval %q", s)
	}

	unit := trimmed[len(trimmed)-1]
	amount, err := strconv.Atoi(trimmed[:len(trimmed)-1])
	if err != nil {
		return 0, fmt.Errorf("series: invalid interval amount in %q", s)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("series: interval amount must be positive, got %q", s)
	}

	switch unit {
	case 's':
		return time.Duration(amount) * time.Second, nil
	case 'm':
		return time.Duration(amount) * time.Minute, nil
	case 'h':
		return time.Duration(amount) * time.Hour, nil
	case 'd':
		return time.Duration(amount) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("series: unknown interval unit %q in %q", string(unit), s)
	}
}

// IntervalOrDefault parses s and substitutes fallback when the string is
// unusable. Parsing failure is never fatal for callers.
func IntervalOrDefault(s string, fallback time.Duration) time.Duration {
	d, err := ParseInterval(s)
	if err != nil {
		return fallback
	}
	return d
}
