package cache

import (
	"fmt"
	"strconv"
	"time"
)

// TTL bounds.
const (
	DefaultTTL = 5 * time.Minute
	MinTTL     = time.Second
	MaxTTL     = 7 * 24 * time.Hour

	hoursPerDay    = 24
	minutesPerHour = 60
)

// ErrInvalidTTL reports a TTL outside [MinTTL, MaxTTL].
var ErrInvalidTTL = fmt.Errorf("TTL must be between %s and %s", MinTTL, MaxTTL)

// NewTTL validates d.
func NewTTL(d time.Duration) (time.Duration, error) {
	if d < MinTTL || d > MaxTTL {
		return 0, fmt.Errorf("%w: got %s", ErrInvalidTTL, d)
	}
	return d, nil
}

// ParseTTL accepts integer seconds ("300") or a duration string ("5m").
func ParseTTL(s string) (time.Duration, error) {
	if seconds, err := strconv.Atoi(s); err == nil {
		return NewTTL(time.Duration(seconds) * time.Second)
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %w", err)
	}
	return NewTTL(d)
}

// FormatTTL renders d compactly: "45s", "5m", "1h30m", "2d3h".
func FormatTTL(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.0fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%.0fm", d.Minutes())
	case d < hoursPerDay*time.Hour:
		h, m := int(d.Hours()), int(d.Minutes())%minutesPerHour
		if m == 0 {
			return fmt.Sprintf("%dh", h)
		}
		return fmt.Sprintf("%dh%dm", h, m)
	default:
		days, h := int(d.Hours())/hoursPerDay, int(d.Hours())%hoursPerDay
		if h == 0 {
			return fmt.Sprintf("%dd", days)
		}
		return fmt.Sprintf("%dd%dh", days, h)
	}
}
