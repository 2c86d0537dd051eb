package observer

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidMargin is returned when a RootMargin string cannot be parsed.
var ErrInvalidMargin = errors.New("invalid root margin")

// Options configures one observation session.
type Options struct {
	// Root names the scroll container. Empty selects the service's default viewport.
	Root string
	// RootMargin grows (or shrinks, when negative) the root before intersecting,
	// in CSS shorthand: "10px", "10px 0px", "10px 0px 20px", "10px 0px 20px 0px".
	// px values are rows; % values are relative to the root height.
	RootMargin string
	// Thresholds are visibility ratios in [0, 1] at which the callback fires.
	// Nil behaves as []float64{0}.
	Thresholds []float64
	// TriggerOnce stops observation after the first qualifying intersection.
	TriggerOnce bool
	// Delay postpones the in-view transition; leaving view first cancels it.
	Delay time.Duration
}

// Equal reports whether o and other would create identical sessions.
func (o Options) Equal(other Options) bool {
	if o.Root != other.Root || o.RootMargin != other.RootMargin ||
		o.TriggerOnce != other.TriggerOnce || o.Delay != other.Delay {
		return false
	}
	a, b := o.thresholds(), other.thresholds()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (o Options) thresholds() []float64 {
	if len(o.Thresholds) == 0 {
		return []float64{0}
	}
	return o.Thresholds
}

// Margin is a parsed RootMargin. Only the vertical edges matter on a
// vertically scrolling page; left and right are kept for completeness.
type Margin struct {
	Top, Right, Bottom, Left marginValue
}

type marginValue struct {
	amount  float64
	percent bool
}

func (v marginValue) rows(rootHeight int) int {
	if v.percent {
		return int(v.amount * float64(rootHeight) / 100) //nolint:mnd // Percentage conversion.
	}
	return int(v.amount)
}

// TopRows returns the top margin in rows for the given root height.
func (m Margin) TopRows(rootHeight int) int { return m.Top.rows(rootHeight) }

// BottomRows returns the bottom margin in rows for the given root height.
func (m Margin) BottomRows(rootHeight int) int { return m.Bottom.rows(rootHeight) }

// ParseMargin parses CSS margin shorthand with one to four values.
func ParseMargin(s string) (Margin, error) {
	fields := strings.Fields(strings.TrimSpace(s))
	if len(fields) == 0 {
		return Margin{}, nil
	}
	if len(fields) > 4 { //nolint:mnd // CSS shorthand has at most four values.
		return Margin{}, fmt.Errorf("%w: %q has more than four values", ErrInvalidMargin, s)
	}

	values := make([]marginValue, len(fields))
	for i, f := range fields {
		v, err := parseMarginValue(f)
		if err != nil {
			return Margin{}, fmt.Errorf("%w: %q: %w", ErrInvalidMargin, s, err)
		}
		values[i] = v
	}

	switch len(values) {
	case 1:
		return Margin{Top: values[0], Right: values[0], Bottom: values[0], Left: values[0]}, nil
	case 2: //nolint:mnd // vertical horizontal
		return Margin{Top: values[0], Right: values[1], Bottom: values[0], Left: values[1]}, nil
	case 3: //nolint:mnd // top horizontal bottom
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[1]}, nil
	default:
		return Margin{Top: values[0], Right: values[1], Bottom: values[2], Left: values[3]}, nil
	}
}

func parseMarginValue(f string) (marginValue, error) {
	switch {
	case strings.HasSuffix(f, "%"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(f, "%"), 64)
		if err != nil {
			return marginValue{}, err
		}
		return marginValue{amount: n, percent: true}, nil
	case strings.HasSuffix(f, "px"):
		n, err := strconv.ParseFloat(strings.TrimSuffix(f, "px"), 64)
		if err != nil {
			return marginValue{}, err
		}
		return marginValue{amount: n}, nil
	default:
		n, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return marginValue{}, err
		}
		if n != 0 {
			return marginValue{}, fmt.Errorf("value %q needs a px or %% unit", f)
		}
		return marginValue{}, nil
	}
}
