package section

import (
	"fmt"
	"strings"
)

// Strategy governs when a section loads relative to its visibility.
type Strategy int

const (
	// StrategyImmediate loads on attach regardless of visibility.
	StrategyImmediate Strategy = iota
	// StrategyLazy loads the first time the section becomes visible.
	StrategyLazy
	// StrategyOnDemand loads on first visibility but keeps observing, so
	// Visible tracks the current state for pause and resume decisions.
	StrategyOnDemand
	// StrategyProgressive ignores the loader and reveals Steps one at a
	// time once the section is visible.
	StrategyProgressive
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case StrategyImmediate:
		return "immediate"
	case StrategyLazy:
		return "lazy"
	case StrategyOnDemand:
		return "on-demand"
	case StrategyProgressive:
		return "progressive"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a strategy name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "immediate":
		return StrategyImmediate, nil
	case "lazy":
		return StrategyLazy, nil
	case "on-demand", "ondemand", "on_demand":
		return StrategyOnDemand, nil
	case "progressive":
		return StrategyProgressive, nil
	default:
		return StrategyLazy, fmt.Errorf("unknown load strategy %q", s)
	}
}

// State is the lifecycle of one section.
type State int

// Section states.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateErrored
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateErrored:
		return "errored"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
