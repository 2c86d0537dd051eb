package section

import (
	"context"
	"time"

	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/skeleton"
)

// Defaults applied to zero Config fields.
const (
	DefaultMaxRetries = 3
	DefaultStepDelay  = 500 * time.Millisecond
)

// InheritDelay marks a step that waits Config.StepDelay.
const InheritDelay time.Duration = -1

// LoadFunc fetches a section's data.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Step is one stage of a progressive reveal. Delay is measured from the
// previous reveal, or from entering view for the first step.
type Step struct {
	Title  string
	Delay  time.Duration
	Render func(width int) string
}

// NewStep returns a step that waits the section's step delay (500ms unless
// configured). Build a Step literal with Delay 0 to reveal immediately.
func NewStep(title string, render func(width int) string) Step {
	return Step{Title: title, Delay: InheritDelay, Render: render}
}

// Config describes one section.
type Config[T any] struct {
	ID       string
	Title    string
	Strategy Strategy
	Load     LoadFunc[T]
	Render   func(data T, width int) string

	Steps     []Step
	StepDelay time.Duration

	Skeleton skeleton.Options

	// MaxRetries caps manual retries. Zero selects DefaultMaxRetries and a
	// negative value disables retry.
	MaxRetries int

	Observer observer.Options
}

func (c Config[T]) withDefaults() Config[T] {
	switch {
	case c.MaxRetries == 0:
		c.MaxRetries = DefaultMaxRetries
	case c.MaxRetries < 0:
		c.MaxRetries = 0
	}
	if c.StepDelay <= 0 {
		c.StepDelay = DefaultStepDelay
	}
	switch c.Strategy {
	case StrategyLazy, StrategyProgressive:
		c.Observer.TriggerOnce = true
	case StrategyOnDemand, StrategyImmediate:
		c.Observer.TriggerOnce = false
	}
	return c
}

func (c Config[T]) stepDelay(i int) time.Duration {
	d := c.Steps[i].Delay
	if d < 0 {
		return c.StepDelay
	}
	return d
}
