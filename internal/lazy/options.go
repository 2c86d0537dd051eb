package lazy

import (
	"time"

	"github.com/rshade/shepherd/internal/observer"
)

// Defaults for retry behavior.
const (
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
)

// Option tunes a lazy component.
type Option func(*settings)

type settings struct {
	schedule   observer.Scheduler
	maxRetries int
	retryDelay time.Duration
}

func newSettings(opts []Option) settings {
	s := settings{
		schedule:   observer.DefaultScheduler,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithScheduler replaces the timer used for observer delays and backoff.
func WithScheduler(sch observer.Scheduler) Option {
	return func(s *settings) {
		if sch != nil {
			s.schedule = sch
		}
	}
}

// WithMaxRetries caps retries. Zero disables them; negative values are ignored.
func WithMaxRetries(n int) Option {
	return func(s *settings) {
		if n >= 0 {
			s.maxRetries = n
		}
	}
}

// WithRetryDelay sets the automatic backoff delay.
func WithRetryDelay(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.retryDelay = d
		}
	}
}
