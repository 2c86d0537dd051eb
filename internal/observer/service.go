package observer

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrUnsupported reports that the host cannot detect intersections.
var ErrUnsupported = errors.New("intersection detection unsupported")

// Target identifies a region of the render surface.
type Target string

// Handle identifies one observation session inside a Service.
type Handle uint64

// Entry is one intersection notification.
type Entry struct {
	Target         Target
	IsIntersecting bool
	Ratio          float64
}

// Callback receives entries. It runs inside the event loop and may return a
// command to schedule follow-up work.
type Callback func(Entry) tea.Cmd

// Service is the intersection-detection primitive.
type Service interface {
	// Observe starts a session for target. Entries are delivered to cb.
	Observe(target Target, cb Callback, opts Options) (Handle, error)
	// Disconnect ends a session. Disconnecting an unknown handle is a no-op.
	Disconnect(h Handle)
}

// Scheduler returns a command that yields msg after d, or nil once ctx is cancelled.
type Scheduler func(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd

// DefaultScheduler waits on a real timer.
func DefaultScheduler(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	return func() tea.Msg {
		if d <= 0 {
			if ctx.Err() != nil {
				return nil
			}
			return msg
		}
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			return msg
		}
	}
}
