// Package observertest provides deterministic stand-ins for the observer
// service and delay scheduler.
package observertest

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/shepherd/internal/observer"
)

// Session is one Observe call recorded by FakeService.
type Session struct {
	Handle  observer.Handle
	Target  observer.Target
	Options observer.Options
	cb      observer.Callback
}

// FakeService records sessions and lets tests push entries by hand.
type FakeService struct {
	// Err, when set, is returned from every Observe call.
	Err error

	Sessions     []Session
	Disconnected []observer.Handle
	active       map[observer.Handle]Session
	next         observer.Handle
}

// NewFakeService returns an empty service.
func NewFakeService() *FakeService {
	return &FakeService{active: make(map[observer.Handle]Session)}
}

// Observe implements observer.Service.
func (f *FakeService) Observe(target observer.Target, cb observer.Callback, opts observer.Options) (observer.Handle, error) {
	if f.Err != nil {
		return 0, f.Err
	}
	f.next++
	s := Session{Handle: f.next, Target: target, Options: opts, cb: cb}
	f.Sessions = append(f.Sessions, s)
	f.active[s.Handle] = s
	return s.Handle, nil
}

// Disconnect implements observer.Service.
func (f *FakeService) Disconnect(h observer.Handle) {
	if _, ok := f.active[h]; !ok {
		return
	}
	delete(f.active, h)
	f.Disconnected = append(f.Disconnected, h)
}

// Active reports the number of live sessions.
func (f *FakeService) Active() int { return len(f.active) }

// Fire delivers an entry to every live session on target and returns the
// batched commands.
func (f *FakeService) Fire(target observer.Target, intersecting bool) tea.Cmd {
	ratio := 0.0
	if intersecting {
		ratio = 1
	}
	var cmds []tea.Cmd
	for _, s := range f.Sessions {
		if _, ok := f.active[s.Handle]; !ok || s.Target != target {
			continue
		}
		cmds = append(cmds, s.cb(observer.Entry{Target: target, IsIntersecting: intersecting, Ratio: ratio}))
	}
	return tea.Batch(cmds...)
}

// Scheduled is one delay recorded by Clock.
type Scheduled struct {
	Delay time.Duration
	Msg   tea.Msg
	ctx   context.Context
}

// Cancelled reports whether the scheduling context has been cancelled.
func (s Scheduled) Cancelled() bool { return s.ctx.Err() != nil }

// Clock is an observer.Scheduler that never sleeps. Commands it returns
// yield their message at once unless the context was cancelled first.
type Clock struct {
	Scheduled []Scheduled
}

// Schedule implements observer.Scheduler.
func (c *Clock) Schedule(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	c.Scheduled = append(c.Scheduled, Scheduled{Delay: d, Msg: msg, ctx: ctx})
	return func() tea.Msg {
		if ctx.Err() != nil {
			return nil
		}
		return msg
	}
}

// Last returns the most recent scheduled delay. It panics when none exist.
func (c *Clock) Last() Scheduled { return c.Scheduled[len(c.Scheduled)-1] }

// Drain runs cmd and every command it produces, feeding each resulting
// message to update. Batches are flattened.
func Drain(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) []tea.Msg {
	var msgs []tea.Msg
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg := c()
		switch m := msg.(type) {
		case nil:
			continue
		case tea.BatchMsg:
			queue = append(queue, m...)
			continue
		}
		msgs = append(msgs, msg)
		if next := update(msg); next != nil {
			queue = append(queue, next)
		}
	}
	return msgs
}
