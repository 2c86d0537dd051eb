package observer

import (
	"context"
	"errors"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
)

// ID identifies an Observer in messages.
type ID uint64

//nolint:gochecknoglobals // Process-wide observer ID sequence.
var nextID atomic.Uint64

// ChangedMsg is emitted whenever an observer's flags change.
type ChangedMsg struct {
	ObserverID    ID
	InView        bool
	HasBeenInView bool
}

// delayElapsedMsg ends an entry delay. gen guards against stale timers.
type delayElapsedMsg struct {
	id  ID
	gen uint64
}

// Option customizes an Observer.
type Option func(*Observer)

// WithScheduler replaces the delay scheduler (used by tests).
func WithScheduler(s Scheduler) Option {
	return func(o *Observer) {
		if s != nil {
			o.schedule = s
		}
	}
}

// WithLogger attaches a logger for session lifecycle events.
func WithLogger(l zerolog.Logger) Option {
	return func(o *Observer) { o.log = l }
}

// Observer tracks the visibility of a single target.
//
// All methods must be called from the event loop goroutine.
type Observer struct {
	id       ID
	svc      Service
	opts     Options
	schedule Scheduler
	log      zerolog.Logger

	target     Target
	attached   bool
	handle     Handle
	hasSession bool
	failedOpen bool

	inView        bool
	hasBeenInView bool

	gen         uint64
	cancelDelay context.CancelFunc
}

// New creates an unattached observer. svc may be nil, which fails open on Attach.
func New(svc Service, opts Options, options ...Option) *Observer {
	o := &Observer{
		id:       ID(nextID.Add(1)),
		svc:      svc,
		opts:     opts,
		schedule: DefaultScheduler,
		log:      zerolog.Nop(),
	}
	for _, opt := range options {
		opt(o)
	}
	return o
}

// ID returns the observer's message identifier.
func (o *Observer) ID() ID { return o.id }

// InView reports whether the target is currently considered visible.
func (o *Observer) InView() bool { return o.inView }

// HasBeenInView reports whether the target has ever been visible. It never reverts.
func (o *Observer) HasBeenInView() bool { return o.hasBeenInView }

// Options returns the active options.
func (o *Observer) Options() Options { return o.opts }

// Observing reports whether a session is currently held.
func (o *Observer) Observing() bool { return o.hasSession }

// Pending reports whether an entry delay is running.
func (o *Observer) Pending() bool { return o.cancelDelay != nil }

// Attach starts observing target. Attaching the same target again is a no-op;
// attaching a different one releases the previous session first.
func (o *Observer) Attach(target Target) tea.Cmd {
	if o.attached && o.target == target {
		return nil
	}
	if o.attached {
		o.Detach()
	}
	o.target = target
	o.attached = true
	return o.observe()
}

// Detach cancels any pending delay and releases the session.
func (o *Observer) Detach() {
	o.cancelPending()
	o.release()
	o.attached = false
}

// SetOptions replaces the options, re-creating the session when they differ.
func (o *Observer) SetOptions(opts Options) tea.Cmd {
	if o.opts.Equal(opts) {
		return nil
	}
	o.opts = opts
	if !o.attached {
		return nil
	}
	o.cancelPending()
	o.release()
	return o.observe()
}

// Trigger forces the in-view transition, as if the target had intersected.
func (o *Observer) Trigger() tea.Cmd {
	o.cancelPending()
	return o.enter()
}

// Reset clears both flags and, for an attached one-shot observer whose session
// was already released, observes again.
func (o *Observer) Reset() tea.Cmd {
	o.cancelPending()
	changed := o.inView || o.hasBeenInView
	o.inView = false
	o.hasBeenInView = false
	o.failedOpen = false

	var cmds []tea.Cmd
	if changed {
		cmds = append(cmds, o.changed())
	}
	if o.attached && !o.hasSession {
		cmds = append(cmds, o.observe())
	}
	return tea.Batch(cmds...)
}

// Update consumes delay timer messages addressed to this observer.
func (o *Observer) Update(msg tea.Msg) tea.Cmd {
	m, ok := msg.(delayElapsedMsg)
	if !ok || m.id != o.id || m.gen != o.gen || o.cancelDelay == nil {
		return nil
	}
	o.cancelPending()
	return o.enter()
}

func (o *Observer) observe() tea.Cmd {
	if o.svc == nil {
		return o.failOpen(ErrUnsupported)
	}
	h, err := o.svc.Observe(o.target, o.handleEntry, o.opts)
	if err != nil {
		return o.failOpen(err)
	}
	o.handle = h
	o.hasSession = true
	return nil
}

// failOpen marks the target visible so content always renders.
func (o *Observer) failOpen(err error) tea.Cmd {
	ev := o.log.Debug()
	if !errors.Is(err, ErrUnsupported) {
		ev = o.log.Warn()
	}
	ev.Str("component", "observer").
		Str("target", string(o.target)).
		Err(err).
		Msg("intersection detection unavailable, treating target as visible")
	o.failedOpen = true
	return o.enter()
}

func (o *Observer) handleEntry(e Entry) tea.Cmd {
	if !o.hasSession {
		return nil
	}

	if e.IsIntersecting {
		if o.opts.Delay <= 0 {
			return o.enter()
		}
		if o.cancelDelay != nil {
			return nil
		}
		o.gen++
		ctx, cancel := context.WithCancel(context.Background())
		o.cancelDelay = cancel
		return o.schedule(ctx, o.opts.Delay, delayElapsedMsg{id: o.id, gen: o.gen})
	}

	// Leaving before the delay elapses must never let the timer flip the flags.
	o.cancelPending()
	if o.opts.TriggerOnce || !o.inView {
		return nil
	}
	o.inView = false
	return o.changed()
}

func (o *Observer) enter() tea.Cmd {
	changed := !o.inView || !o.hasBeenInView
	o.inView = true
	o.hasBeenInView = true
	if o.opts.TriggerOnce {
		o.release()
	}
	if !changed {
		return nil
	}
	return o.changed()
}

func (o *Observer) changed() tea.Cmd {
	msg := ChangedMsg{ObserverID: o.id, InView: o.inView, HasBeenInView: o.hasBeenInView}
	return func() tea.Msg { return msg }
}

func (o *Observer) cancelPending() {
	if o.cancelDelay != nil {
		o.cancelDelay()
		o.cancelDelay = nil
	}
	o.gen++
}

func (o *Observer) release() {
	if !o.hasSession {
		return
	}
	o.hasSession = false
	o.svc.Disconnect(o.handle)
}
