package lazy

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/logging"
	"github.com/rshade/shepherd/internal/observer"
)

// LoadFunc fetches the data behind a lazy region.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// LoadState is a snapshot of a Loader.
type LoadState[T any] struct {
	Data       T
	HasData    bool
	Loading    bool
	Err        error
	RetryCount int
	MaxRetries int
	RetryDelay time.Duration
}

type loadResultMsg[T any] struct {
	id   observer.ID
	gen  uint64
	data T
	err  error
}

type retryDueMsg struct {
	id  observer.ID
	gen uint64
}

// Loader runs a LoadFunc the first time its region enters view. Failed loads
// are retried automatically after RetryDelay until RetryCount reaches
// MaxRetries; after that the error is terminal until Retry is called.
type Loader[T any] struct {
	ctx   context.Context
	log   *zerolog.Logger
	obs   *observer.Observer
	load  LoadFunc[T]
	cfg   settings
	state LoadState[T]

	gen           uint64
	cancelLoad    context.CancelFunc
	cancelBackoff context.CancelFunc
}

// NewLoader creates a loader bound to svc.
func NewLoader[T any](
	ctx context.Context,
	svc observer.Service,
	load LoadFunc[T],
	opts observer.Options,
	options ...Option,
) *Loader[T] {
	cfg := newSettings(options)
	log := logging.ComponentLogger(ctx, "lazy.loader")
	return &Loader[T]{
		ctx:  ctx,
		log:  log,
		obs:  observer.New(svc, opts, observer.WithScheduler(cfg.schedule), observer.WithLogger(*log)),
		load: load,
		cfg:  cfg,
		state: LoadState[T]{
			MaxRetries: cfg.maxRetries,
			RetryDelay: cfg.retryDelay,
		},
	}
}

// Attach binds the loader to a page region.
func (l *Loader[T]) Attach(target observer.Target) tea.Cmd { return l.obs.Attach(target) }

// Detach releases the observer and cancels any load or backoff in flight.
func (l *Loader[T]) Detach() {
	l.obs.Detach()
	l.stop()
	l.state.Loading = false
}

// State returns a snapshot of the load state.
func (l *Loader[T]) State() LoadState[T] { return l.state }

// Observer exposes visibility for rendering decisions.
func (l *Loader[T]) Observer() *observer.Observer { return l.obs }

// RetryPending reports whether an automatic retry is scheduled.
func (l *Loader[T]) RetryPending() bool { return l.cancelBackoff != nil }

// Terminal reports an error with no automatic retry remaining.
func (l *Loader[T]) Terminal() bool {
	return l.state.Err != nil && !l.state.Loading && l.cancelBackoff == nil
}

// Retry re-invokes the loader immediately, unless a load is in flight.
// A pending backoff is cancelled.
func (l *Loader[T]) Retry() tea.Cmd {
	if l.state.Loading {
		return nil
	}
	return l.start()
}

// Update routes observer, result and backoff messages.
func (l *Loader[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case observer.ChangedMsg:
		if msg.ObserverID != l.obs.ID() || !msg.InView {
			return nil
		}
		if l.state.HasData || l.state.Loading || l.state.Err != nil {
			return nil
		}
		return l.start()
	case loadResultMsg[T]:
		if msg.id != l.obs.ID() || msg.gen != l.gen {
			return nil
		}
		return l.finish(msg)
	case retryDueMsg:
		if msg.id != l.obs.ID() || msg.gen != l.gen || l.cancelBackoff == nil {
			return nil
		}
		return l.start()
	default:
		return l.obs.Update(msg)
	}
}

func (l *Loader[T]) start() tea.Cmd {
	l.stop()
	l.gen++
	l.state.Loading = true

	ctx, cancel := context.WithCancel(l.ctx)
	l.cancelLoad = cancel
	id, gen, load := l.obs.ID(), l.gen, l.load

	return func() tea.Msg {
		data, err := load(ctx)
		return loadResultMsg[T]{id: id, gen: gen, data: data, err: err}
	}
}

func (l *Loader[T]) finish(msg loadResultMsg[T]) tea.Cmd {
	l.state.Loading = false
	if l.cancelLoad != nil {
		l.cancelLoad()
		l.cancelLoad = nil
	}

	if msg.err == nil {
		l.state.Data = msg.data
		l.state.HasData = true
		l.state.Err = nil
		l.state.RetryCount = 0
		return nil
	}

	l.state.Err = msg.err
	if l.state.RetryCount >= l.state.MaxRetries {
		l.log.Error().Ctx(l.ctx).
			Int("retries", l.state.RetryCount).
			Err(msg.err).
			Msg("lazy load failed, retries exhausted")
		return nil
	}

	l.state.RetryCount++
	l.log.Warn().Ctx(l.ctx).
		Int("attempt", l.state.RetryCount).
		Dur("delay", l.state.RetryDelay).
		Err(msg.err).
		Msg("lazy load failed, retrying")

	ctx, cancel := context.WithCancel(l.ctx)
	l.cancelBackoff = cancel
	return l.cfg.schedule(ctx, l.state.RetryDelay, retryDueMsg{id: l.obs.ID(), gen: l.gen})
}

func (l *Loader[T]) stop() {
	if l.cancelLoad != nil {
		l.cancelLoad()
		l.cancelLoad = nil
	}
	if l.cancelBackoff != nil {
		l.cancelBackoff()
		l.cancelBackoff = nil
	}
	l.gen++
}
