package section

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/logging"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/skeleton"
)

// Component is the type-erased view of a Section used by page layouts.
type Component interface {
	ID() string
	Title() string
	Attach(target observer.Target) tea.Cmd
	Detach()
	Update(msg tea.Msg) tea.Cmd
	View(width int) string
	State() State
	Err() error
	Visible() bool
	CanRetry() bool
	Retry() tea.Cmd
}

type loadResultMsg[T any] struct {
	id   observer.ID
	gen  uint64
	data T
	err  error
}

type stepDueMsg struct {
	id    observer.ID
	gen   uint64
	index int
}

// Option tunes a Section.
type Option func(*options)

type options struct {
	schedule observer.Scheduler
}

// WithScheduler replaces the timer used for step delays and observer delays.
func WithScheduler(s observer.Scheduler) Option {
	return func(o *options) {
		if s != nil {
			o.schedule = s
		}
	}
}

// Section is one progressively loaded region of a page.
type Section[T any] struct {
	ctx      context.Context
	log      *zerolog.Logger
	cfg      Config[T]
	obs      *observer.Observer
	schedule observer.Scheduler
	skel     skeleton.Model
	// shimmering is set while a skeleton tick chain is armed.
	shimmering bool

	state      State
	data       T
	hasData    bool
	err        error
	retryCount int

	loadGen    uint64
	cancelLoad context.CancelFunc

	started    bool
	revealed   int
	stepGen    uint64
	cancelStep context.CancelFunc
}

var _ Component = (*Section[int])(nil)

// New creates a section. Attach starts observation.
func New[T any](ctx context.Context, svc observer.Service, cfg Config[T], opts ...Option) *Section[T] {
	o := options{schedule: observer.DefaultScheduler}
	for _, opt := range opts {
		opt(&o)
	}
	cfg = cfg.withDefaults()
	log := logging.ComponentLogger(ctx, "section")
	l := log.With().Str("section", cfg.ID).Logger()

	return &Section[T]{
		ctx:      ctx,
		log:      &l,
		cfg:      cfg,
		obs:      observer.New(svc, cfg.Observer, observer.WithScheduler(o.schedule), observer.WithLogger(l)),
		schedule: o.schedule,
		skel:     skeleton.New(cfg.Skeleton),
	}
}

// ID returns the section identifier.
func (s *Section[T]) ID() string { return s.cfg.ID }

// Title returns the section heading.
func (s *Section[T]) Title() string { return s.cfg.Title }

// Strategy returns the configured strategy.
func (s *Section[T]) Strategy() Strategy { return s.cfg.Strategy }

// State returns the lifecycle state.
func (s *Section[T]) State() State { return s.state }

// Data returns the loaded data, if any.
func (s *Section[T]) Data() (T, bool) { return s.data, s.hasData }

// Err returns the last load error.
func (s *Section[T]) Err() error { return s.err }

// RetryCount returns the number of manual retries since the last success.
func (s *Section[T]) RetryCount() int { return s.retryCount }

// MaxRetries returns the retry cap.
func (s *Section[T]) MaxRetries() int { return s.cfg.MaxRetries }

// Visible reports whether the section is in view right now.
func (s *Section[T]) Visible() bool { return s.obs.InView() }

// Seen reports whether the section has ever been in view.
func (s *Section[T]) Seen() bool { return s.obs.HasBeenInView() }

// Revealed returns how many progressive steps are showing.
func (s *Section[T]) Revealed() int { return s.revealed }

// Attach binds the section to a page region. Immediate sections start
// loading here.
func (s *Section[T]) Attach(target observer.Target) tea.Cmd {
	cmds := []tea.Cmd{s.obs.Attach(target)}
	switch {
	case s.cfg.Strategy == StrategyImmediate && s.state == StateIdle:
		cmds = append(cmds, s.load())
	case s.obs.HasBeenInView():
		// Sticky flags emit no change on re-attach, so resume from them.
		cmds = append(cmds, s.visibilityChanged(observer.ChangedMsg{
			ObserverID:    s.obs.ID(),
			InView:        s.obs.InView(),
			HasBeenInView: true,
		}))
	}
	cmds = append(cmds, s.startShimmer())
	return tea.Batch(cmds...)
}

// Detach releases the observer and cancels pending loads and steps.
func (s *Section[T]) Detach() {
	s.obs.Detach()
	s.shimmering = false
	s.cancelLoading()
	s.cancelSteps()
	if s.state != StateLoading {
		return
	}
	s.state = StateIdle
	if s.cfg.Strategy == StrategyProgressive {
		s.started = false
		s.revealed = 0
	}
}

// CanRetry reports whether the retry affordance is enabled.
func (s *Section[T]) CanRetry() bool {
	return s.state == StateErrored && s.retryCount < s.cfg.MaxRetries
}

// Retry reloads an errored section while retries remain.
func (s *Section[T]) Retry() tea.Cmd {
	if !s.CanRetry() {
		return nil
	}
	s.retryCount++
	s.log.Debug().Ctx(s.ctx).Int("attempt", s.retryCount).Msg("retrying section load")
	return s.load()
}

// Update routes observer, load, step and shimmer messages.
func (s *Section[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case observer.ChangedMsg:
		if msg.ObserverID != s.obs.ID() {
			return nil
		}
		return s.visibilityChanged(msg)
	case loadResultMsg[T]:
		if msg.id != s.obs.ID() || msg.gen != s.loadGen {
			return nil
		}
		s.finish(msg)
		return nil
	case stepDueMsg:
		if msg.id != s.obs.ID() || msg.gen != s.stepGen {
			return nil
		}
		s.cancelSteps()
		return s.reveal(msg.index)
	}

	if s.skel.Owns(msg) {
		if !s.placeholderShown() {
			s.shimmering = false
			return nil
		}
		var cmd tea.Cmd
		s.skel, cmd = s.skel.Update(msg)
		return cmd
	}
	return s.obs.Update(msg)
}

// placeholderShown reports whether View draws the skeleton.
func (s *Section[T]) placeholderShown() bool {
	if s.cfg.Strategy == StrategyProgressive {
		return s.revealed < len(s.cfg.Steps)
	}
	return s.state == StateIdle || s.state == StateLoading
}

// startShimmer arms a skeleton tick chain unless one is running or the
// skeleton is hidden.
func (s *Section[T]) startShimmer() tea.Cmd {
	if s.shimmering || !s.placeholderShown() {
		return nil
	}
	var cmd tea.Cmd
	s.skel, cmd = s.skel.Start()
	s.shimmering = cmd != nil
	return cmd
}

func (s *Section[T]) visibilityChanged(msg observer.ChangedMsg) tea.Cmd {
	switch s.cfg.Strategy {
	case StrategyLazy, StrategyOnDemand:
		if msg.InView && s.state == StateIdle && !s.hasData {
			return s.load()
		}
	case StrategyProgressive:
		if msg.HasBeenInView && !s.started {
			return s.startSteps()
		}
	case StrategyImmediate:
	}
	return nil
}

func (s *Section[T]) load() tea.Cmd {
	if s.cfg.Load == nil || s.cfg.Strategy == StrategyProgressive {
		return nil
	}
	s.cancelLoading()
	s.loadGen++
	s.state = StateLoading
	s.err = nil

	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelLoad = cancel
	id, gen, load := s.obs.ID(), s.loadGen, s.cfg.Load

	return tea.Batch(func() tea.Msg {
		data, err := load(ctx)
		return loadResultMsg[T]{id: id, gen: gen, data: data, err: err}
	}, s.startShimmer())
}

func (s *Section[T]) finish(msg loadResultMsg[T]) {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	if msg.err != nil {
		s.state = StateErrored
		s.err = msg.err
		s.log.Warn().Ctx(s.ctx).
			Int("retry_count", s.retryCount).
			Int("max_retries", s.cfg.MaxRetries).
			Err(msg.err).
			Msg("section load failed")
		return
	}
	s.state = StateLoaded
	s.data = msg.data
	s.hasData = true
	s.retryCount = 0
}

func (s *Section[T]) startSteps() tea.Cmd {
	s.started = true
	s.revealed = 0
	if len(s.cfg.Steps) == 0 {
		s.state = StateLoaded
		return nil
	}
	s.state = StateLoading
	return tea.Batch(s.scheduleStep(0), s.startShimmer())
}

// reveal shows step index and schedules the next one.
func (s *Section[T]) reveal(index int) tea.Cmd {
	s.revealed = index + 1
	if s.revealed >= len(s.cfg.Steps) {
		s.state = StateLoaded
		return nil
	}
	return s.scheduleStep(s.revealed)
}

func (s *Section[T]) scheduleStep(index int) tea.Cmd {
	d := s.cfg.stepDelay(index)
	if d == 0 {
		return s.reveal(index)
	}
	s.cancelSteps()
	s.stepGen++
	ctx, cancel := context.WithCancel(s.ctx)
	s.cancelStep = cancel
	return s.schedule(ctx, d, stepDueMsg{id: s.obs.ID(), gen: s.stepGen, index: index})
}

func (s *Section[T]) cancelLoading() {
	if s.cancelLoad != nil {
		s.cancelLoad()
		s.cancelLoad = nil
	}
	s.loadGen++
}

func (s *Section[T]) cancelSteps() {
	if s.cancelStep != nil {
		s.cancelStep()
		s.cancelStep = nil
	}
	s.stepGen++
}
