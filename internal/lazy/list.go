package lazy

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/logging"
	"github.com/rshade/shepherd/internal/observer"
)

// Page is one batch returned by a PageFunc.
type Page[T any] struct {
	Items   []T
	HasMore bool
}

// PageFunc loads page number page, counting from 1.
type PageFunc[T any] func(ctx context.Context, page int) (Page[T], error)

// settleMsg re-checks the sentinel once the page that just arrived has been
// laid out.
type settleMsg struct {
	id observer.ID
}

type pageResultMsg[T any] struct {
	id   observer.ID
	gen  uint64
	page Page[T]
	err  error
}

// List accumulates pages while a sentinel region at the end of the list is
// in view. The sentinel observer is continuous, so scrolling away and back
// requests the next page.
type List[T any] struct {
	ctx   context.Context
	log   *zerolog.Logger
	obs   *observer.Observer
	fetch PageFunc[T]

	items   []T
	next    int
	hasMore bool
	loading bool
	err     error

	gen    uint64
	cancel context.CancelFunc
}

// NewList creates a list bound to svc. TriggerOnce is always cleared. Only
// WithScheduler applies; a failed page waits for Retry.
func NewList[T any](
	ctx context.Context,
	svc observer.Service,
	fetch PageFunc[T],
	opts observer.Options,
	options ...Option,
) *List[T] {
	cfg := newSettings(options)
	opts.TriggerOnce = false
	log := logging.ComponentLogger(ctx, "lazy.list")
	return &List[T]{
		ctx:     ctx,
		log:     log,
		obs:     observer.New(svc, opts, observer.WithScheduler(cfg.schedule), observer.WithLogger(*log)),
		fetch:   fetch,
		next:    1,
		hasMore: true,
	}
}

// Attach binds the end-of-list sentinel to a page region.
func (l *List[T]) Attach(sentinel observer.Target) tea.Cmd { return l.obs.Attach(sentinel) }

// Detach releases the sentinel observer and abandons a page in flight.
func (l *List[T]) Detach() {
	l.obs.Detach()
	l.abandon()
}

// Items returns every item loaded so far.
func (l *List[T]) Items() []T { return l.items }

// HasMore reports whether further pages exist.
func (l *List[T]) HasMore() bool { return l.hasMore }

// Loading reports a page request in flight.
func (l *List[T]) Loading() bool { return l.loading }

// Err returns the error that stopped paging, if any.
func (l *List[T]) Err() error { return l.err }

// Pages returns the number of pages loaded.
func (l *List[T]) Pages() int { return l.next - 1 }

// Retry clears a paging error and requests the failed page again.
func (l *List[T]) Retry() tea.Cmd {
	if l.err == nil || l.loading {
		return nil
	}
	l.err = nil
	return l.maybeLoad()
}

// Reset discards loaded pages and starts again from page 1.
func (l *List[T]) Reset() tea.Cmd {
	l.abandon()
	l.items = nil
	l.next = 1
	l.hasMore = true
	l.err = nil
	return l.maybeLoad()
}

// Update routes sentinel and page messages.
func (l *List[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case observer.ChangedMsg:
		if msg.ObserverID != l.obs.ID() {
			return nil
		}
		return l.maybeLoad()
	case pageResultMsg[T]:
		if msg.id != l.obs.ID() || msg.gen != l.gen {
			return nil
		}
		return l.finish(msg)
	case settleMsg:
		if msg.id != l.obs.ID() {
			return nil
		}
		return l.maybeLoad()
	default:
		return l.obs.Update(msg)
	}
}

func (l *List[T]) maybeLoad() tea.Cmd {
	if !l.obs.InView() || !l.hasMore || l.loading || l.err != nil {
		return nil
	}

	l.gen++
	l.loading = true
	ctx, cancel := context.WithCancel(l.ctx)
	l.cancel = cancel
	id, gen, page, fetch := l.obs.ID(), l.gen, l.next, l.fetch

	return func() tea.Msg {
		p, err := fetch(ctx, page)
		return pageResultMsg[T]{id: id, gen: gen, page: p, err: err}
	}
}

func (l *List[T]) finish(msg pageResultMsg[T]) tea.Cmd {
	l.loading = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if msg.err != nil {
		l.err = msg.err
		l.log.Warn().Ctx(l.ctx).Int("page", l.next).Err(msg.err).Msg("page load failed")
		return nil
	}

	l.items = append(l.items, msg.page.Items...)
	l.hasMore = msg.page.HasMore
	l.next++

	// The sentinel may still be visible after a short page.
	id := l.obs.ID()
	return func() tea.Msg { return settleMsg{id: id} }
}

func (l *List[T]) abandon() {
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	if l.loading {
		l.loading = false
		l.gen++
	}
}
