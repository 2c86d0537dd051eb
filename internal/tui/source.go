package tui

import (
	"context"
	"time"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/church"
	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/session"
)

// Source is the data the dashboard pages read. Both *church.Store and
// *church.Client satisfy it.
type Source interface {
	Members(ctx context.Context, page, size int) (church.MemberPage, error)
	Member(ctx context.Context, id int) (church.Member, error)
	Events(ctx context.Context) ([]church.Event, error)
	Gifts(ctx context.Context) ([]church.Gift, error)
	FundTotals(ctx context.Context) ([]church.FundTotal, error)
	Classes(ctx context.Context) ([]church.Class, error)
	Announcements(ctx context.Context) ([]church.Announcement, error)
}

var (
	_ Source = (*church.Store)(nil)
	_ Source = (*church.Client)(nil)
)

// Options wires the dashboard to its data and tunes lazy loading.
type Options struct {
	Source   Source
	Resolver *breadcrumb.Resolver
	Session  *session.Session

	// Images fetches member photos; PhotoURL turns a photo path into the
	// URL handed to it.
	Images   lazy.ImageFetcher
	PhotoURL func(path string) string

	// Scheduler replaces the timer behind observer, step and retry delays.
	Scheduler observer.Scheduler

	RootMargin    string
	ObserverDelay time.Duration
	// MaxRetries caps manual retries per section and per photo, and the
	// automatic retries of the member summary. Zero keeps the defaults and a
	// negative value disables retries. The member directory never retries on
	// its own; r requests the failed page again.
	MaxRetries int
	// RetryDelay is the member summary's backoff between automatic retries.
	RetryDelay time.Duration
	StepDelay  time.Duration
	Animate    bool
	PageSize   int
}

func (o Options) withDefaults() Options {
	if o.Session == nil {
		o.Session = session.Guest()
	}
	if o.Resolver == nil {
		o.Resolver = breadcrumb.NewResolver(nil, nil)
	}
	if o.PhotoURL == nil {
		o.PhotoURL = func(path string) string { return path }
	}
	if o.Scheduler == nil {
		o.Scheduler = observer.DefaultScheduler
	}
	if o.PageSize <= 0 {
		o.PageSize = church.DefaultPageSize
	}
	return o
}

func (o Options) observerOptions() observer.Options {
	return observer.Options{RootMargin: o.RootMargin, Delay: o.ObserverDelay}
}
