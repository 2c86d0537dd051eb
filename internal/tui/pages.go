package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/section"
	"github.com/rshade/shepherd/internal/session"
	"github.com/rshade/shepherd/internal/skeleton"
)

// HomePath is the dashboard landing route.
const HomePath = "/" + breadcrumb.DefaultHome

// Page is a built route: its title and the blocks stacked on it.
type Page struct {
	Path   string
	Title  string
	blocks []block
}

// selector returns the page's cursor block, if any.
func (p *Page) selector() (selector, int) {
	for i, b := range p.blocks {
		if s, ok := b.(selector); ok {
			return s, i
		}
	}
	return nil, -1
}

// builder creates blocks for one page generation. Targets are prefixed with
// the generation so a new page never inherits the previous page's regions.
type builder struct {
	ctx  context.Context
	opts Options
	svc  observer.Service
	gen  int
}

func (b *builder) target(name string) observer.Target {
	return observer.Target(fmt.Sprintf("p%d/%s", b.gen, name))
}

func (b *builder) lazyOptions() []lazy.Option {
	opts := []lazy.Option{lazy.WithScheduler(b.opts.Scheduler)}
	switch {
	case b.opts.MaxRetries < 0:
		opts = append(opts, lazy.WithMaxRetries(0))
	case b.opts.MaxRetries > 0:
		opts = append(opts, lazy.WithMaxRetries(b.opts.MaxRetries))
	}
	if b.opts.RetryDelay > 0 {
		opts = append(opts, lazy.WithRetryDelay(b.opts.RetryDelay))
	}
	return opts
}

func (b *builder) skeleton(v skeleton.Variant) skeleton.Options {
	return skeleton.Options{Variant: v, Animate: b.opts.Animate}
}

// add wraps a section config into a block.
func add[T any](b *builder, cfg section.Config[T]) block {
	cfg.Observer = b.opts.observerOptions()
	if cfg.StepDelay == 0 {
		cfg.StepDelay = b.opts.StepDelay
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = b.opts.MaxRetries
	}
	s := section.New(b.ctx, b.svc, cfg, section.WithScheduler(b.opts.Scheduler))
	return &sectionBlock{c: s, target: b.target(cfg.ID)}
}

// route is one entry of the page table.
type route struct {
	prefix string
	title  string
	needs  []session.Capability
	list   func(b *builder) []block
	detail func(b *builder, id int) []block
}

//nolint:gochecknoglobals // Page table.
var routes = []route{
	{prefix: breadcrumb.DefaultHome, title: "Dashboard", list: overviewPage},
	{
		prefix: "members", title: "Members",
		needs: []session.Capability{session.ViewMembers},
		list:  membersPage, detail: memberDetailPage,
	},
	{
		prefix: "giving", title: "Giving",
		needs: []session.Capability{session.ViewFinance},
		list:  givingPage,
	},
	{
		prefix: "sunday-school", title: "Sunday School",
		needs: []session.Capability{session.ViewSundaySchool},
		list:  classesPage, detail: classDetailPage,
	},
	{
		prefix: "events", title: "Events",
		needs: []session.Capability{session.ViewEvents},
		list:  eventsPage, detail: eventDetailPage,
	},
	{
		prefix: "communications", title: "Communications",
		needs: []session.Capability{session.ManageCommunications},
		list:  announcementsPage, detail: announcementDetailPage,
	},
}

// NormalizePath cleans a user-entered path. Empty or "/" becomes the home route.
func NormalizePath(p string) string {
	segs := breadcrumb.Segments(strings.TrimSpace(p))
	if len(segs) == 0 {
		return HomePath
	}
	return "/" + strings.Join(segs, "/")
}

// buildPage resolves path against the route table.
func buildPage(b *builder, path string) *Page {
	segs := breadcrumb.Segments(path)
	switch {
	case len(segs) == 0:
		segs = []string{breadcrumb.DefaultHome}
	case len(segs) > 1 && segs[0] == breadcrumb.DefaultHome:
		// The home segment is implicit: /dashboard/members is /members.
		segs = segs[1:]
	}

	for _, r := range routes {
		if segs[0] != r.prefix {
			continue
		}
		page := &Page{Path: path, Title: r.title}
		if !allowed(b.opts.Session, r.needs) {
			page.blocks = []block{&staticBlock{text: WarningStyle.Render(
				fmt.Sprintf("You do not have access to %s.", r.title))}}
			return page
		}
		switch {
		case len(segs) == 1:
			page.blocks = r.list(b)
			return page
		case len(segs) == 2 && r.detail != nil:
			if id, err := strconv.Atoi(segs[1]); err == nil {
				page.blocks = r.detail(b, id)
				return page
			}
		}
		break
	}
	return &Page{Path: path, Title: "Not Found", blocks: []block{
		&staticBlock{text: WarningStyle.Render(fmt.Sprintf("No page at %s.", path)) + "\n" +
			SubtleStyle.Render("Press g to go to another path.")},
	}}
}

func allowed(s *session.Session, needs []session.Capability) bool {
	for _, c := range needs {
		if !s.Can(c) {
			return false
		}
	}
	return true
}
