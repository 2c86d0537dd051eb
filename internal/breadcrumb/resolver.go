package breadcrumb

import (
	"context"
	"net/url"
	"strings"

	"github.com/rshade/shepherd/internal/logging"
)

// Item is one breadcrumb.
type Item struct {
	Label         string `json:"label"`
	Href          string `json:"href,omitempty"`
	IsCurrentPage bool   `json:"isCurrentPage"`
	Loading       bool   `json:"loading,omitempty"`
}

// Trail is a resolved path. Home is the implicit home crumb and is not part
// of Items.
type Trail struct {
	Home  *Item  `json:"home,omitempty"`
	Items []Item `json:"items"`
}

// Pending reports whether any item still awaits a lookup.
func (t Trail) Pending() bool {
	for _, it := range t.Items {
		if it.Loading {
			return true
		}
	}
	return false
}

// Labels returns the item labels in order, without the home crumb.
func (t Trail) Labels() []string {
	out := make([]string, len(t.Items))
	for i, it := range t.Items {
		out[i] = it.Label
	}
	return out
}

// Resolver maps paths to trails.
type Resolver struct {
	// Labels is the static dictionary.
	Labels map[string]string
	// Endpoints maps a route prefix to the base URL of its record lookup.
	Endpoints map[string]string
	// Fetcher performs record lookups. Nil makes every lookup fall back.
	Fetcher Fetcher
	// Home is the leading segment shown as the home crumb. Empty disables it.
	Home string
}

// NewResolver returns a resolver with the default dictionary and home.
func NewResolver(endpoints map[string]string, f Fetcher) *Resolver {
	return &Resolver{
		Labels:    DefaultLabels(),
		Endpoints: endpoints,
		Fetcher:   f,
		Home:      DefaultHome,
	}
}

// segment is a planned crumb with its lookup URL, if any.
type segment struct {
	raw    string
	lookup string
}

// Plan builds the initial trail without fetching. Numeric-ID items carry
// Loading and a fallback label until resolved.
func (r *Resolver) Plan(path string) Trail {
	t, _ := r.plan(path)
	return t
}

// Resolve builds the trail, fetching record labels one segment at a time.
// Once ctx is done the remaining lookups are skipped and fall back.
func (r *Resolver) Resolve(ctx context.Context, path string) Trail {
	trail, segs := r.plan(path)
	log := logging.ComponentLogger(ctx, "breadcrumb")

	for i, s := range segs {
		if s.lookup == "" {
			continue
		}
		trail.Items[i].Loading = false
		if ctx.Err() != nil || r.Fetcher == nil {
			continue
		}
		record, err := r.Fetcher.Fetch(ctx, s.lookup)
		if err != nil {
			log.Debug().Ctx(ctx).Str("url", s.lookup).Err(err).Msg("label lookup failed, using fallback")
			continue
		}
		trail.Items[i].Label = LabelFromRecord(record, s.raw)
	}
	return trail
}

func (r *Resolver) plan(path string) (Trail, []segment) {
	raw := Segments(path)
	var trail Trail

	start := 0
	if r.Home != "" {
		home := Item{Label: r.label(r.Home), Href: "/" + r.Home}
		if len(raw) > 0 && raw[0] == r.Home {
			start = 1
		}
		if start == len(raw) {
			home.Href = ""
			home.IsCurrentPage = true
		}
		trail.Home = &home
	}

	trail.Items = make([]Item, 0, len(raw)-start)
	segs := make([]segment, 0, len(raw)-start)
	for i := start; i < len(raw); i++ {
		seg := raw[i]
		item := Item{Href: "/" + strings.Join(raw[:i+1], "/")}
		s := segment{raw: seg}

		switch Classify(raw, i, r.Labels, r.Endpoints) {
		case KindStatic:
			item.Label = r.Labels[seg]
		case KindNumericID:
			item.Label = FallbackLabel(seg)
			item.Loading = true
			s.lookup = strings.TrimRight(r.Endpoints[raw[i-1]], "/") + "/" + url.PathEscape(seg)
		case KindSlug:
			item.Label = FormatSlug(seg)
		}

		if i == len(raw)-1 {
			item.Href = ""
			item.IsCurrentPage = true
		}
		trail.Items = append(trail.Items, item)
		segs = append(segs, s)
	}
	return trail, segs
}

func (r *Resolver) label(seg string) string {
	if l, ok := r.Labels[seg]; ok {
		return l
	}
	return FormatSlug(seg)
}
