package tui

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/shepherd/internal/church"
	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/section"
	"github.com/rshade/shepherd/internal/skeleton"
	listview "github.com/rshade/shepherd/internal/tui/list"
)

// frame is the geometry a block renders into. top is the block's first page
// row; offset and height describe the viewport window.
type frame struct {
	width  int
	top    int
	offset int
	height int
}

// region is an observed area, with top relative to the block.
type region struct {
	target observer.Target
	top    int
	height int
}

// block is one vertically stacked piece of a page.
type block interface {
	attach() tea.Cmd
	detach()
	update(msg tea.Msg) tea.Cmd
	render(f frame) (string, []region)
	retry() tea.Cmd
}

// selector is a block with a cursor, driven by the up/down keys.
type selector interface {
	// move shifts the cursor and returns its row relative to the block.
	move(delta int) int
	// activate returns the route to open for the cursor, if any.
	activate() (string, bool)
}

// sectionBlock adapts a section to the page layout.
type sectionBlock struct {
	c      section.Component
	target observer.Target
}

func (b *sectionBlock) attach() tea.Cmd            { return b.c.Attach(b.target) }
func (b *sectionBlock) detach()                    { b.c.Detach() }
func (b *sectionBlock) update(msg tea.Msg) tea.Cmd { return b.c.Update(msg) }

func (b *sectionBlock) render(f frame) (string, []region) {
	v := b.c.View(f.width)
	return v, []region{{target: b.target, height: lipgloss.Height(v)}}
}

// retry only reaches sections the reader can see.
func (b *sectionBlock) retry() tea.Cmd {
	if !b.c.Visible() || !b.c.CanRetry() {
		return nil
	}
	return b.c.Retry()
}

// staticBlock is fixed text.
type staticBlock struct {
	text string
}

func (b *staticBlock) attach() tea.Cmd                 { return nil }
func (b *staticBlock) detach()                         {}
func (b *staticBlock) update(tea.Msg) tea.Cmd          { return nil }
func (b *staticBlock) render(frame) (string, []region) { return b.text, nil }
func (b *staticBlock) retry() tea.Cmd                  { return nil }

// membersBlock is the paged member directory. Rows are virtualized against
// the page viewport and a one-line sentinel below them pulls the next page.
type membersBlock struct {
	list     *lazy.List[church.Member]
	rows     *listview.VirtualListModel[church.Member]
	sentinel observer.Target
	// total is written by page fetches, which run off the event loop.
	total atomic.Int64
}

func newMembersBlock(ctx context.Context, b *builder, target observer.Target) *membersBlock {
	mb := &membersBlock{sentinel: target}
	fetch := func(ctx context.Context, page int) (lazy.Page[church.Member], error) {
		p, err := b.opts.Source.Members(ctx, page, b.opts.PageSize)
		if err != nil {
			return lazy.Page[church.Member]{}, err
		}
		mb.total.Store(int64(p.Total))
		return lazy.Page[church.Member]{Items: p.Members, HasMore: p.HasMore}, nil
	}
	mb.list = lazy.NewList(ctx, b.svc, fetch, b.opts.observerOptions(), lazy.WithScheduler(b.opts.Scheduler))
	mb.rows = listview.NewVirtualListModel[church.Member](nil, 0, 0, renderMemberRow)
	return mb
}

func renderMemberRow(m church.Member, selected bool) string {
	line := fmt.Sprintf("%-22s %-28s %s", m.FullName(), m.Email, m.Ministry)
	if selected {
		return SelectedStyle.Render("› " + line)
	}
	return "  " + line
}

func (b *membersBlock) attach() tea.Cmd { return b.list.Attach(b.sentinel) }
func (b *membersBlock) detach()         { b.list.Detach() }

func (b *membersBlock) update(msg tea.Msg) tea.Cmd {
	cmd := b.list.Update(msg)
	if items := b.list.Items(); len(items) != b.rows.ItemCount() {
		b.rows.SetItems(items)
	}
	return cmd
}

func (b *membersBlock) render(f frame) (string, []region) {
	lines := []string{HeaderStyle.Render(fmt.Sprintf("Members (%d loaded)", b.rows.ItemCount()))}
	// Row 0 of the list sits one line below the block's header.
	b.rows.SetWidth(f.width)
	b.rows.SetWindow(f.offset-(f.top+1), f.height)
	if b.rows.ItemCount() > 0 {
		lines = append(lines, b.rows.ViewPadded())
	}

	sentinelTop := 1 + b.rows.ItemCount()
	lines = append(lines, b.sentinelLine())
	return strings.Join(lines, "\n"), []region{{target: b.sentinel, top: sentinelTop, height: 1}}
}

func (b *membersBlock) sentinelLine() string {
	switch {
	case b.list.Err() != nil:
		return CriticalStyle.Render(fmt.Sprintf("Failed to load members: %v", b.list.Err())) +
			" " + SubtleStyle.Render("[r] retry")
	case b.list.Loading():
		return SubtleStyle.Render("Loading more members…")
	case !b.list.HasMore():
		return SubtleStyle.Render(fmt.Sprintf("End of directory (%d members)", b.total.Load()))
	default:
		return SubtleStyle.Render("Scroll for more")
	}
}

func (b *membersBlock) retry() tea.Cmd { return b.list.Retry() }

func (b *membersBlock) move(delta int) int {
	b.rows.MoveBy(delta)
	return 1 + max(b.rows.Selected(), 0)
}

func (b *membersBlock) activate() (string, bool) {
	m := b.rows.SelectedItem()
	if m == nil {
		return "", false
	}
	return fmt.Sprintf("/members/%d", m.ID), true
}

// photoHeight is the fixed content height of a photo box.
const photoHeight = 3

// photoBlock shows a member photo that is fetched only once scrolled into view.
type photoBlock struct {
	img    *lazy.Image
	target observer.Target
}

func (b *photoBlock) attach() tea.Cmd            { return b.img.Attach(b.target) }
func (b *photoBlock) detach()                    { b.img.Detach() }
func (b *photoBlock) update(msg tea.Msg) tea.Cmd { return b.img.Update(msg) }

func (b *photoBlock) render(f frame) (string, []region) {
	var body string
	switch {
	case b.img.ShowPlaceholder():
		body = SubtleStyle.Render("[ photo ]")
	case b.img.Loading():
		body = SubtleStyle.Render("Loading photo…")
	case b.img.Errored():
		hint := "retry limit reached"
		if b.img.CanRetry() {
			hint = fmt.Sprintf("[r] retry (%d left)", b.img.RetriesLeft())
		}
		body = CriticalStyle.Render(fmt.Sprintf("Photo unavailable: %v", b.img.Err())) + "\n" + SubtleStyle.Render(hint)
	case b.img.Loaded():
		url, _ := b.img.ResolvedURL()
		info := b.img.Info()
		body = OKStyle.Render(fmt.Sprintf("Photo %d×%d %s", info.Width, info.Height, info.Format)) +
			"\n" + SubtleStyle.Render(url)
	}

	box := BoxStyle.Width(max(f.width-borderPadding, 1)).Height(photoHeight).Render(body)
	title := HeaderStyle.Render("Photo")
	v := title + "\n" + box
	return v, []region{{target: b.target, top: 1, height: lipgloss.Height(box)}}
}

func (b *photoBlock) retry() tea.Cmd {
	if !b.img.InView() {
		return nil
	}
	return b.img.Retry()
}

// serving is where a member gives their time.
type serving struct {
	Ministry string
	Classes  []church.Class
}

// servingBlock is the member summary below the photo. It loads once scrolled
// into view and backs off on its own when a lookup fails.
type servingBlock struct {
	loader *lazy.Loader[serving]
	target observer.Target
}

func newServingBlock(b *builder, id int, target observer.Target) *servingBlock {
	load := func(ctx context.Context) (serving, error) {
		m, err := b.opts.Source.Member(ctx, id)
		if err != nil {
			return serving{}, err
		}
		classes, err := b.opts.Source.Classes(ctx)
		if err != nil {
			return serving{}, err
		}
		name := m.FullName()
		classes = slices.DeleteFunc(classes, func(c church.Class) bool { return c.Teacher != name })
		return serving{Ministry: m.Ministry, Classes: classes}, nil
	}
	return &servingBlock{
		loader: lazy.NewLoader(b.ctx, b.svc, load, b.opts.observerOptions(), b.lazyOptions()...),
		target: target,
	}
}

func (b *servingBlock) attach() tea.Cmd            { return b.loader.Attach(b.target) }
func (b *servingBlock) detach()                    { b.loader.Detach() }
func (b *servingBlock) update(msg tea.Msg) tea.Cmd { return b.loader.Update(msg) }

func (b *servingBlock) render(f frame) (string, []region) {
	st := b.loader.State()
	var body string
	switch {
	case st.HasData:
		body = renderServing(st.Data)
	case b.loader.RetryPending():
		body = WarningStyle.Render(fmt.Sprintf("Lookup failed, retrying in %s (attempt %d of %d)",
			st.RetryDelay, st.RetryCount, st.MaxRetries))
	case b.loader.Terminal():
		body = CriticalStyle.Render(fmt.Sprintf("Failed to load: %v", st.Err)) + "\n" + SubtleStyle.Render("[r] retry")
	default:
		body = skeleton.Render(skeleton.Build(skeleton.Options{
			Variant: skeleton.VariantList, Count: 2, Width: f.width,
		}), skeleton.Still)
	}
	return HeaderStyle.Render("Serving") + "\n" + body,
		[]region{{target: b.target, top: 1, height: lipgloss.Height(body)}}
}

func renderServing(s serving) string {
	lines := []string{LabelStyle.Render("Ministry ") + ValueStyle.Render(s.Ministry)}
	if len(s.Classes) == 0 {
		return strings.Join(append(lines, SubtleStyle.Render("Not teaching a class")), "\n")
	}
	for _, c := range s.Classes {
		lines = append(lines, LabelStyle.Render("Teaches  ")+ValueStyle.Render(c.Name)+" "+SubtleStyle.Render(c.Room))
	}
	return strings.Join(lines, "\n")
}

func (b *servingBlock) retry() tea.Cmd {
	if !b.loader.Observer().InView() || !b.loader.Terminal() {
		return nil
	}
	return b.loader.Retry()
}
