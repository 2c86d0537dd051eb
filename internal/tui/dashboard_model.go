package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/logging"
	"github.com/rshade/shepherd/internal/observer"
)

// PageRoot names the dashboard's scroll container.
const PageRoot = "page"

// Rows reserved above and below the page viewport.
const (
	headerRows = 2
	footerRows = 2
	promptRows = 1
	maxHistory = 50
)

// ViewState is the dashboard mode.
type ViewState int

// Dashboard modes.
const (
	ViewStateBrowsing ViewState = iota
	ViewStatePrompt
	ViewStateQuitting
)

// NavigateMsg asks the dashboard to open a path.
type NavigateMsg struct {
	Path string
}

// placement records where a block landed in the last layout pass.
type placement struct {
	top    int
	height int
}

// DashboardModel is the Bubble Tea model for the interactive dashboard.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type DashboardModel struct {
	state ViewState
	ctx   context.Context
	log   *zerolog.Logger
	opts  Options
	keys  KeyMap

	svc     *observer.ViewportService
	crumbs  breadcrumb.Model
	loading *LoadingState
	vp      viewport.Model
	prompt  textinput.Model
	help    help.Model

	page    *Page
	gen     int
	history []string
	layout  []placement
	targets []observer.Target

	width  int
	height int

	initCmd tea.Cmd
}

// NewDashboardModel builds the dashboard and opens path.
func NewDashboardModel(ctx context.Context, opts Options, path string) DashboardModel {
	opts = opts.withDefaults()
	m := DashboardModel{
		state:   ViewStateBrowsing,
		ctx:     ctx,
		log:     logging.ComponentLogger(ctx, "dashboard"),
		opts:    opts,
		keys:    DefaultKeyMap(),
		svc:     observer.NewViewportService(PageRoot),
		crumbs:  breadcrumb.NewModel(ctx, opts.Resolver),
		loading: NewLoadingState(),
		vp:      viewport.New(defaultWidth, defaultHeight-headerRows-footerRows),
		prompt:  newPathInput(),
		help:    help.New(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.initCmd = m.navigate(path, false)
	return m
}

func newPathInput() textinput.Model {
	ti := textinput.New()
	ti.Prompt = "Go to: "
	ti.Placeholder = "/members/42"
	ti.CharLimit = 200
	return ti
}

// Init starts loading the initial page.
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.initCmd, m.loading.Init(), m.relayout())
}

// Page returns the open page.
func (m DashboardModel) Page() *Page { return m.page }

// Path returns the open path.
func (m DashboardModel) Path() string { return m.page.Path }

// Breadcrumb returns the header trail.
func (m DashboardModel) Breadcrumb() breadcrumb.Trail { return m.crumbs.Trail() }

// State returns the mode.
func (m DashboardModel) State() ViewState { return m.state }

// Service returns the viewport intersection service driving the page.
func (m DashboardModel) Service() *observer.ViewportService { return m.svc }

// Update handles messages and updates the model state (Bubble Tea interface).
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.resizeViewport()
	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))
	case NavigateMsg:
		cmds = append(cmds, m.navigate(msg.Path, true))
	case breadcrumb.ResolvedMsg:
		var cmd tea.Cmd
		m.crumbs, cmd = m.crumbs.Update(msg)
		cmds = append(cmds, cmd)
	default:
		cmds = append(cmds, m.loading.Update(msg))
		if m.state == ViewStatePrompt {
			var cmd tea.Cmd
			m.prompt, cmd = m.prompt.Update(msg)
			cmds = append(cmds, cmd)
		}
		for _, b := range m.page.blocks {
			cmds = append(cmds, b.update(msg))
		}
	}

	if m.state == ViewStateQuitting {
		return m, tea.Batch(cmds...)
	}
	cmds = append(cmds, m.relayout())
	return m, tea.Batch(cmds...)
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.state == ViewStatePrompt {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.state = ViewStateQuitting
		m.detachPage()
		return tea.Quit
	case key.Matches(msg, m.keys.GoTo):
		m.state = ViewStatePrompt
		m.prompt.SetValue(m.page.Path)
		m.prompt.CursorEnd()
		m.resizeViewport()
		return tea.Batch(m.prompt.Focus(), textinput.Blink)
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.vp.SetYOffset(m.vp.YOffset - m.vp.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.vp.SetYOffset(m.vp.YOffset + m.vp.Height)
	case key.Matches(msg, m.keys.Top):
		m.vp.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.vp.GotoBottom()
	case key.Matches(msg, m.keys.Open):
		if sel, _ := m.page.selector(); sel != nil {
			if path, ok := sel.activate(); ok {
				return m.navigate(path, true)
			}
		}
	case key.Matches(msg, m.keys.Back):
		return m.back()
	case key.Matches(msg, m.keys.Retry):
		var cmds []tea.Cmd
		for _, b := range m.page.blocks {
			cmds = append(cmds, b.retry())
		}
		return tea.Batch(cmds...)
	}
	return nil
}

func (m *DashboardModel) handlePromptKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyEnter:
		path := m.prompt.Value()
		m.closePrompt()
		return m.navigate(path, true)
	case tea.KeyEsc:
		m.closePrompt()
		return nil
	case tea.KeyCtrlC:
		m.state = ViewStateQuitting
		m.detachPage()
		return tea.Quit
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *DashboardModel) closePrompt() {
	m.state = ViewStateBrowsing
	m.prompt.Blur()
	m.resizeViewport()
}

// moveCursor drives the page selector, or scrolls when there is none.
func (m *DashboardModel) moveCursor(delta int) {
	sel, idx := m.page.selector()
	if sel == nil || idx >= len(m.layout) {
		if delta < 0 {
			m.vp.LineUp(-delta)
		} else {
			m.vp.LineDown(delta)
		}
		return
	}
	row := m.layout[idx].top + sel.move(delta)
	switch {
	case row < m.vp.YOffset:
		m.vp.SetYOffset(row)
	case row >= m.vp.YOffset+m.vp.Height:
		m.vp.SetYOffset(row - m.vp.Height + 1)
	}
}

// navigate replaces the page. push records the current path for Back.
func (m *DashboardModel) navigate(path string, push bool) tea.Cmd {
	path = NormalizePath(path)
	if m.page != nil {
		if path == m.page.Path {
			return nil
		}
		if push {
			m.history = append(m.history, m.page.Path)
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
		}
		m.detachPage()
	}

	m.gen++
	b := &builder{ctx: m.ctx, opts: m.opts, svc: m.svc, gen: m.gen}
	m.page = buildPage(b, path)
	m.layout = nil
	m.vp.GotoTop()
	m.log.Debug().Ctx(m.ctx).Str("route", path).Int("blocks", len(m.page.blocks)).Msg("page opened")

	cmds := make([]tea.Cmd, 0, len(m.page.blocks)+1)
	for _, blk := range m.page.blocks {
		cmds = append(cmds, blk.attach())
	}
	var cmd tea.Cmd
	m.crumbs, cmd = m.crumbs.SetPath(path)
	cmds = append(cmds, cmd)
	return tea.Batch(cmds...)
}

func (m *DashboardModel) back() tea.Cmd {
	if len(m.history) == 0 {
		return nil
	}
	prev := m.history[len(m.history)-1]
	m.history = m.history[:len(m.history)-1]
	return m.navigate(prev, false)
}

func (m *DashboardModel) detachPage() {
	if m.page == nil {
		return
	}
	for _, b := range m.page.blocks {
		b.detach()
	}
	for _, t := range m.targets {
		m.svc.RemoveRegion(t)
	}
	m.targets = nil
}

func (m *DashboardModel) resizeViewport() {
	rows := headerRows + footerRows
	if m.state == ViewStatePrompt {
		rows += promptRows
	}
	m.vp.Width = m.width
	m.vp.Height = max(m.height-rows, 1)
}

func (m *DashboardModel) contentWidth() int {
	return max(m.width-borderPadding, 1)
}

// relayout renders every block, publishes their regions to the intersection
// service and refreshes visibility for the current scroll position.
func (m *DashboardModel) relayout() tea.Cmd {
	width := m.contentWidth()
	parts := make([]string, 0, len(m.page.blocks))
	m.layout = m.layout[:0]
	m.targets = m.targets[:0]

	top := 0
	for _, b := range m.page.blocks {
		view, regions := b.render(frame{width: width, top: top, offset: m.vp.YOffset, height: m.vp.Height})
		h := lipgloss.Height(view)
		for _, r := range regions {
			m.svc.SetRegion(r.target, observer.Region{Top: top + r.top, Height: r.height})
			m.targets = append(m.targets, r.target)
		}
		m.layout = append(m.layout, placement{top: top, height: h})
		parts = append(parts, view)
		top += h + 1
	}

	m.vp.SetContent(strings.Join(parts, "\n\n"))
	return m.svc.SetViewport(m.vp.YOffset, m.vp.Height)
}
