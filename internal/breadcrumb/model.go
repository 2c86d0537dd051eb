package breadcrumb

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ResolvedMsg carries the result of one resolution pass.
type ResolvedMsg struct {
	Path  string
	Trail Trail
	gen   uint64
}

const separator = " › "

//nolint:gochecknoglobals // Breadcrumb styles.
var (
	linkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	currentStyle = lipgloss.NewStyle().Bold(true)
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
	sepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Model holds the trail for the current path. Each SetPath starts a new
// generation; results from older generations are dropped.
type Model struct {
	ctx      context.Context
	resolver *Resolver

	path     string
	trail    Trail
	explicit bool

	gen    uint64
	cancel context.CancelFunc
}

// NewModel returns an empty breadcrumb model.
func NewModel(ctx context.Context, r *Resolver) Model {
	return Model{ctx: ctx, resolver: r}
}

// Path returns the current path.
func (m Model) Path() string { return m.path }

// Trail returns the current trail.
func (m Model) Trail() Trail { return m.trail }

// Pending reports an unfinished resolution pass.
func (m Model) Pending() bool { return m.trail.Pending() }

// SetPath replaces the trail for path and starts resolving it.
func (m Model) SetPath(path string) (Model, tea.Cmd) {
	if path == m.path && !m.explicit && m.gen > 0 {
		return m, nil
	}
	m.supersede()
	m.path = path
	m.explicit = false
	m.trail = m.resolver.Plan(path)
	if !m.trail.Pending() {
		return m, nil
	}

	ctx, cancel := context.WithCancel(m.ctx)
	m.cancel = cancel
	gen, resolver := m.gen, m.resolver
	return m, func() tea.Msg {
		return ResolvedMsg{Path: path, Trail: resolver.Resolve(ctx, path), gen: gen}
	}
}

// SetItems shows items as given, bypassing the resolver.
func (m Model) SetItems(items []Item) Model {
	m.supersede()
	m.explicit = true
	m.trail = Trail{Items: append([]Item(nil), items...)}
	return m
}

// Update commits resolution results from the current generation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	res, ok := msg.(ResolvedMsg)
	if !ok || res.gen != m.gen || m.explicit {
		return m, nil
	}
	m.trail = res.Trail
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	return m, nil
}

// View renders the trail on one line.
func (m Model) View() string {
	var parts []string
	if h := m.trail.Home; h != nil {
		parts = append(parts, renderItem(*h))
	}
	for _, it := range m.trail.Items {
		parts = append(parts, renderItem(it))
	}
	return strings.Join(parts, sepStyle.Render(separator))
}

// Text renders the trail without styling.
func (t Trail) Text() string {
	var parts []string
	if t.Home != nil {
		parts = append(parts, t.Home.Label)
	}
	for _, it := range t.Items {
		parts = append(parts, it.Label)
	}
	return strings.Join(parts, separator)
}

func renderItem(it Item) string {
	switch {
	case it.Loading:
		return pendingStyle.Render(it.Label + "…")
	case it.IsCurrentPage:
		return currentStyle.Render(it.Label)
	default:
		return linkStyle.Render(it.Label)
	}
}

func (m *Model) supersede() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.gen++
}
