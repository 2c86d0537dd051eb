package skeleton

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// ShimmerInterval is the animation frame period.
const ShimmerInterval = 150 * time.Millisecond

//nolint:gochecknoglobals // Model ID sequence for tick routing.
var lastID atomic.Uint64

type shimmerTickMsg struct {
	id  uint64
	gen uint64
}

// Model is an animated placeholder component.
type Model struct {
	id    uint64
	opts  Options
	shape Shape
	phase int
	gen   uint64
}

// New builds a placeholder model.
func New(opts Options) Model {
	return Model{
		id:    lastID.Add(1),
		opts:  opts,
		shape: Build(opts),
	}
}

// Shape returns the current layout.
func (m Model) Shape() Shape { return m.shape }

// Options returns the options the model was built with.
func (m Model) Options() Options { return m.opts }

// SetWidth rebuilds the layout for a new width.
func (m Model) SetWidth(width int) Model {
	if width == m.opts.Width {
		return m
	}
	m.opts.Width = width
	m.shape = Build(m.opts)
	return m
}

// Init starts the shimmer when Animate is set.
func (m Model) Init() tea.Cmd {
	if !m.opts.Animate {
		return nil
	}
	return m.tick()
}

// Start begins a new shimmer chain. Ticks from earlier chains are ignored
// afterwards, so at most one chain advances the model.
func (m Model) Start() (Model, tea.Cmd) {
	if !m.opts.Animate {
		return m, nil
	}
	m.gen++
	return m, m.tick()
}

// Owns reports whether msg is a shimmer tick addressed to this model.
func (m Model) Owns(msg tea.Msg) bool {
	tick, ok := msg.(shimmerTickMsg)
	return ok && tick.id == m.id
}

// Update advances the shimmer on its own ticks.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	tick, ok := msg.(shimmerTickMsg)
	if !ok || tick.id != m.id || tick.gen != m.gen || !m.opts.Animate {
		return m, nil
	}
	m.phase = (m.phase + 1) % shimmerPeriod
	return m, m.tick()
}

// View renders the placeholder.
func (m Model) View() string {
	if !m.opts.Animate {
		return Render(m.shape, Still)
	}
	return Render(m.shape, m.phase)
}

func (m Model) tick() tea.Cmd {
	id, gen := m.id, m.gen
	return tea.Tick(ShimmerInterval, func(time.Time) tea.Msg {
		return shimmerTickMsg{id: id, gen: gen}
	})
}
