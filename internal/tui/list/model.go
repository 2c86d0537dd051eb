package listview

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// defaultBufferSize is the number of extra rows rendered above and below the window.
const defaultBufferSize = 5

// halfViewportDivisor is used to center the selection.
const halfViewportDivisor = 2

// RenderFunc renders one item. selected marks the highlighted row.
type RenderFunc[T any] func(item T, selected bool) string

// VirtualListModel is a selectable list that renders one line per item.
type VirtualListModel[T any] struct {
	items      []T
	renderFunc RenderFunc[T]

	// selected is -1 until an item exists.
	selected int

	// visibleFrom and visibleTo bound the window, [from, to).
	visibleFrom int
	visibleTo   int

	// external is set once SetWindow has been called; the selection no
	// longer moves the window.
	external bool

	height     int
	width      int
	bufferSize int
}

// NewVirtualListModel creates a list whose window is height rows tall.
func NewVirtualListModel[T any](items []T, height, width int, renderFunc RenderFunc[T]) *VirtualListModel[T] {
	m := &VirtualListModel[T]{
		items:      items,
		renderFunc: renderFunc,
		height:     height,
		width:      width,
		bufferSize: defaultBufferSize,
	}
	if len(items) == 0 {
		m.selected = -1
	}
	m.updateVisibleRange()
	return m
}

// Init implements tea.Model.
func (m *VirtualListModel[T]) Init() tea.Cmd {
	return nil
}

// Update handles navigation keys and resizes.
func (m *VirtualListModel[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg), nil
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.width = msg.Width
		m.updateVisibleRange()
	}
	return m, nil
}

//nolint:exhaustive // Only navigation keys matter.
func (m *VirtualListModel[T]) handleKeyMsg(msg tea.KeyMsg) tea.Model {
	if len(m.items) == 0 {
		return m
	}

	switch msg.Type {
	case tea.KeyUp:
		m.MoveBy(-1)
	case tea.KeyDown:
		m.MoveBy(1)
	case tea.KeyPgUp:
		m.MoveBy(-max(m.height, 1))
	case tea.KeyPgDown:
		m.MoveBy(max(m.height, 1))
	case tea.KeyHome:
		m.SetSelected(0)
	case tea.KeyEnd:
		m.SetSelected(len(m.items) - 1)
	case tea.KeyRunes:
		if len(msg.Runes) > 0 {
			switch msg.Runes[0] {
			case 'j':
				m.MoveBy(1)
			case 'k':
				m.MoveBy(-1)
			}
		}
	default:
	}
	return m
}

// SetItems replaces the items, keeping the selection within bounds.
func (m *VirtualListModel[T]) SetItems(items []T) {
	m.items = items
	if len(items) == 0 {
		m.selected = -1
	} else if m.selected < 0 {
		m.selected = 0
	}
	m.SetSelected(m.selected)
}

// Append adds items at the end.
func (m *VirtualListModel[T]) Append(items ...T) {
	m.SetItems(append(m.items, items...))
}

// MoveBy moves the selection by delta rows and reports whether it changed.
func (m *VirtualListModel[T]) MoveBy(delta int) bool {
	before := m.selected
	m.SetSelected(m.selected + delta)
	return m.selected != before
}

// SetWindow hands control of the window to an enclosing scroll container:
// offset is the first list row on screen and height the number of rows shown.
func (m *VirtualListModel[T]) SetWindow(offset, height int) {
	m.external = true
	m.height = max(height, 0)
	m.visibleFrom = min(max(offset, 0), len(m.items))
	m.visibleTo = min(max(offset+m.height, 0), len(m.items))
	if m.visibleTo < m.visibleFrom {
		m.visibleTo = m.visibleFrom
	}
}

// updateVisibleRange centers the window on the selection.
func (m *VirtualListModel[T]) updateVisibleRange() {
	if m.external {
		m.SetWindow(m.visibleFrom, m.height)
		return
	}
	if len(m.items) == 0 {
		m.visibleFrom = 0
		m.visibleTo = 0
		return
	}

	halfViewport := m.height / halfViewportDivisor
	idealFrom := m.selected - halfViewport
	idealTo := m.selected + halfViewport

	if idealFrom < 0 {
		idealFrom = 0
		idealTo = m.height
	}
	if idealTo > len(m.items) {
		idealTo = len(m.items)
		idealFrom = max(idealTo-m.height, 0)
	}

	m.visibleFrom = idealFrom
	m.visibleTo = idealTo
}

func (m *VirtualListModel[T]) renderRange() (int, int) {
	from := max(m.visibleFrom-m.bufferSize, 0)
	to := min(m.visibleTo+m.bufferSize, len(m.items))
	return from, to
}

// View renders the window and its buffer.
func (m *VirtualListModel[T]) View() string {
	if len(m.items) == 0 {
		return ""
	}
	from, to := m.renderRange()
	lines := make([]string, 0, to-from)
	for i := from; i < to; i++ {
		lines = append(lines, m.renderFunc(m.items[i], i == m.selected))
	}
	return strings.Join(lines, "\n")
}

// ViewPadded renders one line per item; rows outside the window and its
// buffer are left blank so the output height always equals ItemCount.
func (m *VirtualListModel[T]) ViewPadded() string {
	if len(m.items) == 0 {
		return ""
	}
	from, to := m.renderRange()
	lines := make([]string, len(m.items))
	for i := from; i < to; i++ {
		lines[i] = m.renderFunc(m.items[i], i == m.selected)
	}
	return strings.Join(lines, "\n")
}

// ItemCount returns the number of items.
func (m *VirtualListModel[T]) ItemCount() int {
	return len(m.items)
}

// Selected returns the selected index, or -1 for an empty list.
func (m *VirtualListModel[T]) Selected() int {
	return m.selected
}

// SetSelected moves the selection, clamped to valid bounds.
func (m *VirtualListModel[T]) SetSelected(index int) {
	if len(m.items) == 0 {
		m.selected = -1
		m.updateVisibleRange()
		return
	}
	m.selected = min(max(index, 0), len(m.items)-1)
	m.updateVisibleRange()
}

// VisibleFrom returns the first row in the window.
func (m *VirtualListModel[T]) VisibleFrom() int {
	return m.visibleFrom
}

// VisibleTo returns the row after the window.
func (m *VirtualListModel[T]) VisibleTo() int {
	return m.visibleTo
}

// Height returns the window height.
func (m *VirtualListModel[T]) Height() int {
	return m.height
}

// Width returns the list width.
func (m *VirtualListModel[T]) Width() int {
	return m.width
}

// SetWidth sets the list width.
func (m *VirtualListModel[T]) SetWidth(width int) {
	m.width = width
}

// SelectedItem returns the selected item, or nil for an empty list.
func (m *VirtualListModel[T]) SelectedItem() *T {
	if m.selected < 0 || m.selected >= len(m.items) {
		return nil
	}
	return &m.items[m.selected]
}
