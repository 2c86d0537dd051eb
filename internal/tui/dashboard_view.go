package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rshade/shepherd/internal/section"
)

// View renders the current view (Bubble Tea interface).
func (m DashboardModel) View() string {
	if m.state == ViewStateQuitting {
		return ""
	}

	sections := []string{m.renderHeader(), m.vp.View()}
	if m.state == ViewStatePrompt {
		sections = append(sections, m.prompt.View())
	}
	sections = append(sections, m.renderStatusBar(), m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderHeader shows the breadcrumb trail and, while labels resolve, a spinner.
func (m DashboardModel) renderHeader() string {
	trail := m.crumbs.View()
	if m.crumbs.Pending() {
		trail += "  " + RenderLoading(m.loading)
	}
	rule := SubtleStyle.Render(strings.Repeat("─", max(m.width, 1)))
	return trail + "\n" + rule
}

// renderStatusBar shows the page title, section progress and scroll position.
func (m DashboardModel) renderStatusBar() string {
	loaded, total := m.progress()
	status := fmt.Sprintf("%s | %d/%d sections ready | %3.0f%%",
		m.page.Title, loaded, total, m.vp.ScrollPercent()*100) //nolint:mnd // Percentage.
	return SubtleStyle.Render(status)
}

// progress counts finished section blocks.
func (m DashboardModel) progress() (int, int) {
	var loaded, total int
	for _, b := range m.page.blocks {
		sb, ok := b.(*sectionBlock)
		if !ok {
			continue
		}
		total++
		if sb.c.State() == section.StateLoaded {
			loaded++
		}
	}
	return loaded, total
}
