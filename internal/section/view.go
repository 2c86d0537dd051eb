package section

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

//nolint:gochecknoglobals // Section styles.
var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	stepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("246"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

const (
	retryHint     = "[r] retry (%d left)"
	retryDisabled = "retry limit reached"
)

// View renders the section at width cells.
func (s *Section[T]) View(width int) string {
	parts := make([]string, 0, 4) //nolint:mnd // Title, body, error and hint.
	if s.cfg.Title != "" {
		parts = append(parts, titleStyle.Render(s.cfg.Title))
	}

	if s.cfg.Strategy == StrategyProgressive {
		parts = append(parts, s.viewSteps(width)...)
		return strings.Join(parts, "\n")
	}

	switch s.state {
	case StateIdle, StateLoading:
		parts = append(parts, s.skeleton(width))
	case StateLoaded:
		if s.cfg.Render != nil {
			parts = append(parts, s.cfg.Render(s.data, width))
		}
	case StateErrored:
		parts = append(parts, errorStyle.Render(fmt.Sprintf("Failed to load: %v", s.err)))
		if s.CanRetry() {
			parts = append(parts, hintStyle.Render(fmt.Sprintf(retryHint, s.cfg.MaxRetries-s.retryCount)))
		} else {
			parts = append(parts, hintStyle.Render(retryDisabled))
		}
	}
	return strings.Join(parts, "\n")
}

func (s *Section[T]) viewSteps(width int) []string {
	var parts []string
	for i := range s.revealed {
		step := s.cfg.Steps[i]
		if step.Title != "" {
			parts = append(parts, stepStyle.Render(step.Title))
		}
		if step.Render != nil {
			parts = append(parts, step.Render(width))
		}
	}
	if s.revealed < len(s.cfg.Steps) {
		parts = append(parts, s.skeleton(width))
	}
	return parts
}

func (s *Section[T]) skeleton(width int) string {
	return s.skel.SetWidth(width).View()
}
