package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// LoadingState is a spinner with a message, shown while asynchronous work
// such as a breadcrumb lookup is outstanding.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState returns a spinner with the default message.
func NewLoadingState() *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = InfoStyle
	return &LoadingState{spinner: s, message: "Loading..."}
}

// SetMessage replaces the text shown next to the spinner.
func (l *LoadingState) SetMessage(msg string) { l.message = msg }

// Message returns the current text.
func (l *LoadingState) Message() string { return l.message }

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd { return l.spinner.Tick }

// Update advances the spinner on its own tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	if _, ok := msg.(spinner.TickMsg); !ok {
		return nil
	}
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner and message on one line.
func (l *LoadingState) View() string {
	return l.spinner.View() + " " + SubtleStyle.Render(l.message)
}

// RenderLoading returns the text for a loading placeholder. A nil state
// renders a plain "Loading...".
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return loading.View()
}
