package tui

import "github.com/charmbracelet/lipgloss"

// Palette.
const (
	ColorHeader   = lipgloss.Color("33")
	ColorLabel    = lipgloss.Color("245")
	ColorValue    = lipgloss.Color("252")
	ColorInfo     = lipgloss.Color("39")
	ColorSubtle   = lipgloss.Color("241")
	ColorBorder   = lipgloss.Color("238")
	ColorCritical = lipgloss.Color("196")
	ColorWarning  = lipgloss.Color("214")
	ColorOK       = lipgloss.Color("42")
	ColorSelected = lipgloss.Color("57")
)

// Layout constants shared by the views.
const (
	defaultWidth  = 100
	defaultHeight = 30
	borderPadding = 2
)

//nolint:gochecknoglobals // Shared lipgloss styles.
var (
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	ValueStyle    = lipgloss.NewStyle().Foreground(ColorValue)
	InfoStyle     = lipgloss.NewStyle().Foreground(ColorInfo)
	SubtleStyle   = lipgloss.NewStyle().Foreground(ColorSubtle)
	OKStyle       = lipgloss.NewStyle().Foreground(ColorOK)
	CriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorCritical)
	WarningStyle  = lipgloss.NewStyle().Foreground(ColorWarning)
	BoxStyle      = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)
	SelectedStyle    = lipgloss.NewStyle().Background(ColorSelected).Foreground(lipgloss.Color("230"))
	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader).BorderBottom(true)
)
