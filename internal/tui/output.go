package tui

import (
	"os"

	"golang.org/x/term"
)

// OutputMode is how a command renders to stdout.
type OutputMode int

// Output modes, from least to most capable.
const (
	OutputModePlain OutputMode = iota
	OutputModeStyled
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return "unknown"
	}
}

const fallbackTerminalWidth = 80

//nolint:gochecknoglobals // Replaced in tests.
var (
	isTerminal = func(fd int) bool { return term.IsTerminal(fd) }
	termSize   = term.GetSize
)

// DetectOutputMode picks the richest mode the environment supports. plain
// and noColor force plain output; forceColor yields styled output even when
// stdout is not a terminal. NO_COLOR, TERM=dumb and CI downgrade the result.
func DetectOutputMode(forceColor, noColor, plain bool) OutputMode {
	if plain || noColor || os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return OutputModePlain
	}
	tty := isTerminal(int(os.Stdout.Fd()))
	switch {
	case forceColor && !tty:
		return OutputModeStyled
	case !tty:
		return OutputModePlain
	case os.Getenv("CI") != "":
		return OutputModeStyled
	default:
		return OutputModeInteractive
	}
}

// TerminalWidth returns the stdout width in columns, or 80 when unknown.
func TerminalWidth() int {
	w, _, err := termSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallbackTerminalWidth
	}
	return w
}
