package tui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func stubTerminal(t *testing.T, tty bool, width int, sizeErr error) {
	t.Helper()
	origTTY, origSize := isTerminal, termSize
	isTerminal = func(int) bool { return tty }
	termSize = func(int) (int, int, error) { return width, 24, sizeErr }
	t.Cleanup(func() { isTerminal, termSize = origTTY, origSize })
}

func TestDetectOutputMode(t *testing.T) {
	tests := []struct {
		name       string
		tty        bool
		env        map[string]string
		forceColor bool
		noColor    bool
		plain      bool
		want       OutputMode
	}{
		{name: "terminal", tty: true, want: OutputModeInteractive},
		{name: "pipe", tty: false, want: OutputModePlain},
		{name: "pipe forced color", tty: false, forceColor: true, want: OutputModeStyled},
		{name: "plain flag", tty: true, plain: true, want: OutputModePlain},
		{name: "no color flag", tty: true, noColor: true, want: OutputModePlain},
		{name: "NO_COLOR", tty: true, env: map[string]string{"NO_COLOR": "1"}, want: OutputModePlain},
		{name: "dumb terminal", tty: true, env: map[string]string{"TERM": "dumb"}, want: OutputModePlain},
		{name: "CI", tty: true, env: map[string]string{"CI": "true"}, want: OutputModeStyled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", "")
			t.Setenv("TERM", "xterm-256color")
			t.Setenv("CI", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			stubTerminal(t, tt.tty, 120, nil)
			assert.Equal(t, tt.want, DetectOutputMode(tt.forceColor, tt.noColor, tt.plain))
		})
	}
}

func TestTerminalWidth(t *testing.T) {
	stubTerminal(t, true, 132, nil)
	assert.Equal(t, 132, TerminalWidth())

	stubTerminal(t, false, 0, errors.New("not a terminal"))
	assert.Equal(t, 80, TerminalWidth())
}

func TestOutputModeString(t *testing.T) {
	assert.Equal(t, "plain", OutputModePlain.String())
	assert.Equal(t, "interactive", OutputModeInteractive.String())
	assert.Equal(t, "unknown", OutputMode(9).String())
}
