package lazy_test

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rshade/shepherd/internal/observer/observertest"
)

// heldClock records delays without ever firing them; tests deliver the
// messages by hand.
type heldClock struct {
	delays []time.Duration
	msgs   []tea.Msg
	ctxs   []context.Context
}

func (h *heldClock) schedule(ctx context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	h.delays = append(h.delays, d)
	h.msgs = append(h.msgs, msg)
	h.ctxs = append(h.ctxs, ctx)
	return nil
}

func (h *heldClock) last() tea.Msg { return h.msgs[len(h.msgs)-1] }

func drain(cmd tea.Cmd, update func(tea.Msg) tea.Cmd) {
	observertest.Drain(cmd, update)
}
