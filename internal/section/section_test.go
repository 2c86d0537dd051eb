package section_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/observer/observertest"
	"github.com/rshade/shepherd/internal/section"
	"github.com/rshade/shepherd/internal/skeleton"
)

const region = observer.Target("giving")

// heldClock records step delays without firing them.
type heldClock struct {
	delays []time.Duration
	msgs   []tea.Msg
}

func (h *heldClock) schedule(_ context.Context, d time.Duration, msg tea.Msg) tea.Cmd {
	h.delays = append(h.delays, d)
	h.msgs = append(h.msgs, msg)
	return nil
}

func drain(cmd tea.Cmd, s section.Component) {
	observertest.Drain(cmd, s.Update)
}

func counter(calls *int, fail bool) section.LoadFunc[string] {
	return func(context.Context) (string, error) {
		*calls++
		if fail {
			return "", errors.New("database offline")
		}
		return fmt.Sprintf("load #%d", *calls), nil
	}
}

func newSection(t *testing.T, cfg section.Config[string], opts ...section.Option) (*section.Section[string], *observertest.FakeService) {
	t.Helper()
	svc := observertest.NewFakeService()
	if cfg.Render == nil {
		cfg.Render = func(data string, _ int) string { return data }
	}
	s := section.New(context.Background(), svc, cfg, opts...)
	drain(s.Attach(region), s)
	return s, svc
}

func TestSection_Immediate(t *testing.T) {
	calls := 0
	s, _ := newSection(t, section.Config[string]{Strategy: section.StrategyImmediate, Load: counter(&calls, false)})

	assert.Equal(t, 1, calls, "loads without visibility")
	assert.Equal(t, section.StateLoaded, s.State())
	assert.False(t, s.Visible())
}

func TestSection_Lazy(t *testing.T) {
	calls := 0
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyLazy, Load: counter(&calls, false)})

	assert.Equal(t, section.StateIdle, s.State())
	assert.Zero(t, calls)

	drain(svc.Fire(region, true), s)
	assert.Equal(t, 1, calls)
	assert.Equal(t, section.StateLoaded, s.State())
	data, ok := s.Data()
	require.True(t, ok)
	assert.Equal(t, "load #1", data)
	assert.Equal(t, 0, svc.Active(), "lazy observation is one-shot")
}

func TestSection_OnDemand(t *testing.T) {
	calls := 0
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyOnDemand, Load: counter(&calls, false)})

	drain(svc.Fire(region, true), s)
	assert.True(t, s.Visible())
	assert.Equal(t, 1, calls)

	drain(svc.Fire(region, false), s)
	assert.False(t, s.Visible())
	assert.True(t, s.Seen())

	drain(svc.Fire(region, true), s)
	assert.True(t, s.Visible())
	assert.Equal(t, 1, calls, "completed load is not re-triggered")
	assert.Equal(t, 1, svc.Active())
}

func TestSection_ProgressiveTiming(t *testing.T) {
	clock := &heldClock{}
	calls := 0
	steps := []section.Step{
		{Title: "Summary", Delay: 0, Render: func(int) string { return "one" }},
		{Title: "Funds", Delay: 300 * time.Millisecond, Render: func(int) string { return "two" }},
		{Title: "History", Delay: 300 * time.Millisecond, Render: func(int) string { return "three" }},
	}
	s, svc := newSection(t, section.Config[string]{
		Strategy: section.StrategyProgressive,
		Load:     counter(&calls, false),
		Steps:    steps,
	}, section.WithScheduler(clock.schedule))

	assert.Zero(t, s.Revealed(), "nothing until visible")
	assert.Empty(t, clock.delays)

	drain(svc.Fire(region, true), s)
	assert.Equal(t, 1, s.Revealed(), "zero-delay first step shows at once")
	require.Len(t, clock.delays, 1)
	assert.Equal(t, 300*time.Millisecond, clock.delays[0], "second step waits 300ms after entry")
	assert.Equal(t, section.StateLoading, s.State())

	drain(s.Update(clock.msgs[0]), s)
	assert.Equal(t, 2, s.Revealed())
	require.Len(t, clock.delays, 2)

	drain(s.Update(clock.msgs[1]), s)
	assert.Equal(t, 3, s.Revealed())
	assert.Equal(t, section.StateLoaded, s.State())

	var total time.Duration
	for _, d := range clock.delays {
		total += d
	}
	assert.Equal(t, 600*time.Millisecond, total, "all steps visible by 600ms")
	assert.Zero(t, calls, "progressive ignores the loader")

	view := ansi.Strip(s.View(40))
	assert.Less(t, strings.Index(view, "one"), strings.Index(view, "two"))
	assert.Less(t, strings.Index(view, "two"), strings.Index(view, "three"))

	// Replaying an already delivered step message does nothing.
	assert.Nil(t, s.Update(clock.msgs[0]))
	assert.Equal(t, 3, s.Revealed())
}

func TestSection_ProgressiveDefaultDelay(t *testing.T) {
	clock := &heldClock{}
	steps := []section.Step{
		section.NewStep("a", nil),
		section.NewStep("b", nil),
	}
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyProgressive, Steps: steps},
		section.WithScheduler(clock.schedule))
	drain(svc.Fire(region, true), s)
	assert.Equal(t, []time.Duration{section.DefaultStepDelay}, clock.delays)

	clock = &heldClock{}
	s, svc = newSection(t, section.Config[string]{
		Strategy:  section.StrategyProgressive,
		Steps:     steps,
		StepDelay: 50 * time.Millisecond,
	}, section.WithScheduler(clock.schedule))
	drain(svc.Fire(region, true), s)
	assert.Equal(t, []time.Duration{50 * time.Millisecond}, clock.delays)
	assert.Zero(t, s.Revealed())
}

func TestSection_LeavingBeforeDelayDoesNotReveal(t *testing.T) {
	clock := &observertest.Clock{}
	calls := 0
	s, svc := newSection(t, section.Config[string]{
		Strategy: section.StrategyLazy,
		Load:     counter(&calls, false),
		Observer: observer.Options{Delay: time.Second},
	}, section.WithScheduler(clock.Schedule))

	pending := svc.Fire(region, true)
	svc.Fire(region, false)
	drain(pending, s)

	assert.Zero(t, calls)
	assert.Equal(t, section.StateIdle, s.State())
	assert.False(t, s.Seen())
}

func TestSection_RetryCap(t *testing.T) {
	calls := 0
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyLazy, Load: counter(&calls, true)})
	drain(svc.Fire(region, true), s)

	require.Equal(t, section.StateErrored, s.State())
	require.Error(t, s.Err())
	assert.Contains(t, ansi.Strip(s.View(40)), "[r] retry (3 left)")

	for i := 1; i <= section.DefaultMaxRetries; i++ {
		require.True(t, s.CanRetry(), "retry %d", i)
		drain(s.Retry(), s)
		assert.Equal(t, i, s.RetryCount())
	}
	assert.False(t, s.CanRetry())
	assert.Nil(t, s.Retry())
	assert.Equal(t, section.DefaultMaxRetries+1, calls)
	assert.Contains(t, ansi.Strip(s.View(40)), "retry limit reached")
	assert.Contains(t, ansi.Strip(s.View(40)), "database offline")
}

func TestSection_RetrySuccessResetsCounter(t *testing.T) {
	calls := 0
	fail := true
	load := func(context.Context) (string, error) {
		calls++
		if fail {
			return "", errors.New("timeout")
		}
		return "ok", nil
	}
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyLazy, Load: load, MaxRetries: 2})
	drain(svc.Fire(region, true), s)
	drain(s.Retry(), s)
	assert.Equal(t, 1, s.RetryCount())

	fail = false
	drain(s.Retry(), s)
	assert.Equal(t, section.StateLoaded, s.State())
	assert.Zero(t, s.RetryCount())
	assert.Nil(t, s.Retry(), "loaded sections have nothing to retry")
}

func TestSection_RetryDisabled(t *testing.T) {
	s, svc := newSection(t, section.Config[string]{
		Strategy:   section.StrategyLazy,
		Load:       counter(new(int), true),
		MaxRetries: -1,
	})
	drain(svc.Fire(region, true), s)
	assert.Equal(t, section.StateErrored, s.State())
	assert.False(t, s.CanRetry())
}

func TestSection_DetachDiscardsResult(t *testing.T) {
	calls := 0
	s, svc := newSection(t, section.Config[string]{Strategy: section.StrategyOnDemand, Load: counter(&calls, false)})

	fetch := s.Update(svc.Fire(region, true)())
	require.NotNil(t, fetch)
	require.Equal(t, section.StateLoading, s.State())

	s.Detach()
	assert.Equal(t, section.StateIdle, s.State())
	assert.Nil(t, s.Update(fetch()))
	_, ok := s.Data()
	assert.False(t, ok)

	// Re-attaching a section that was already seen resumes loading.
	drain(s.Attach(region), s)
	assert.Equal(t, 2, calls)
	assert.Equal(t, section.StateLoaded, s.State())
}

func TestSection_ViewSkeletonThenContent(t *testing.T) {
	calls := 0
	s, svc := newSection(t, section.Config[string]{
		Title:    "Giving",
		Strategy: section.StrategyLazy,
		Load:     counter(&calls, false),
		Skeleton: skeleton.Options{Variant: skeleton.VariantTable, Columns: 3, Rows: 2},
	})

	idle := ansi.Strip(s.View(30))
	assert.True(t, strings.HasPrefix(idle, "Giving\n"))
	assert.Len(t, strings.Split(idle, "\n"), 1+3, "title, header and two rows")

	drain(svc.Fire(region, true), s)
	assert.Equal(t, "Giving\nload #1", ansi.Strip(s.View(30)))
}

// shimmerTicks counts skeleton animation frames among msgs.
func shimmerTicks(msgs []tea.Msg) int {
	n := 0
	for _, m := range msgs {
		if fmt.Sprintf("%T", m) == "skeleton.shimmerTickMsg" {
			n++
		}
	}
	return n
}

func TestSection_ShimmerStopsOnceSkeletonHidden(t *testing.T) {
	calls := 0
	svc := observertest.NewFakeService()
	s := section.New(context.Background(), svc, section.Config[string]{
		Strategy:   section.StrategyImmediate,
		Load:       counter(&calls, true),
		MaxRetries: 1,
		Render:     func(data string, _ int) string { return data },
		Skeleton:   skeleton.Options{Variant: skeleton.VariantCard, Animate: true},
	})

	// The armed frame lands after the load failed and is not re-armed.
	msgs := observertest.Drain(s.Attach(region), s.Update)
	require.Equal(t, section.StateErrored, s.State())
	assert.Equal(t, 1, shimmerTicks(msgs))

	msgs = observertest.Drain(s.Retry(), s.Update)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, shimmerTicks(msgs), "retry restarts the shimmer")
}

func TestParseStrategy(t *testing.T) {
	for _, st := range []section.Strategy{
		section.StrategyImmediate, section.StrategyLazy, section.StrategyOnDemand, section.StrategyProgressive,
	} {
		got, err := section.ParseStrategy(st.String())
		require.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := section.ParseStrategy("eventually")
	assert.Error(t, err)
	assert.Equal(t, "loading", section.StateLoading.String())
}
