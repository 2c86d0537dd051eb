package observer_test

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/observer"
)

type recorder struct {
	entries []observer.Entry
}

func (r *recorder) callback(e observer.Entry) tea.Cmd {
	r.entries = append(r.entries, e)
	return nil
}

func (r *recorder) last() observer.Entry { return r.entries[len(r.entries)-1] }

func TestViewportService_EnterAndLeave(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("a", observer.Region{Top: 30, Height: 10})

	rec := &recorder{}
	_, err := svc.Observe("a", rec.callback, observer.Options{})
	require.NoError(t, err)

	svc.SetViewport(0, 20)
	require.Len(t, rec.entries, 1, "first evaluation always reports")
	assert.False(t, rec.last().IsIntersecting)

	svc.SetViewport(5, 20)
	assert.Len(t, rec.entries, 1, "no state change, no entry")

	svc.SetViewport(15, 20)
	require.Len(t, rec.entries, 2)
	assert.True(t, rec.last().IsIntersecting)
	assert.InDelta(t, 0.5, rec.last().Ratio, 0.001)

	svc.SetViewport(60, 20)
	require.Len(t, rec.entries, 3)
	assert.False(t, rec.last().IsIntersecting)
	assert.Zero(t, rec.last().Ratio)
}

func TestViewportService_Thresholds(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("a", observer.Region{Top: 10, Height: 10})

	rec := &recorder{}
	_, err := svc.Observe("a", rec.callback, observer.Options{Thresholds: []float64{1, 0.5}})
	require.NoError(t, err)

	svc.SetViewport(0, 12) // 2 of 10 rows visible
	require.Len(t, rec.entries, 1)
	assert.False(t, rec.last().IsIntersecting, "below the lowest threshold")

	svc.SetViewport(0, 15)
	require.Len(t, rec.entries, 2)
	assert.True(t, rec.last().IsIntersecting)

	svc.SetViewport(0, 17)
	assert.Len(t, rec.entries, 2, "still between 0.5 and 1")

	svc.SetViewport(0, 30)
	require.Len(t, rec.entries, 3, "crossing 1.0 reports again")
	assert.InDelta(t, 1.0, rec.last().Ratio, 0.001)
}

func TestViewportService_RootMargin(t *testing.T) {
	tests := []struct {
		name   string
		margin string
		want   bool
	}{
		{name: "no margin", margin: "", want: false},
		{name: "rows", margin: "0px 0px 5px 0px", want: true},
		{name: "percent", margin: "0px 0px 50%", want: true},
		{name: "negative shrinks", margin: "-5px", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := observer.NewViewportService("page")
			svc.SetRegion("a", observer.Region{Top: 22, Height: 4})

			rec := &recorder{}
			_, err := svc.Observe("a", rec.callback, observer.Options{RootMargin: tt.margin})
			require.NoError(t, err)

			svc.SetViewport(0, 20)
			require.Len(t, rec.entries, 1)
			assert.Equal(t, tt.want, rec.last().IsIntersecting)
		})
	}
}

func TestViewportService_ObserveErrors(t *testing.T) {
	svc := observer.NewViewportService("page")
	noop := func(observer.Entry) tea.Cmd { return nil }

	_, err := svc.Observe("a", noop, observer.Options{Root: "sidebar"})
	assert.ErrorIs(t, err, observer.ErrUnknownRoot)

	_, err = svc.Observe("a", noop, observer.Options{RootMargin: "10em"})
	assert.ErrorIs(t, err, observer.ErrInvalidMargin)

	_, err = svc.Observe("a", noop, observer.Options{Thresholds: []float64{1.5}})
	assert.ErrorIs(t, err, observer.ErrInvalidThreshold)

	_, err = svc.Observe("a", noop, observer.Options{Root: "page"})
	assert.NoError(t, err)
}

func TestViewportService_SkipsUnknownLayout(t *testing.T) {
	svc := observer.NewViewportService("page")
	rec := &recorder{}
	_, err := svc.Observe("a", rec.callback, observer.Options{})
	require.NoError(t, err)

	svc.SetViewport(0, 20)
	assert.Empty(t, rec.entries, "region not laid out yet")

	svc.SetRegion("a", observer.Region{Top: 0, Height: 3})
	assert.Empty(t, rec.entries, "SetRegion alone does not refresh")
	svc.Refresh()
	require.Len(t, rec.entries, 1)
	assert.True(t, rec.last().IsIntersecting)
}

func TestViewportService_ZeroHeightWindow(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("a", observer.Region{Top: 0, Height: 3})
	rec := &recorder{}
	_, err := svc.Observe("a", rec.callback, observer.Options{})
	require.NoError(t, err)

	assert.Nil(t, svc.SetViewport(0, 0))
	assert.Empty(t, rec.entries)
}

func TestViewportService_ZeroHeightRegion(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("sentinel", observer.Region{Top: 20, Height: 0})
	rec := &recorder{}
	_, err := svc.Observe("sentinel", rec.callback, observer.Options{})
	require.NoError(t, err)

	svc.SetViewport(0, 20)
	assert.False(t, rec.last().IsIntersecting)
	svc.SetViewport(1, 20)
	assert.True(t, rec.last().IsIntersecting)
}

func TestViewportService_DisconnectDuringCallback(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("a", observer.Region{Top: 0, Height: 5})
	svc.SetRegion("b", observer.Region{Top: 0, Height: 5})

	var second observer.Handle
	calls := 0
	_, err := svc.Observe("a", func(observer.Entry) tea.Cmd {
		calls++
		svc.Disconnect(second)
		return nil
	}, observer.Options{})
	require.NoError(t, err)
	second, err = svc.Observe("b", func(observer.Entry) tea.Cmd {
		calls++
		return nil
	}, observer.Options{})
	require.NoError(t, err)

	svc.SetViewport(0, 10)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, svc.Active())
}

func TestViewportService_DrivesObserver(t *testing.T) {
	svc := observer.NewViewportService("page")
	svc.SetRegion("a", observer.Region{Top: 40, Height: 10})

	o := observer.New(svc, observer.Options{TriggerOnce: true})
	require.Nil(t, o.Attach("a"))

	run(o, svc.SetViewport(0, 20))
	assert.False(t, o.HasBeenInView())

	run(o, svc.SetViewport(35, 20))
	assert.True(t, o.InView())
	assert.Equal(t, 0, svc.Active(), "one-shot session released")

	run(o, svc.SetViewport(0, 20))
	assert.True(t, o.InView())
}
