package lazy_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/observer/observertest"
)

func pagedInts(total, size int, failPage int, requested *[]int) lazy.PageFunc[int] {
	return func(_ context.Context, page int) (lazy.Page[int], error) {
		*requested = append(*requested, page)
		if page == failPage {
			return lazy.Page[int]{}, errors.New("page unavailable")
		}
		start := (page - 1) * size
		var items []int
		for i := start; i < min(start+size, total); i++ {
			items = append(items, i)
		}
		return lazy.Page[int]{Items: items, HasMore: start+size < total}, nil
	}
}

func TestList_PagesWhileSentinelInView(t *testing.T) {
	svc := observertest.NewFakeService()
	var requested []int
	l := lazy.NewList(context.Background(), svc, pagedInts(25, 10, 0, &requested), observer.Options{TriggerOnce: true})
	drain(l.Attach("end"), l.Update)
	assert.Empty(t, requested)

	drain(svc.Fire("end", true), l.Update)
	// The sentinel never left view, so every page is fetched in turn.
	assert.Equal(t, []int{1, 2, 3}, requested)
	assert.Len(t, l.Items(), 25)
	assert.False(t, l.HasMore())
	assert.Equal(t, 3, l.Pages())
	assert.Equal(t, 1, svc.Active(), "sentinel observer is continuous")

	drain(svc.Fire("end", false), l.Update)
	drain(svc.Fire("end", true), l.Update)
	assert.Len(t, requested, 3, "no more pages")
}

func TestList_StopsWhenSentinelLeaves(t *testing.T) {
	svc := observertest.NewFakeService()
	var requested []int
	l := lazy.NewList(context.Background(), svc, pagedInts(100, 10, 0, &requested), observer.Options{})
	drain(l.Attach("end"), l.Update)

	fetch := l.Update(svc.Fire("end", true)())
	require.NotNil(t, fetch)
	assert.True(t, l.Loading())
	assert.Nil(t, l.Retry(), "no duplicate request while loading")

	drain(svc.Fire("end", false), l.Update)
	drain(fetch, l.Update)
	assert.Equal(t, []int{1}, requested)
	assert.Len(t, l.Items(), 10)

	drain(svc.Fire("end", true), l.Update)
	assert.Equal(t, 1, requested[0])
	assert.Greater(t, len(requested), 1)
}

func TestList_ErrorStopsUntilRetry(t *testing.T) {
	svc := observertest.NewFakeService()
	var requested []int
	l := lazy.NewList(context.Background(), svc, pagedInts(30, 10, 2, &requested), observer.Options{})
	drain(l.Attach("end"), l.Update)
	drain(svc.Fire("end", true), l.Update)

	assert.Equal(t, []int{1, 2}, requested)
	require.Error(t, l.Err())

	drain(svc.Fire("end", false), l.Update)
	drain(svc.Fire("end", true), l.Update)
	assert.Equal(t, []int{1, 2}, requested, "paging halted by the error")

	assert.Nil(t, lazy.NewList(context.Background(), svc, pagedInts(1, 1, 0, new([]int)), observer.Options{}).Retry())

	drain(l.Retry(), l.Update)
	assert.Equal(t, []int{1, 2, 2}, requested)
	require.Error(t, l.Err(), "page 2 still fails")
	assert.Len(t, l.Items(), 10)
}

func TestList_RetryOptionsDoNotSchedulePages(t *testing.T) {
	clock := &observertest.Clock{}
	svc := observertest.NewFakeService()
	var requested []int
	l := lazy.NewList(context.Background(), svc, pagedInts(30, 10, 1, &requested), observer.Options{},
		lazy.WithScheduler(clock.Schedule), lazy.WithMaxRetries(3), lazy.WithRetryDelay(0))
	drain(l.Attach("end"), l.Update)
	drain(svc.Fire("end", true), l.Update)

	assert.Equal(t, []int{1}, requested)
	require.Error(t, l.Err())
	assert.False(t, l.Loading())
	assert.Empty(t, clock.Scheduled, "no backoff timer")
}

func TestList_Reset(t *testing.T) {
	svc := observertest.NewFakeService()
	var requested []int
	l := lazy.NewList(context.Background(), svc, pagedInts(5, 10, 0, &requested), observer.Options{})
	drain(l.Attach("end"), l.Update)
	drain(svc.Fire("end", true), l.Update)
	require.Len(t, l.Items(), 5)

	drain(l.Reset(), l.Update)
	assert.Equal(t, []int{1, 1}, requested)
	assert.Len(t, l.Items(), 5)
}
