package breadcrumb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/cache"
)

var endpoints = map[string]string{"members": "/api/members", "events": "/api/events"}

// mockFetcher serves canned records by URL and counts calls.
type mockFetcher struct {
	mu      sync.Mutex
	records map[string]map[string]any
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, url string) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, url)
	r, ok := m.records[url]
	if !ok {
		return nil, errors.New("404")
	}
	return r, nil
}

func newResolver(f breadcrumb.Fetcher) *breadcrumb.Resolver {
	return breadcrumb.NewResolver(endpoints, f)
}

func TestResolve_MemberName(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{
		"/api/members/42": {"firstName": "Jane", "lastName": "Doe"},
	}}

	trail := newResolver(f).Resolve(context.Background(), "/dashboard/members/42")

	require.NotNil(t, trail.Home)
	assert.Equal(t, breadcrumb.Item{Label: "Dashboard", Href: "/dashboard"}, *trail.Home)
	assert.Equal(t, []breadcrumb.Item{
		{Label: "Members", Href: "/dashboard/members"},
		{Label: "Jane Doe", IsCurrentPage: true},
	}, trail.Items)
	assert.Equal(t, []string{"/api/members/42"}, f.calls)
}

func TestResolve_FetchFailureFallsBack(t *testing.T) {
	trail := newResolver(&mockFetcher{}).Resolve(context.Background(), "/dashboard/members/42")

	require.Len(t, trail.Items, 2)
	assert.Equal(t, breadcrumb.Item{Label: "Item 42", IsCurrentPage: true}, trail.Items[1])
}

func TestResolve_Slug(t *testing.T) {
	trail := newResolver(nil).Resolve(context.Background(), "/dashboard/my-custom-page")

	require.Len(t, trail.Items, 1)
	assert.Equal(t, "My Custom Page", trail.Items[0].Label)
	assert.True(t, trail.Items[0].IsCurrentPage)
	assert.Empty(t, trail.Items[0].Href)
}

func TestResolve_Idempotent(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{
		"/api/events/7": {"title": "Easter Service"},
	}}
	r := newResolver(f)

	a := r.Resolve(context.Background(), "/dashboard/events/7/volunteer-signup")
	b := r.Resolve(context.Background(), "/dashboard/events/7/volunteer-signup")
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"Events", "Easter Service", "Volunteer Signup"}, a.Labels())
	assert.Equal(t, "/dashboard/events/7", a.Items[1].Href)
}

func TestResolve_NumericNeedsEndpointOnRawPredecessor(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{
		"/api/members/5": {"name": "should not be used"},
	}}
	r := newResolver(f)

	// "5" follows "reports", which has no endpoint.
	trail := r.Resolve(context.Background(), "/dashboard/reports/5")
	assert.Equal(t, []string{"Reports", "5"}, trail.Labels())

	// The leading segment has no predecessor at all.
	r.Home = ""
	trail = r.Resolve(context.Background(), "/42")
	assert.Equal(t, []string{"42"}, trail.Labels())
	assert.Nil(t, trail.Home)
	assert.Empty(t, f.calls)
}

func TestResolve_StaticWinsOverNumeric(t *testing.T) {
	r := newResolver(&mockFetcher{})
	r.Labels["2024"] = "Year 2024"
	trail := r.Resolve(context.Background(), "/dashboard/members/2024")
	assert.Equal(t, "Year 2024", trail.Items[1].Label)
}

func TestResolve_HomeOnly(t *testing.T) {
	trail := newResolver(nil).Resolve(context.Background(), "/dashboard")
	require.NotNil(t, trail.Home)
	assert.True(t, trail.Home.IsCurrentPage)
	assert.Empty(t, trail.Home.Href)
	assert.Empty(t, trail.Items)

	trail = newResolver(nil).Resolve(context.Background(), "/settings?tab=1")
	assert.Equal(t, "/dashboard", trail.Home.Href)
	assert.Equal(t, []string{"Settings"}, trail.Labels())
}

func TestResolve_CancelledContextFallsBack(t *testing.T) {
	f := &mockFetcher{records: map[string]map[string]any{"/api/members/1": {"name": "A"}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	trail := newResolver(f).Resolve(ctx, "/dashboard/members/1")
	assert.Equal(t, "Item 1", trail.Items[1].Label)
	assert.False(t, trail.Pending())
	assert.Empty(t, f.calls)
}

func TestPlan(t *testing.T) {
	trail := newResolver(nil).Plan("/dashboard/members/42")
	require.Len(t, trail.Items, 2)
	assert.True(t, trail.Items[1].Loading)
	assert.Equal(t, "Item 42", trail.Items[1].Label)
	assert.True(t, trail.Pending())
}

func TestLabelFromRecord(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
		want   string
	}{
		{"title first", map[string]any{"title": "T", "name": "N"}, "T"},
		{"name", map[string]any{"name": "Youth Choir", "subject": "S"}, "Youth Choir"},
		{"full name", map[string]any{"firstName": "Jane", "lastName": "Doe", "subject": "S"}, "Jane Doe"},
		{"first name only falls through", map[string]any{"firstName": "Jane", "description": "Usher"}, "Usher"},
		{"last name only falls through", map[string]any{"lastName": "Doe"}, "Item 9"},
		{"subject", map[string]any{"subject": "Picnic", "description": "D"}, "Picnic"},
		{"description", map[string]any{"description": "Weekly notes"}, "Weekly notes"},
		{"empty strings skipped", map[string]any{"title": "", "name": "  ", "subject": "S"}, "S"},
		{"numbers count", map[string]any{"title": float64(2024)}, "2024"},
		{"nothing", map[string]any{"id": 9}, "Item 9"},
		{"nil record", nil, "Item 9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, breadcrumb.LabelFromRecord(tt.record, "9"))
		})
	}
}

func TestFormatSlug(t *testing.T) {
	assert.Equal(t, "My Custom Page", breadcrumb.FormatSlug("my-custom-page"))
	assert.Equal(t, "McDonald Hall", breadcrumb.FormatSlug("mcDonald-hall"))
	assert.Equal(t, "Single", breadcrumb.FormatSlug("single"))
}

func TestClassify(t *testing.T) {
	segs := []string{"dashboard", "members", "42", "notes", "7"}
	labels := breadcrumb.DefaultLabels()
	assert.Equal(t, breadcrumb.KindStatic, breadcrumb.Classify(segs, 1, labels, endpoints))
	assert.Equal(t, breadcrumb.KindNumericID, breadcrumb.Classify(segs, 2, labels, endpoints))
	assert.Equal(t, breadcrumb.KindSlug, breadcrumb.Classify(segs, 3, labels, endpoints))
	assert.Equal(t, breadcrumb.KindSlug, breadcrumb.Classify(segs, 4, labels, endpoints))
}

func TestHTTPFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/members/42":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"firstName":"Jane","lastName":"Doe"}`))
		case "/api/list":
			_, _ = w.Write([]byte(`[1,2]`))
		case "/api/slow":
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{}`))
		default:
			http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := &breadcrumb.HTTPFetcher{Client: srv.Client()}
	record, err := f.Fetch(context.Background(), srv.URL+"/api/members/42")
	require.NoError(t, err)
	assert.Equal(t, "Jane", record["firstName"])

	_, err = f.Fetch(context.Background(), srv.URL+"/api/members/404")
	assert.ErrorIs(t, err, breadcrumb.ErrStatus)

	_, err = f.Fetch(context.Background(), srv.URL+"/api/list")
	assert.ErrorIs(t, err, breadcrumb.ErrNotObject)

	f.Timeout = 20 * time.Millisecond
	_, err = f.Fetch(context.Background(), srv.URL+"/api/slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCachingFetcher(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	next := breadcrumb.FetcherFunc(func(_ context.Context, url string) (map[string]any, error) {
		calls.Add(1)
		<-release
		if url == "bad" {
			return nil, errors.New("boom")
		}
		return map[string]any{"name": "Choir"}, nil
	})
	store := cache.NewMemoryStore(time.Minute)
	f := breadcrumb.NewCachingFetcher(next, store)

	var wg sync.WaitGroup
	results := make([]map[string]any, 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = f.Fetch(context.Background(), "good")
		}()
	}
	// Let the callers pile up on the single in-flight lookup.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "Choir", r["name"])
	}
	assert.Equal(t, int32(1), calls.Load(), "concurrent lookups collapse")

	_, err := f.Fetch(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "served from cache")

	_, err = f.Fetch(context.Background(), "bad")
	require.Error(t, err)
	_, err = f.Fetch(context.Background(), "bad")
	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "failures are not cached")
	assert.Equal(t, 1, store.Len())
}

func TestCachingFetcher_CancelledCallerDoesNotFailSharedLookup(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	next := breadcrumb.FetcherFunc(func(ctx context.Context, url string) (map[string]any, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-release:
		}
		return map[string]any{"firstName": "Jane", "lastName": "Doe"}, nil
	})
	r := newResolver(breadcrumb.NewCachingFetcher(next, cache.NewMemoryStore(time.Minute)))

	oldCtx, cancelOld := context.WithCancel(context.Background())
	oldDone := make(chan breadcrumb.Trail, 1)
	go func() { oldDone <- r.Resolve(oldCtx, "/members/42") }()
	<-started

	newDone := make(chan breadcrumb.Trail, 1)
	go func() { newDone <- r.Resolve(context.Background(), "/members/42/edit") }()
	// Let the second pass join the in-flight lookup.
	time.Sleep(50 * time.Millisecond)

	cancelOld()
	old := <-oldDone
	assert.Equal(t, "Item 42", old.Items[1].Label, "the cancelled pass falls back")

	close(release)
	current := <-newDone
	assert.Equal(t, "Jane Doe", current.Items[1].Label)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCachingFetcher_Timeout(t *testing.T) {
	next := breadcrumb.FetcherFunc(func(ctx context.Context, _ string) (map[string]any, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	f := breadcrumb.NewCachingFetcher(next, cache.NewMemoryStore(time.Minute))
	f.Timeout = 20 * time.Millisecond

	_, err := f.Fetch(context.Background(), "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
