package breadcrumb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/rshade/shepherd/internal/cache"
	"github.com/rshade/shepherd/internal/logging"
)

// Lookup errors.
var (
	ErrStatus    = errors.New("unexpected response status")
	ErrNotObject = errors.New("response is not a JSON object")
)

const maxRecordBytes = 1 << 20

// Fetcher retrieves the JSON record at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (map[string]any, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, url string) (map[string]any, error)

// Fetch implements Fetcher.
func (f FetcherFunc) Fetch(ctx context.Context, url string) (map[string]any, error) {
	return f(ctx, url)
}

// HTTPFetcher issues GET requests and decodes JSON objects.
type HTTPFetcher struct {
	Client *http.Client
	// Timeout bounds each lookup. Zero leaves lookups unbounded.
	Timeout time.Duration
}

// Fetch implements Fetcher.
func (h *HTTPFetcher) Fetch(ctx context.Context, url string) (map[string]any, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s returned %s", ErrStatus, url, resp.Status)
	}

	return decodeRecord(io.LimitReader(resp.Body, maxRecordBytes))
}

func decodeRecord(r io.Reader) (map[string]any, error) {
	var v any
	if err := json.NewDecoder(r).Decode(&v); err != nil {
		return nil, fmt.Errorf("decoding record: %w", err)
	}
	record, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return record, nil
}

// CachingFetcher memoizes successful lookups in a Store and collapses
// concurrent lookups of the same URL into one request. The shared request
// outlives any single caller: a caller whose ctx ends stops waiting, while
// the others still get the result.
type CachingFetcher struct {
	// Timeout bounds the shared request. Zero leaves it to next.
	Timeout time.Duration

	next  Fetcher
	store cache.Store
	group singleflight.Group
}

// NewCachingFetcher wraps next with store.
func NewCachingFetcher(next Fetcher, store cache.Store) *CachingFetcher {
	return &CachingFetcher{next: next, store: store}
}

// Fetch implements Fetcher.
func (c *CachingFetcher) Fetch(ctx context.Context, url string) (map[string]any, error) {
	key := cache.Key(http.MethodGet, url)

	if raw, err := c.store.Get(key); err == nil {
		if record, decodeErr := decodeRecordBytes(raw); decodeErr == nil {
			return record, nil
		}
	} else if !errors.Is(err, cache.ErrNotFound) && !errors.Is(err, cache.ErrExpired) &&
		!errors.Is(err, cache.ErrDisabled) {
		logging.FromContext(ctx).Debug().Ctx(ctx).
			Str("component", "breadcrumb").
			Err(err).
			Msg("label cache read failed")
	}

	ch := c.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		if c.Timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, c.Timeout)
			defer cancel()
		}
		record, fetchErr := c.next.Fetch(shared, url)
		if fetchErr != nil {
			return nil, fetchErr
		}
		if raw, marshalErr := json.Marshal(record); marshalErr == nil {
			_ = c.store.Set(key, raw)
		}
		return record, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(map[string]any), nil //nolint:errcheck,forcetypeassert // Only maps are stored.
	}
}

func decodeRecordBytes(raw []byte) (map[string]any, error) {
	var record map[string]any
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	if record == nil {
		return nil, ErrNotObject
	}
	return record, nil
}
