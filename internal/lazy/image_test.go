package lazy_test

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/observer"
	"github.com/rshade/shepherd/internal/observer/observertest"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestHTTPImageFetcher(t *testing.T) {
	body := pngBytes(t, 4, 3)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(body)
		case "/garbage.png":
			_, _ = w.Write([]byte("not an image"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	fetch := lazy.HTTPImageFetcher(srv.Client())

	info, err := fetch(context.Background(), srv.URL+"/ok.png")
	require.NoError(t, err)
	assert.Equal(t, lazy.ImageInfo{Width: 4, Height: 3, Format: "png"}, info)

	_, err = fetch(context.Background(), srv.URL+"/missing.png")
	assert.ErrorIs(t, err, lazy.ErrImageFetch)

	_, err = fetch(context.Background(), srv.URL+"/garbage.png")
	assert.ErrorIs(t, err, lazy.ErrImageFetch)
}

func countingFetcher(fail *atomic.Bool, calls *atomic.Int32) lazy.ImageFetcher {
	return func(context.Context, string) (lazy.ImageInfo, error) {
		calls.Add(1)
		if fail.Load() {
			return lazy.ImageInfo{}, lazy.ErrImageFetch
		}
		return lazy.ImageInfo{Width: 1, Height: 1, Format: "png"}, nil
	}
}

func TestImage_FetchesOnceWhenSeen(t *testing.T) {
	svc := observertest.NewFakeService()
	var fail atomic.Bool
	var calls atomic.Int32
	img := lazy.NewImage(context.Background(), svc, "http://x/photo.png", countingFetcher(&fail, &calls), observer.Options{})
	drain(img.Attach("photo"), img.Update)

	_, ok := img.ResolvedURL()
	assert.False(t, ok)
	assert.True(t, img.ShowPlaceholder())
	assert.Zero(t, calls.Load())

	drain(svc.Fire("photo", true), img.Update)
	url, ok := img.ResolvedURL()
	require.True(t, ok)
	assert.Equal(t, "http://x/photo.png", url)
	assert.True(t, img.Loaded())
	assert.False(t, img.ShowPlaceholder())
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 0, svc.Active(), "image observation is one-shot")

	assert.Nil(t, img.Retry(), "nothing to retry after success")
	assert.Equal(t, int32(1), calls.Load())
}

func TestImage_ErrorAndBoundedRetry(t *testing.T) {
	svc := observertest.NewFakeService()
	var fail atomic.Bool
	fail.Store(true)
	var calls atomic.Int32
	img := lazy.NewImage(context.Background(), svc, "http://x/a.png", countingFetcher(&fail, &calls), observer.Options{},
		lazy.WithMaxRetries(2))
	drain(img.Attach("photo"), img.Update)
	drain(svc.Fire("photo", true), img.Update)

	assert.True(t, img.Errored())
	_, ok := img.ResolvedURL()
	assert.False(t, ok, "resolved URL stays unset on failure")
	assert.ErrorIs(t, img.Err(), lazy.ErrImageFetch)

	drain(img.Retry(), img.Update)
	assert.Equal(t, 1, img.RetriesLeft())
	drain(img.Retry(), img.Update)
	assert.False(t, img.CanRetry())
	assert.Nil(t, img.Retry())
	assert.Equal(t, int32(3), calls.Load())

	img2 := lazy.NewImage(context.Background(), svc, "http://x/b.png", countingFetcher(&fail, &calls), observer.Options{})
	drain(img2.Attach("photo-2"), img2.Update)
	drain(svc.Fire("photo-2", true), img2.Update)
	require.True(t, img2.Errored())
	fail.Store(false)
	drain(img2.Retry(), img2.Update)
	assert.True(t, img2.Loaded())
}

func TestImage_SetSource(t *testing.T) {
	svc := observertest.NewFakeService()
	var fail atomic.Bool
	var calls atomic.Int32
	img := lazy.NewImage(context.Background(), svc, "", countingFetcher(&fail, &calls), observer.Options{})
	drain(img.Attach("photo"), img.Update)
	drain(svc.Fire("photo", true), img.Update)
	assert.Zero(t, calls.Load(), "empty source is never fetched")

	drain(img.SetSource("http://x/1.png"), img.Update)
	url, _ := img.ResolvedURL()
	assert.Equal(t, "http://x/1.png", url)

	assert.Nil(t, img.SetSource("http://x/1.png"))
	drain(img.SetSource("http://x/2.png"), img.Update)
	url, _ = img.ResolvedURL()
	assert.Equal(t, "http://x/2.png", url)
	assert.Equal(t, int32(2), calls.Load())
}

func TestImage_StaleResultDiscarded(t *testing.T) {
	svc := observertest.NewFakeService()
	var fail atomic.Bool
	var calls atomic.Int32
	img := lazy.NewImage(context.Background(), svc, "http://x/old.png", countingFetcher(&fail, &calls), observer.Options{})
	drain(img.Attach("photo"), img.Update)

	oldFetch := img.Update(svc.Fire("photo", true)())
	require.NotNil(t, oldFetch)
	newFetch := img.SetSource("http://x/new.png")
	require.NotNil(t, newFetch)

	assert.Nil(t, img.Update(oldFetch()))
	assert.False(t, img.Loaded())
	drain(newFetch, img.Update)
	url, _ := img.ResolvedURL()
	assert.Equal(t, "http://x/new.png", url)
}
