package lazy

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoding.
	_ "image/jpeg" // Register JPEG decoding.
	_ "image/png"  // Register PNG decoding.
	"net/http"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/logging"
	"github.com/rshade/shepherd/internal/observer"
)

// ErrImageFetch wraps every image fetch failure.
var ErrImageFetch = errors.New("image fetch failed")

// ImageInfo describes a successfully fetched image.
type ImageInfo struct {
	Width  int
	Height int
	Format string
}

// ImageFetcher retrieves and validates the image at url.
type ImageFetcher func(ctx context.Context, url string) (ImageInfo, error)

// HTTPImageFetcher returns an ImageFetcher that downloads url with client and
// decodes the image header. A nil client uses http.DefaultClient.
func HTTPImageFetcher(client *http.Client) ImageFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context, url string) (ImageInfo, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("%w: %w", ErrImageFetch, err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("%w: %w", ErrImageFetch, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
			return ImageInfo{}, fmt.Errorf("%w: %s returned %s", ErrImageFetch, url, resp.Status)
		}
		cfg, format, err := image.DecodeConfig(resp.Body)
		if err != nil {
			return ImageInfo{}, fmt.Errorf("%w: decoding %s: %w", ErrImageFetch, url, err)
		}
		return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
	}
}

type imageResultMsg struct {
	id   observer.ID
	gen  uint64
	info ImageInfo
	err  error
}

// Image defers fetching SourceURL until its region has been seen once.
// ResolvedURL stays empty until the fetch succeeds, so nothing binds the raw
// source before the image is visible.
type Image struct {
	ctx   context.Context
	log   *zerolog.Logger
	obs   *observer.Observer
	fetch ImageFetcher
	cfg   settings

	source   string
	resolved string
	info     ImageInfo
	loading  bool
	loaded   bool
	errored  bool
	err      error
	retries  int
	gen      uint64
	cancel   context.CancelFunc
}

// NewImage creates an image for src. The observer is always one-shot.
func NewImage(
	ctx context.Context,
	svc observer.Service,
	src string,
	fetch ImageFetcher,
	opts observer.Options,
	options ...Option,
) *Image {
	cfg := newSettings(options)
	opts.TriggerOnce = true
	if fetch == nil {
		fetch = HTTPImageFetcher(nil)
	}
	log := logging.ComponentLogger(ctx, "lazy.image")
	return &Image{
		ctx:    ctx,
		log:    log,
		obs:    observer.New(svc, opts, observer.WithScheduler(cfg.schedule), observer.WithLogger(*log)),
		fetch:  fetch,
		cfg:    cfg,
		source: src,
	}
}

// Attach binds the image to a page region.
func (i *Image) Attach(target observer.Target) tea.Cmd { return i.obs.Attach(target) }

// Detach releases the observer and abandons any fetch in flight.
func (i *Image) Detach() {
	i.obs.Detach()
	i.abandon()
}

// SourceURL returns the configured source.
func (i *Image) SourceURL() string { return i.source }

// ResolvedURL returns the URL to bind, set only after a successful fetch.
func (i *Image) ResolvedURL() (string, bool) { return i.resolved, i.resolved != "" }

// Info returns the decoded image header after a successful fetch.
func (i *Image) Info() ImageInfo { return i.info }

// Loaded reports a successful fetch.
func (i *Image) Loaded() bool { return i.loaded }

// Loading reports a fetch in flight.
func (i *Image) Loading() bool { return i.loading }

// Errored reports a failed fetch.
func (i *Image) Errored() bool { return i.errored }

// Err returns the last fetch error.
func (i *Image) Err() error { return i.err }

// InView and HasBeenInView mirror the underlying observer.
func (i *Image) InView() bool        { return i.obs.InView() }
func (i *Image) HasBeenInView() bool { return i.obs.HasBeenInView() }

// ShowPlaceholder reports whether a placeholder should render instead of the image.
func (i *Image) ShowPlaceholder() bool { return !i.obs.InView() && !i.obs.HasBeenInView() }

// RetriesLeft returns how many manual retries remain.
func (i *Image) RetriesLeft() int { return max(i.cfg.maxRetries-i.retries, 0) }

// CanRetry reports whether Retry would issue a fetch.
func (i *Image) CanRetry() bool { return i.errored && i.RetriesLeft() > 0 }

// Retry refetches after an error, at most MaxRetries times.
func (i *Image) Retry() tea.Cmd {
	if !i.CanRetry() {
		return nil
	}
	i.retries++
	i.errored = false
	i.err = nil
	return i.start()
}

// SetSource switches to a new source, discarding the previous result. If the
// region has already been seen the new source is fetched right away.
func (i *Image) SetSource(src string) tea.Cmd {
	if src == i.source {
		return nil
	}
	i.abandon()
	i.source = src
	i.resolved = ""
	i.info = ImageInfo{}
	i.loaded = false
	i.errored = false
	i.err = nil
	i.retries = 0
	return i.maybeStart()
}

// Update routes observer and fetch messages.
func (i *Image) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case observer.ChangedMsg:
		if msg.ObserverID != i.obs.ID() {
			return nil
		}
		return i.maybeStart()
	case imageResultMsg:
		if msg.id != i.obs.ID() || msg.gen != i.gen {
			return nil
		}
		i.finish(msg)
		return nil
	default:
		return i.obs.Update(msg)
	}
}

func (i *Image) maybeStart() tea.Cmd {
	if !i.obs.HasBeenInView() || i.resolved != "" || i.loading || i.errored || i.source == "" {
		return nil
	}
	return i.start()
}

func (i *Image) start() tea.Cmd {
	i.abandon()
	i.gen++
	i.loading = true

	ctx, cancel := context.WithCancel(i.ctx)
	i.cancel = cancel
	id, gen, src, fetch := i.obs.ID(), i.gen, i.source, i.fetch

	return func() tea.Msg {
		info, err := fetch(ctx, src)
		return imageResultMsg{id: id, gen: gen, info: info, err: err}
	}
}

func (i *Image) finish(msg imageResultMsg) {
	i.loading = false
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	if msg.err != nil {
		i.errored = true
		i.err = msg.err
		i.log.Warn().Ctx(i.ctx).Str("url", i.source).Err(msg.err).Msg("image load failed")
		return
	}
	i.resolved = i.source
	i.info = msg.info
	i.loaded = true
}

func (i *Image) abandon() {
	if i.cancel != nil {
		i.cancel()
		i.cancel = nil
	}
	if i.loading {
		i.loading = false
		i.gen++
	}
}
