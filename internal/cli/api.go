package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/cache"
	"github.com/rshade/shepherd/internal/church"
	"github.com/rshade/shepherd/internal/config"
)

const (
	loopbackAddr      = "127.0.0.1:0"
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

// apiServer is the mock church API bound to a listener.
type apiServer struct {
	URL  string
	srv  *http.Server
	ln   net.Listener
	done chan error
}

// listenMockAPI binds addr and serves the seeded store on it in the background.
func listenMockAPI(ctx context.Context, cfg *config.Config, log zerolog.Logger, addr string) (*apiServer, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listening on %s: %w", addr, err)
	}
	store := church.NewStore(cfg.API.MockLatency.Std())
	a := &apiServer{
		URL: "http://" + ln.Addr().String(),
		srv: &http.Server{
			Handler:           church.NewAPIHandler(store, log),
			ReadHeaderTimeout: readHeaderTimeout,
			BaseContext:       func(net.Listener) context.Context { return ctx },
		},
		ln:   ln,
		done: make(chan error, 1),
	}
	go func() { a.done <- a.srv.Serve(ln) }()
	log.Info().Ctx(ctx).Str("url", a.URL).Msg("mock api listening")
	return a, nil
}

// Wait blocks until the server stops. A graceful shutdown is not an error.
func (a *apiServer) Wait() error {
	err := <-a.done
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Close shuts the server down, waiting up to shutdownTimeout for requests.
func (a *apiServer) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return a.srv.Shutdown(ctx)
}

// backend returns the API base URL. When none is configured the mock API is
// started on a loopback port; stop releases it.
func backend(ctx context.Context, st *state) (string, func(), error) {
	if st.cfg.API.BaseURL != "" {
		return st.cfg.API.BaseURL, func() {}, nil
	}
	a, err := listenMockAPI(ctx, st.cfg, st.log, loopbackAddr)
	if err != nil {
		return "", nil, err
	}
	return a.URL, func() {
		if err := a.Close(); err != nil {
			st.log.Warn().Err(err).Msg("stopping mock api")
		}
	}, nil
}

// httpClient bounds whole requests by the configured fetch timeout.
func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.API.FetchTimeout.Std()}
}

// newResolver builds the breadcrumb resolver for base, with the on-disk
// label cache in front of HTTP lookups when caching is enabled.
func newResolver(st *state, base string, hc *http.Client) (*breadcrumb.Resolver, error) {
	var f breadcrumb.Fetcher = &breadcrumb.HTTPFetcher{Client: hc, Timeout: st.cfg.API.FetchTimeout.Std()}
	if st.cfg.Cache.Enabled {
		dir, err := st.cfg.CacheDir()
		if err != nil {
			return nil, err
		}
		ttl := time.Duration(st.cfg.Cache.TTLSeconds) * time.Second
		store, err := cache.NewFileStore(dir, true, ttl)
		if err != nil {
			return nil, fmt.Errorf("opening label cache: %w", err)
		}
		cf := breadcrumb.NewCachingFetcher(f, store)
		cf.Timeout = st.cfg.API.FetchTimeout.Std()
		f = cf
	}
	return breadcrumb.NewResolver(st.cfg.ResolvedEndpoints(base), f), nil
}
