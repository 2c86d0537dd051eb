package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const defaultServeAddr = "127.0.0.1:8080"

func newServeCmd(st *state) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the mock church API",
		Long: `Serves the seeded in-memory dataset over HTTP until interrupted. Point
api.base_url at it to share one backend between several dashboards.`,
		Example: `  shepherd serve
  shepherd serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, st, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultServeAddr, "listen address")
	return cmd
}

// runServe blocks until ctx is done, then shuts the server down.
func runServe(ctx context.Context, cmd *cobra.Command, st *state, addr string) error {
	a, err := listenMockAPI(ctx, st.cfg, st.log, addr)
	if err != nil {
		return err
	}
	cmd.Printf("Serving mock API at %s\n", a.URL)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(a.Wait)
	g.Go(func() error {
		<-gctx.Done()
		st.log.Info().Msg("shutting down mock api")
		return a.Close()
	})
	return g.Wait()
}
