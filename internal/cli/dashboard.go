package cli

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/shepherd/internal/church"
	"github.com/rshade/shepherd/internal/lazy"
	"github.com/rshade/shepherd/internal/session"
	"github.com/rshade/shepherd/internal/tui"
)

// ErrNotInteractive is returned when the dashboard cannot take over the terminal.
var ErrNotInteractive = errors.New("dashboard needs an interactive terminal; try 'shepherd breadcrumb' for plain output")

func newDashboardCmd(st *state) *cobra.Command {
	var noAnimate bool

	cmd := &cobra.Command{
		Use:   "dashboard [path]",
		Short: "Open the interactive dashboard",
		Long: `Opens the church dashboard at path (default /dashboard).

Sections below the fold load only once they are scrolled into view. The member
directory fetches further pages while its end is visible. When api.base_url is
empty a mock API is started on a loopback port for the session.`,
		Example: `  shepherd dashboard
  shepherd dashboard /members
  shepherd dashboard /members/42 --no-animate`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := tui.HomePath
			if len(args) == 1 {
				path = args[0]
			}
			return runDashboard(cmd, st, path, noAnimate)
		},
	}
	cmd.Flags().BoolVar(&noAnimate, "no-animate", false, "disable skeleton shimmer")
	return cmd
}

func runDashboard(cmd *cobra.Command, st *state, path string, noAnimate bool) error {
	if tui.DetectOutputMode(false, false, false) != tui.OutputModeInteractive {
		return ErrNotInteractive
	}
	ctx := cmd.Context()

	base, stop, err := backend(ctx, st)
	if err != nil {
		return err
	}
	defer stop()

	opts, err := dashboardOptions(st, base)
	if err != nil {
		return err
	}
	opts.Animate = opts.Animate && !noAnimate

	st.log.Info().Ctx(ctx).Str("route", tui.NormalizePath(path)).Str("api", base).Msg("opening dashboard")
	p := tea.NewProgram(tui.NewDashboardModel(ctx, opts, path), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running dashboard: %w", err)
	}
	return nil
}

// dashboardOptions wires the dashboard to the API at base and the saved session.
func dashboardOptions(st *state, base string) (tui.Options, error) {
	cfg := st.cfg
	hc := httpClient(cfg)

	resolver, err := newResolver(st, base, hc)
	if err != nil {
		return tui.Options{}, err
	}
	sessionPath, err := cfg.SessionFile()
	if err != nil {
		return tui.Options{}, err
	}
	sess, err := session.LoadOrGuest(sessionPath)
	if err != nil {
		return tui.Options{}, fmt.Errorf("loading session: %w", err)
	}

	client := church.NewClient(base, hc)
	return tui.Options{
		Source:        client,
		Resolver:      resolver,
		Session:       sess,
		Images:        lazy.HTTPImageFetcher(hc),
		PhotoURL:      client.PhotoURL,
		RootMargin:    cfg.Lazy.RootMargin,
		ObserverDelay: cfg.Lazy.ObserverDelay.Std(),
		MaxRetries:    retryLimit(cfg.Lazy.MaxRetries),
		RetryDelay:    cfg.Lazy.RetryDelay.Std(),
		StepDelay:     cfg.Lazy.StepDelay.Std(),
		Animate:       cfg.Lazy.Animate,
	}, nil
}

// retryLimit maps the configured count onto tui.Options, where zero means
// "use the default" and a negative value disables retries.
func retryLimit(n int) int {
	if n == 0 {
		return -1
	}
	return n
}
