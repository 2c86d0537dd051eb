package cli

import (
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/shepherd/internal/config"
)

// state is shared by every subcommand. PersistentPreRunE fills it in.
type state struct {
	configPath string
	debug      bool
	logFile    string

	cfg    *config.Config
	log    zerolog.Logger
	closer io.Closer
}

// tuiCommands log to a file. Console output would corrupt the screen.
//
//nolint:gochecknoglobals // Fixed command set.
var tuiCommands = map[string]bool{"dashboard": true}

// NewRootCmd creates the root Cobra command for the shepherd CLI.
// It loads configuration, wires logging and tracing, and registers the
// dashboard, breadcrumb, serve, config, session and setup subcommands.
func NewRootCmd(ver string) *cobra.Command {
	st := &state{}

	cmd := &cobra.Command{
		Use:     "shepherd",
		Short:   "Church management dashboard",
		Long:    "Shepherd: a terminal dashboard for congregation records with progressive, on-scroll loading",
		Version: ver,
		Example: rootCmdExample,
		// Errors are returned to main, which prints them once.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(st.configPath)
			if err != nil {
				return fmt.Errorf("loading configuration: %w", err)
			}
			st.cfg = cfg
			return setupLogging(cmd, st, tuiCommands[cmd.Name()])
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, st)
		},
	}

	cmd.PersistentFlags().StringVar(&st.configPath, "config", "", "config file (default ~/.shepherd/config.yaml)")
	cmd.PersistentFlags().BoolVar(&st.debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&st.logFile, "log-file", "", "write logs to this file instead of stderr")

	cmd.AddCommand(
		newDashboardCmd(st),
		newBreadcrumbCmd(st),
		newServeCmd(st),
		newConfigCmd(st),
		newSessionCmd(st),
		newSetupCmd(st),
	)
	return cmd
}

const rootCmdExample = `  # Open the dashboard against the built-in mock API
  shepherd dashboard

  # Jump straight to a member profile
  shepherd dashboard /members/42

  # Resolve a breadcrumb trail as JSON
  shepherd breadcrumb /members/42 --output json

  # Run the mock API on its own
  shepherd serve --addr 127.0.0.1:8080

  # Sign in as the church treasurer
  shepherd session login --user pat --role treasurer`

// newConfigCmd creates the config command group.
func newConfigCmd(st *state) *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(newConfigInitCmd(st), newConfigShowCmd(st), newConfigValidateCmd(st))
	return cmd
}
