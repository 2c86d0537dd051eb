package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/shepherd/internal/config"
	"github.com/rshade/shepherd/internal/logging"
)

const tuiLogFile = "shepherd.log"

// setupLogging configures logging from config, environment and CLI flags,
// then stores the logger and a trace ID on the command context. forceFile
// sends output to a file even when none is configured.
func setupLogging(cmd *cobra.Command, st *state, forceFile bool) error {
	lc := st.cfg.Logging
	if st.debug {
		lc.Level = "debug"
	}
	if st.logFile != "" {
		lc.File = st.logFile
	}
	if forceFile && lc.File == "" {
		dir, err := config.Dir()
		if err != nil {
			return err
		}
		lc.File = filepath.Join(dir, tuiLogFile)
	}

	log, closer, err := logging.NewLogger(lc.ToLoggingConfig(forceFile))
	if err != nil {
		return fmt.Errorf("configuring logging: %w", err)
	}
	st.closer = closer
	st.log = log.With().Str("component", "cli").Logger()
	logging.SetFallback(log)

	ctx, _ := logging.GetOrGenerateTraceID(cmd.Context())
	ctx = logging.ContextWithLogger(ctx, log)
	cmd.SetContext(ctx)

	st.log.Debug().Ctx(ctx).Str("command", cmd.Name()).Msg("command started")
	if st.cfg.API.FetchTimeout == 0 {
		st.log.Warn().Ctx(ctx).
			Str("operation", "breadcrumb_fetch").
			Msg("api.fetch_timeout is unset; record lookups have no deadline")
	}
	return nil
}

// cleanupLogging releases the log file handle.
func cleanupLogging(_ *cobra.Command, st *state) error {
	if st.closer == nil {
		return nil
	}
	err := st.closer.Close()
	st.closer = nil
	return err
}
