package cli

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/shepherd/internal/cache"
	"github.com/rshade/shepherd/internal/config"
	"github.com/rshade/shepherd/internal/session"
	"github.com/rshade/shepherd/pkg/version"
)

// StepStatus is the outcome of a setup step.
type StepStatus int

const (
	// StepSuccess indicates the step completed.
	StepSuccess StepStatus = iota
	// StepWarning indicates the step completed with a non-fatal issue.
	StepWarning
	// StepSkipped indicates there was nothing to do.
	StepSkipped
	// StepError indicates the step failed.
	StepError
)

// StepResult describes the outcome of a single setup step.
type StepResult struct {
	Name     string
	Status   StepStatus
	Message  string
	Critical bool
	Err      error
}

// SetupResult is the aggregate outcome of all setup steps.
type SetupResult struct {
	Steps       []StepResult
	HasErrors   bool
	HasWarnings bool
}

const dirPermHome = 0o700

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// formatStatus returns a status marker appropriate for the output mode.
func formatStatus(status StepStatus, plain bool) string {
	if plain {
		switch status {
		case StepSuccess:
			return "[OK]"
		case StepWarning:
			return "[WARN]"
		case StepSkipped:
			return "[SKIP]"
		case StepError:
			return "[ERR]"
		default:
			return "[??]"
		}
	}
	switch status {
	case StepSuccess:
		return "✓"
	case StepWarning:
		return "!"
	case StepSkipped:
		return "-"
	case StepError:
		return "✗"
	default:
		return "?"
	}
}

func newSetupCmd(st *state) *cobra.Command {
	var nonInteractive bool

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Prepare the shepherd home directory",
		Long: `Creates ~/.shepherd, writes a default config.yaml when none exists, prunes
expired breadcrumb labels from the cache and reports the active session.

Safe to run repeatedly; existing configuration and sessions are kept.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			plain := nonInteractive || !isTerminal(os.Stdin)
			return runSetup(cmd, st, plain)
		},
	}
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "ASCII status markers for CI logs")
	return cmd
}

// runSetup runs every step even when an earlier one fails. It returns an
// error only when a critical step fails.
func runSetup(cmd *cobra.Command, st *state, plain bool) error {
	result := &SetupResult{}
	steps := []func(*state) StepResult{stepVersion, stepHomeDir, stepInitConfig, stepPruneCache, stepSession}
	for _, run := range steps {
		step := run(st)
		cmd.Printf("%s %s\n", formatStatus(step.Status, plain), step.Message)
		result.Steps = append(result.Steps, step)
		if step.Status == StepError && step.Critical {
			result.HasErrors = true
		}
		if step.Status == StepWarning {
			result.HasWarnings = true
		}
	}

	cmd.Println()
	if result.HasErrors {
		st.log.Error().Ctx(cmd.Context()).Str("component", "setup").Msg("setup completed with critical errors")
		cmd.Println("Setup completed with errors. Review the messages above.")
		return errors.New("setup failed: one or more critical steps failed")
	}
	cmd.Println("Setup complete! Run 'shepherd dashboard' to get started.")
	return nil
}

func stepVersion(*state) StepResult {
	return StepResult{
		Name:    "Version",
		Status:  StepSuccess,
		Message: fmt.Sprintf("Shepherd %s (%s)", version.GetVersion(), runtime.Version()),
	}
}

func stepHomeDir(*state) StepResult {
	dir, err := config.Dir()
	if err == nil {
		err = os.MkdirAll(dir, dirPermHome)
	}
	if err != nil {
		return StepResult{Name: "Home directory", Status: StepError, Critical: true, Err: err,
			Message: fmt.Sprintf("Could not create home directory: %v", err)}
	}
	return StepResult{Name: "Home directory", Status: StepSuccess, Message: "Home directory " + dir}
}

func stepInitConfig(st *state) StepResult {
	path, err := configPath(st)
	if err != nil {
		return StepResult{Name: "Config", Status: StepError, Critical: true, Err: err,
			Message: fmt.Sprintf("Could not locate config: %v", err)}
	}
	if _, err = os.Stat(path); err == nil {
		return StepResult{Name: "Config", Status: StepSkipped, Message: "Config already exists at " + path}
	}
	if err = config.New().Save(path); err != nil {
		return StepResult{Name: "Config", Status: StepError, Critical: true, Err: err,
			Message: fmt.Sprintf("Could not write config: %v", err)}
	}
	return StepResult{Name: "Config", Status: StepSuccess, Message: "Wrote default config to " + path}
}

func stepPruneCache(st *state) StepResult {
	if !st.cfg.Cache.Enabled {
		return StepResult{Name: "Label cache", Status: StepSkipped, Message: "Label cache disabled"}
	}
	dir, err := st.cfg.CacheDir()
	if err != nil {
		return StepResult{Name: "Label cache", Status: StepWarning, Err: err,
			Message: fmt.Sprintf("Could not locate label cache: %v", err)}
	}
	store, err := cache.NewFileStore(dir, true, time.Duration(st.cfg.Cache.TTLSeconds)*time.Second)
	if err != nil {
		return StepResult{Name: "Label cache", Status: StepWarning, Err: err,
			Message: fmt.Sprintf("Could not open label cache: %v", err)}
	}
	removed, err := store.Prune()
	if err != nil {
		return StepResult{Name: "Label cache", Status: StepWarning, Err: err,
			Message: fmt.Sprintf("Could not prune label cache: %v", err)}
	}
	return StepResult{Name: "Label cache", Status: StepSuccess,
		Message: fmt.Sprintf("Label cache at %s (%d expired entries removed)", dir, removed)}
}

func stepSession(st *state) StepResult {
	path, err := st.cfg.SessionFile()
	if err != nil {
		return StepResult{Name: "Session", Status: StepWarning, Err: err, Message: err.Error()}
	}
	s, err := session.Load(path)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return StepResult{Name: "Session", Status: StepSkipped,
			Message: "No saved session; the dashboard runs as guest (shepherd session login)"}
	case err != nil:
		return StepResult{Name: "Session", Status: StepWarning, Err: err,
			Message: fmt.Sprintf("Saved session is unreadable: %v", err)}
	}
	return StepResult{Name: "Session", Status: StepSuccess, Message: "Signed in as " + s.User}
}
