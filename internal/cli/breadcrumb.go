package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/shepherd/internal/breadcrumb"
	"github.com/rshade/shepherd/internal/tui"
)

// Output formats accepted by --output.
const (
	outputText = "text"
	outputJSON = "json"
)

// maxConcurrentLookups bounds parallel trail resolutions.
const maxConcurrentLookups = 4

type resolvedTrail struct {
	Path  string           `json:"path"`
	Trail breadcrumb.Trail `json:"trail"`
}

func newBreadcrumbCmd(st *state) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "breadcrumb <path>...",
		Short: "Resolve and print breadcrumb trails",
		Long: `Resolves each path into a breadcrumb trail. Numeric and UUID segments are
labelled from the record API. A lookup that fails falls back to "Item <id>".`,
		Example: `  shepherd breadcrumb /members/42
  shepherd breadcrumb /members/42 /events/3 --output json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != outputText && output != outputJSON {
				return fmt.Errorf("unsupported output %q (want %s or %s)", output, outputText, outputJSON)
			}
			return runBreadcrumb(cmd, st, args, output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or json")
	return cmd
}

func runBreadcrumb(cmd *cobra.Command, st *state, paths []string, output string) error {
	ctx := cmd.Context()
	base, stop, err := backend(ctx, st)
	if err != nil {
		return err
	}
	defer stop()

	resolver, err := newResolver(st, base, httpClient(st.cfg))
	if err != nil {
		return err
	}

	results := make([]resolvedTrail, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i, p := range paths {
		g.Go(func() error {
			path := tui.NormalizePath(p)
			results[i] = resolvedTrail{Path: path, Trail: resolver.Resolve(gctx, path)}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("resolving breadcrumbs: %w", err)
	}

	if output == outputJSON {
		return writeTrailsJSON(cmd.OutOrStdout(), results)
	}
	width := 0
	if tui.DetectOutputMode(false, false, false) != tui.OutputModePlain {
		width = tui.TerminalWidth()
	}
	writeTrailsText(cmd.OutOrStdout(), results, width)
	return nil
}

func writeTrailsJSON(w io.Writer, results []resolvedTrail) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

// writeTrailsText prints one trail per line. A positive width truncates
// lines to fit the terminal.
func writeTrailsText(w io.Writer, results []resolvedTrail, width int) {
	for _, r := range results {
		line := strings.TrimSpace(r.Trail.Text())
		if len(results) > 1 {
			line = r.Path + "\t" + line
		}
		if width > 0 {
			line = ansi.Truncate(line, width, "…")
		}
		fmt.Fprintln(w, line)
	}
}
