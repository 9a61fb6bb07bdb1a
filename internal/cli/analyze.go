package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/report"
)

func NewAnalyzeCmd(opts *Options) *cobra.Command {
	flags := &contentFlags{}
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze content and print its quality score",
		Long: `Analyze content for SEO, accessibility, spelling, broken references and
general quality. The result always carries a score: when the backend cannot
be reached the rule-based checks are used, and when the pipeline fails the
content scores 0.

Examples:
  # Analyze inline content
  edaitorial analyze --title "Release notes for 2.0" --body "<p>Version 2.0 is out.</p>"

  # Analyze a Markdown file and record it in the node's history
  edaitorial analyze -f docs/release.md --node-id 42

  # Analyze every article in a tree as JSON
  edaitorial analyze -g "content/**/*.md" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *Options, flags *contentFlags) error {
	contents, err := flags.contents(cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApplication(cmd, opts, true)
	if err != nil {
		return err
	}
	defer closeApplication(cmd, a)

	if len(flags.fetch) > 0 {
		if contents, err = flags.fetchContents(cmd.Context(), a.Orch, cmd.ErrOrStderr()); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	s := newSpinner(cmd, opts)
	results := make([]*model.AnalysisResult, 0, len(contents))
	for i, c := range contents {
		s.Suffix = fmt.Sprintf(" Analyzing %s (%d/%d)...", displayName(c), i+1, len(contents))
		s.Start()
		res := a.Orch.AnalyzeNode(cmd.Context(), c)
		s.Stop()
		results = append(results, res)

		if opts.Output == report.FormatHuman {
			if len(contents) > 1 {
				printHeader(out, c)
			}
			if err := report.Render(out, res, opts.Output); err != nil {
				return err
			}
		}
	}

	if opts.Output != report.FormatHuman {
		if len(results) == 1 {
			return report.Render(out, results[0], opts.Output)
		}
		return report.Render(out, results, opts.Output)
	}
	return nil
}

// newSpinner returns a spinner on stderr. It stays silent for machine
// output, with --quiet, and when stderr is not a terminal.
func newSpinner(cmd *cobra.Command, opts *Options) *spinner.Spinner {
	s := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(cmd.ErrOrStderr()))
	if opts.Quiet || opts.Output != report.FormatHuman {
		s.Disable()
	}
	return s
}

func printHeader(w io.Writer, c model.Content) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintf(w, "── %s ──\n", displayName(c))
}

func displayName(c model.Content) string {
	switch {
	case c.NodeID != "":
		return c.NodeID
	case c.Title != "":
		return c.Title
	default:
		return "content"
	}
}
