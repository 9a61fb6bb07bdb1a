package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/gate"
	"github.com/escuriola/edaitorial/internal/report"
)

// ExitBlocked is the exit code of gate when any content is blocked.
const ExitBlocked = 2

var errBlocked = errors.New("publishing blocked")

func NewGateCmd(opts *Options) *cobra.Command {
	flags := &contentFlags{}
	cmd := &cobra.Command{
		Use:   "gate",
		Short: "Decide whether content is ready to publish",
		Long: `Analyze content and compare its score with min_score. Exits with status 2
when any content item is blocked, so the command can guard a publishing
pipeline.

Examples:
  edaitorial gate -f docs/release.md
  edaitorial gate -g "content/**/*.md" -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGate(cmd, opts, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runGate(cmd *cobra.Command, opts *Options, flags *contentFlags) error {
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
	decisions := make([]*gate.Decision, 0, len(contents))
	blocked := 0
	for i, c := range contents {
		s.Suffix = fmt.Sprintf(" Checking %s (%d/%d)...", displayName(c), i+1, len(contents))
		s.Start()
		d := a.Orch.CheckPublish(cmd.Context(), c)
		s.Stop()
		decisions = append(decisions, d)
		if !d.Allowed {
			blocked++
		}

		if opts.Output == report.FormatHuman {
			if len(contents) > 1 {
				printHeader(out, c)
			}
			if err := report.Render(out, d, opts.Output); err != nil {
				return err
			}
		}
	}

	if opts.Output != report.FormatHuman {
		var err error
		if len(decisions) == 1 {
			err = report.Render(out, decisions[0], opts.Output)
		} else {
			err = report.Render(out, decisions, opts.Output)
		}
		if err != nil {
			return err
		}
	}

	if blocked > 0 {
		if opts.Output == report.FormatHuman && len(contents) > 1 {
			printError(cmd.ErrOrStderr(), fmt.Sprintf("%d of %d items blocked", blocked, len(contents)))
		}
		return &ExitError{Code: ExitBlocked, Err: errBlocked}
	}
	return nil
}
