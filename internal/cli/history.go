package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/report"
	"github.com/escuriola/edaitorial/internal/tracker"
)

func NewHistoryCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history NODE_ID",
		Short: "Show the analysis history of a node, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			entries, err := a.Orch.History(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []*tracker.Entry{}
			}
			return report.Render(cmd.OutOrStdout(), entries, opts.Output)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Maximum number of entries (0 for all)")
	return cmd
}

func NewCompareCmd(opts *Options) *cobra.Command {
	var base, head string
	cmd := &cobra.Command{
		Use:   "compare NODE_ID",
		Short: "Compare two analyses of a node",
		Long: `Compare the two most recent analyses of a node, or the history entries
given by --base and --head. Shows score changes and the text that was
added or removed between the two revisions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (base == "") != (head == "") {
				return fmt.Errorf("--base and --head must be given together")
			}

			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			var cmp *tracker.Comparison
			if base == "" {
				cmp, err = a.Orch.Compare(cmd.Context(), args[0])
			} else {
				cmp, err = a.Orch.CompareEntries(cmd.Context(), base, head)
				if err == nil && cmp.NodeID != args[0] {
					err = fmt.Errorf("%w: entries belong to %s", tracker.ErrNodeIDMismatch, cmp.NodeID)
				}
			}
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), cmp, opts.Output)
		},
	}
	cmd.Flags().StringVar(&base, "base", "", "Base history entry ID")
	cmd.Flags().StringVar(&head, "head", "", "Head history entry ID")
	return cmd
}
