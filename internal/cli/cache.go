package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/report"
)

func NewCacheCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the analysis result cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "purge",
		Short: "Drop expired cache entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			n, err := a.Orch.PurgeCache(cmd.Context())
			if err != nil {
				return err
			}
			if opts.Output == report.FormatHuman {
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Purged %d expired entries", n))
				return nil
			}
			return report.Render(cmd.OutOrStdout(), map[string]int{"purged": n}, opts.Output)
		},
	})
	return cmd
}
