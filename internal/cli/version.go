package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/assessor"
)

func NewVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "edaitorial version %s (scoring %s)\n", version, assessor.DefaultConfig().ScoringVersion)
		},
	}
}
