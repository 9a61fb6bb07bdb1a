package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/escuriola/edaitorial/internal/model"
	"github.com/escuriola/edaitorial/internal/report"
)

func NewNodesCmd(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodes",
		Short: "Manage the content nodes used for broken-reference detection",
	}
	cmd.AddCommand(newNodesListCmd(opts), newNodesAddCmd(opts), newNodesDeleteCmd(opts), newNodesCrawlCmd(opts))
	return cmd
}

func newNodesListCmd(opts *Options) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List nodes, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			nodes, err := a.Orch.ListNodes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if nodes == nil {
				nodes = []model.Node{}
			}
			return report.Render(cmd.OutOrStdout(), nodes, opts.Output)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of nodes (0 for all)")
	return cmd
}

func newNodesAddCmd(opts *Options) *cobra.Command {
	var n model.Node
	cmd := &cobra.Command{
		Use:     "add",
		Short:   "Register or update a node",
		Example: `  edaitorial nodes add --id 7 --title "Upgrade guide" --url https://example.com/node/7`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			saved, err := a.Orch.AddNode(cmd.Context(), n)
			if err != nil {
				return err
			}
			if opts.Output == report.FormatHuman && !opts.Quiet {
				printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Saved node %s", saved.ID))
			}
			return report.Render(cmd.OutOrStdout(), saved, opts.Output)
		},
	}
	cmd.Flags().StringVar(&n.ID, "id", "", "Node ID (generated when empty)")
	cmd.Flags().StringVar(&n.Title, "title", "", "Node title")
	cmd.Flags().StringVar(&n.URL, "url", "", "Node URL")
	cmd.Flags().StringVar(&n.ContentType, "type", "", "Content type")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newNodesDeleteCmd(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Remove a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			if err := a.Orch.DeleteNode(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !opts.Quiet {
				printSuccess(cmd.OutOrStdout(), fmt.Sprintf("Deleted node %s", args[0]))
			}
			return nil
		},
	}
}

func newNodesCrawlCmd(opts *Options) *cobra.Command {
	var depth int
	cmd := &cobra.Command{
		Use:     "crawl URL",
		Short:   "Register every page reachable from URL on the same host",
		Example: `  edaitorial nodes crawl https://example.com --depth 1`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApplication(cmd, opts, true)
			if err != nil {
				return err
			}
			defer closeApplication(cmd, a)

			s := newSpinner(cmd, opts)
			s.Suffix = fmt.Sprintf(" Crawling %s...", args[0])
			s.Start()
			nodes, err := a.Orch.CrawlNodes(cmd.Context(), args[0], depth)
			s.Stop()
			if err != nil {
				if len(nodes) == 0 {
					return err
				}
				printError(cmd.ErrOrStderr(), err.Error())
			}
			if nodes == nil {
				nodes = []model.Node{}
			}
			if opts.Output == report.FormatHuman && !opts.Quiet {
				printSuccess(cmd.ErrOrStderr(), fmt.Sprintf("Registered %d nodes", len(nodes)))
			}
			return report.Render(cmd.OutOrStdout(), nodes, opts.Output)
		},
	}
	cmd.Flags().IntVarP(&depth, "depth", "d", -1, "Link depth to follow (-1 uses crawl.max_depth)")
	return cmd
}
