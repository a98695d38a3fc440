package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecrud/internal/demo"
)

func newDemoCommand(r *runner) *cobra.Command {
	var opts demo.Options
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the create/read/update/query/delete walkthrough",
		Long: `Run the fixed walkthrough: create two entries, read and update the
first, run a filtered query, then delete the first entry and read it back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runDemo(cmd, opts)
		},
	}
	addDemoFlags(cmd, &opts)
	return cmd
}

func addDemoFlags(cmd *cobra.Command, opts *demo.Options) {
	cmd.Flags().BoolVar(&opts.Plot, "plot", false, "Draw a bar chart of the query results")
	cmd.Flags().BoolVar(&opts.UseScores, "scores", false, "Size bars by similarity score")
}

func (r *runner) runDemo(cmd *cobra.Command, opts demo.Options) error {
	return r.withSession(cmd, func(ctx context.Context, s *Session) error {
		if s.Created {
			fmt.Fprintf(cmd.OutOrStdout(), "Collection %s created.\n", s.Collection)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Using existing collection %s.\n", s.Collection)
		}
		return demo.New(s.Records, cmd.OutOrStdout(), opts).Run(ctx)
	})
}
