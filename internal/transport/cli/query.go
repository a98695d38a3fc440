package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecrud/internal/plot"
)

func newQueryCommand(r *runner) *cobra.Command {
	var (
		where []string
		topK  int
		opts  plot.Options
		draw  bool
	)
	cmd := &cobra.Command{
		Use:   "query <text>",
		Short: "Find the entries most similar to a text",
		Long: `Embed the text and return the closest entries, best first.
Every --where pair must match the entry's metadata exactly.`,
		Example: `  vecrud query "¿Qué es ChromaDB?" --where categoria="base de datos" --top-k 5 --plot`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parsePairs(where)
			if err != nil {
				return err
			}
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				req, err := s.Records.NewQuery(args[0], filter, topK)
				if err != nil {
					return err
				}
				set, err := s.Records.Query(ctx, req)
				if err != nil {
					return fmt.Errorf("query: %w", err)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, set)
				if draw {
					return plot.Render(out, set, opts)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&where, "where", "w", nil, "Metadata equality filter as key=value (repeatable)")
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Maximum number of results (0 uses the configured default)")
	cmd.Flags().BoolVar(&draw, "plot", false, "Draw a bar chart of the results")
	cmd.Flags().BoolVar(&opts.UseScores, "scores", false, "Size bars by similarity score")
	return cmd
}
