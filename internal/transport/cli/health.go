package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecrud/internal/usecase/health"
)

var errDegraded = errors.New("health check failed")

func newHealthCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the vector store and embedding provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				report := s.Health.Check(ctx)
				fmt.Fprint(cmd.OutOrStdout(), report)
				if report.Status != health.Healthy {
					return errDegraded
				}
				return nil
			})
		},
	}
}
