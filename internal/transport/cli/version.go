package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecrud/internal/version"
)

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "vecrud version %s\n", version.String())
		},
	}
}
