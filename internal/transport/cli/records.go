package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/vecrud/internal/domain/metadata"
)

func newCreateCommand(r *runner) *cobra.Command {
	var meta []string
	cmd := &cobra.Command{
		Use:   "create <id> <text>",
		Short: "Store a new entry",
		Long: `Embed the text and store it under the id with optional metadata.
Fails when the id already exists.

Metadata values true/false become booleans and numeric literals become numbers.`,
		Example: `  vecrud create 1 "ChromaDB es una base de datos vectorial" --meta categoria="base de datos"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := parsePairs(meta)
			if err != nil {
				return err
			}
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				if _, err := s.Records.Create(ctx, args[0], args[1], md); err != nil {
					return fmt.Errorf("create %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s created.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Metadata as key=value (repeatable)")
	return cmd
}

func newReadCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "read <id>",
		Short: "Print an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				lookup, err := s.Records.Read(ctx, args[0])
				if err != nil {
					return fmt.Errorf("read %s: %w", args[0], err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), lookup)
				return nil
			})
		},
	}
}

func newUpdateCommand(r *runner) *cobra.Command {
	var meta []string
	cmd := &cobra.Command{
		Use:   "update <id> <text>",
		Short: "Replace an existing entry",
		Long: `Re-embed the text and replace the entry's document and metadata.
Metadata is replaced, not merged. Fails when the id does not exist.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := parsePairs(meta)
			if err != nil {
				return err
			}
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				if _, err := s.Records.Update(ctx, args[0], args[1], md); err != nil {
					return fmt.Errorf("update %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s updated.\n", args[0])
				return nil
			})
		},
	}
	cmd.Flags().StringArrayVarP(&meta, "meta", "m", nil, "Metadata as key=value (repeatable)")
	return cmd
}

func newDeleteCommand(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an entry",
		Long:  "Remove an entry. Deleting an id that does not exist succeeds.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.withSession(cmd, func(ctx context.Context, s *Session) error {
				if err := s.Records.Delete(ctx, args[0]); err != nil {
					return fmt.Errorf("delete %s: %w", args[0], err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Entry %s deleted.\n", args[0])
				return nil
			})
		},
	}
}

// parsePairs turns key=value flags into metadata. Nil when pairs is empty.
func parsePairs(pairs []string) (metadata.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(metadata.Metadata, len(pairs))
	for _, p := range pairs {
		key, raw, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid metadata %q: expected key=value", p)
		}
		md[key] = metadata.ParseScalar(raw)
	}
	return md, nil
}
