// Package cli is the command-line transport: one cobra command per record
// operation, plus the demo walkthrough, health and version.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/demo"
	"github.com/kailas-cloud/vecrud/internal/logger"
	"github.com/kailas-cloud/vecrud/internal/metrics"
	"github.com/kailas-cloud/vecrud/internal/usecase/health"
)

// HealthChecker reports store and embedding provider availability.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Session is a wired backend for the duration of one command.
type Session struct {
	Records    demo.Records
	Health     HealthChecker
	Collection string
	// Created reports whether opening the session created the collection.
	Created bool
	// Logger is attached to the context of every operation when set.
	Logger *zap.Logger
	Close  func()
}

// Opener builds a Session from the config file at path.
// An empty path selects the config by ENV.
type Opener func(ctx context.Context, path string) (*Session, error)

// runner carries the flags shared by every command.
type runner struct {
	open        Opener
	configPath  string
	metricsFile string
}

// withSession opens a session, runs fn and closes the session. Metrics are
// written after fn, whether it failed or not, when --metrics-file is set.
func (r *runner) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *Session) error) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := r.open(ctx, r.configPath)
	if err != nil {
		return err
	}
	if s.Close != nil {
		defer s.Close()
	}
	if s.Logger != nil {
		ctx = logger.WithFields(logger.ContextWithLogger(ctx, s.Logger), zap.String("command", cmd.Name()))
	}
	if r.metricsFile != "" {
		defer func() {
			err = errors.Join(err, metrics.WriteTextfile(r.metricsFile))
		}()
	}
	return fn(ctx, s)
}

// NewRootCommand builds the vecrud command tree.
// Running the root command without a subcommand runs the demo.
func NewRootCommand(open Opener) *cobra.Command {
	r := &runner{open: open}
	var opts demo.Options

	root := &cobra.Command{
		Use:   "vecrud",
		Short: "CRUD and similarity queries over a vector database",
		Long: `vecrud stores text records with their embeddings and metadata in a
vector database and answers filtered similarity queries.

Without a subcommand it runs the demo walkthrough.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return r.runDemo(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&r.configPath, "config", "c", "",
		"Path to a YAML config file (default: config/<ENV>.yaml)")
	root.PersistentFlags().StringVar(&r.metricsFile, "metrics-file", "",
		"Write Prometheus metrics to this file after the command (textfile collector format)")
	addDemoFlags(root, &opts)

	root.AddCommand(
		newDemoCommand(r),
		newCreateCommand(r),
		newReadCommand(r),
		newUpdateCommand(r),
		newDeleteCommand(r),
		newQueryCommand(r),
		newHealthCommand(r),
		newVersionCommand(),
	)
	return root
}
