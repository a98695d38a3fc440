package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/kailas-cloud/vecrud/internal/app"
	"github.com/kailas-cloud/vecrud/internal/config"
	logpkg "github.com/kailas-cloud/vecrud/internal/logger"
	"github.com/kailas-cloud/vecrud/internal/transport/cli"
	"github.com/kailas-cloud/vecrud/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// open loads the config, builds the logger and wires the application.
func open(ctx context.Context, path string) (*cli.Session, error) {
	env := config.GetEnv()

	var (
		cfg config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	logger.Debug("Starting vecrud",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("db_driver", cfg.Database.Driver),
		zap.String("collection", cfg.Collection.Name),
	)

	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open vecrud", zap.Error(err))
		_ = logger.Sync()
		return nil, err
	}

	return &cli.Session{
		Records:    a.Records,
		Health:     a.Health,
		Collection: a.Collection.Name(),
		Created:    a.Created,
		Logger:     logger,
		Close: func() {
			a.Close()
			_ = logger.Sync()
		},
	}, nil
}
