package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"github.com/filmorate/backend/internal/config"
	"github.com/filmorate/backend/internal/handlers"
	"github.com/filmorate/backend/internal/httpserver"
	"github.com/filmorate/backend/internal/logging"
	"github.com/filmorate/backend/internal/middleware"
)

// Run bootstraps the filmorate backend application.
func Run(ctx context.Context, args []string) error {
	root := newRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "filmorate",
		Short:         "Film catalog with friendships, likes and a popularity ranking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP API",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:       "migrate [up|status]",
			Short:     "Apply or list schema migrations",
			Args:      cobra.MaximumNArgs(1),
			ValidArgs: []string{"up", "status"},
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				command := "up"
				if len(args) > 0 {
					command = args[0]
				}
				return runMigrations(cmd.Context(), cfg, command, cmd.OutOrStdout())
			},
		},
		&cobra.Command{
			Use:   "seed <name>",
			Short: "Load a named SQL seed file",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				return runSeed(cmd.Context(), cfg, args[0], cmd.OutOrStdout())
			},
		},
		newExportCommand(),
	)
	return root
}

func newExportCommand() *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Publish one snapshot of the popular films ranking",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger := logging.New(cfg.LogLevel, cfg.LogFormat, cmd.ErrOrStderr())

			b, err := openBackend(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer b.close()

			publisher, shutdown, err := buildPublisher(ctx, cfg, buildServices(b, cfg).ranking, logger)
			if err != nil {
				return err
			}
			if publisher == nil {
				return errors.New("no snapshot destination configured: set FILMORATE_S3_BUCKET or FILMORATE_EXPORT_DIR")
			}
			defer func() { _ = shutdown(context.Background()) }()

			location, err := publisher.Publish(ctx, count)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "published %s\n", location)
			return nil
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 0, "number of films in the snapshot (defaults to the configured export size)")
	return cmd
}

func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.close()

	svc := buildServices(b, cfg)
	deps := buildDependencies(b, svc, cfg)

	publisher, shutdownPublisher, err := buildPublisher(ctx, cfg, svc.ranking, logger)
	if err != nil {
		return err
	}
	if publisher != nil && cfg.Export.Interval > 0 {
		logger.Info("scheduling popular film snapshots", "interval", cfg.Export.Interval, "top_n", cfg.Export.TopN)
		go publisher.Schedule(ctx, cfg.Export.Interval)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.Metrics)
	handlers.RegisterRoutes(router, deps)

	srv := httpserver.New(cfg.AppPort, router, cfg.HTTP)

	logger.Info("starting http server", "port", cfg.AppPort, "store", cfg.Store)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down server")
	case err := <-srvErr:
		if err != nil {
			return err
		}
	}

	shutdownErr := srv.Shutdown(context.Background())

	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := shutdownPublisher(drainCtx); err != nil {
		logger.Warn("snapshot publisher shutdown", "error", err)
	}
	return shutdownErr
}
