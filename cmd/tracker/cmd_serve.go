package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	httpadapter "github.com/kirillkom/consent-tracker/internal/adapters/http"
	"github.com/kirillkom/consent-tracker/internal/bootstrap"
	"github.com/kirillkom/consent-tracker/internal/config"
	"github.com/kirillkom/consent-tracker/internal/observability/logging"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the analysis workflow over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides API_PORT)")
	return cmd
}

func runServe(parent context.Context, port string) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.APIPort = port
	}

	logger := logging.New(bootstrap.ServiceName, cfg.LogLevel, cfg.LogFormat)
	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer app.Close()
	app.WarmUp(ctx)

	handler := httpadapter.NewRouter(cfg, app.Workflow, logger).
		WithMetrics(app.HTTPMetrics, app.HTTPMetrics.Handler()).
		Handler()
	srv := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ServerWriteTimeout(),
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("api_server_starting", "addr", srv.Addr, "analysis_url", app.Gateway.BaseURL())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("api_server_stopping")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("api_server_failed", "error", err)
		return err
	}
	return nil
}
