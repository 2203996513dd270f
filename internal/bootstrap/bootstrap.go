package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/consent-tracker/internal/config"
	"github.com/kirillkom/consent-tracker/internal/core/usecase"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/analysisapi"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/contract"
	"github.com/kirillkom/consent-tracker/internal/infrastructure/resilience"
	"github.com/kirillkom/consent-tracker/internal/observability/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

const ServiceName = "tracker"

type App struct {
	Config config.Config
	Logger *slog.Logger

	Registry    *prometheus.Registry
	Metrics     *metrics.WorkflowMetrics
	HTTPMetrics *metrics.HTTPServerMetrics

	Gateway  *analysisapi.Client
	Workflow *usecase.WorkflowController
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var validator *contract.Validator
	if cfg.StrictContract {
		v, err := contract.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("init contract validator: %w", err)
		}
		validator = v
	}

	registry := prometheus.NewRegistry()
	workflowMetrics := metrics.NewWorkflowMetricsWithRegistry(ServiceName, registry)
	httpMetrics := metrics.NewHTTPServerMetricsWithRegistry(ServiceName, registry)

	executor := resilience.NewExecutor(resilience.Config{
		BreakerEnabled:      cfg.BreakerEnabled,
		BreakerMinRequests:  uint32(max(cfg.BreakerMinRequests, 0)),
		BreakerFailureRatio: cfg.BreakerFailureRatio,
		BreakerOpenTimeout:  cfg.BreakerOpenTimeout(),
	}, logger)

	gateway := analysisapi.New(cfg.AnalysisBaseURL(), analysisapi.Options{
		Timeout:   cfg.AnalysisTimeout(),
		Executor:  executor,
		Validator: validator,
		Observer:  workflowMetrics,
		Logger:    logger,
	})
	workflow := usecase.NewWorkflowController(gateway, workflowMetrics, logger)

	logger.Debug("bootstrap_complete",
		"analysis_url", gateway.BaseURL(),
		"contract", validator.Title(),
		"breaker_enabled", cfg.BreakerEnabled,
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Registry:    registry,
		Metrics:     workflowMetrics,
		HTTPMetrics: httpMetrics,
		Gateway:     gateway,
		Workflow:    workflow,
	}, nil
}

// WarmUp loads service-wide stats once at startup. It does not block and
// failures leave the stats absent.
func (a *App) WarmUp(ctx context.Context) {
	a.Workflow.RefreshGlobalStatsInBackground(ctx)
}

// Close waits for background stats refreshes to finish.
func (a *App) Close() {
	if a.Workflow != nil {
		a.Workflow.Wait()
	}
}
