package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockroomhq/warehouse-ops/config"
	"github.com/stockroomhq/warehouse-ops/internal/adapters/redistransport"
	"github.com/stockroomhq/warehouse-ops/internal/adapters/scheduler"
	"github.com/stockroomhq/warehouse-ops/internal/adapters/tokens"
	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/observability/statsd"
	"github.com/stockroomhq/warehouse-ops/internal/service"
)

// shutdownWaitTimeout bounds how long Stop waits for in-flight job runs.
const shutdownWaitTimeout = 30 * time.Second

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Scheduler     *scheduler.Scheduler
	Notifications *service.NotificationService
	Events        *service.EventRouter
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink   *statsd.Client
	MetricsConfig config.ObservabilityMetricsConfig
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports.
type serviceRepositories struct {
	Notifications *data.NotificationRepo
	Products      *data.ProductRepo
	Orders        *data.OrderRepo
	Archive       *data.ArchiveRepo
	Users         *data.UserRepo
	SystemLogs    *data.SystemLogRepo
	Activity      *data.ActivityRepo
}

// buildRepositories builds repositories backing service ports; no business rules here.
func buildRepositories(db *sql.DB) *serviceRepositories {
	return &serviceRepositories{
		Notifications: data.NewNotificationRepo(db),
		Products:      data.NewProductRepo(db),
		Orders:        data.NewOrderRepo(db),
		Archive:       data.NewArchiveRepo(db),
		Users:         data.NewUserRepo(db),
		SystemLogs:    data.NewSystemLogRepo(db),
		Activity:      data.NewActivityRepo(db),
	}
}

// buildObservability configures the metrics sink.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obsLogger := logger
	if obsLogger == nil {
		obsLogger = slog.Default()
	}

	var metricsSink *statsd.Client
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  obsLogger,
		})
		if err != nil {
			obsLogger.Error("failed to initialise statsd client", "error", err)
		} else {
			metricsSink = client
		}
	}

	return ObservabilityContainer{
		MetricsSink:   metricsSink,
		MetricsConfig: cfg.Metrics,
	}
}

// newEventRouter wires the live-event router onto the Redis transport.
// Without a Redis client every publish degrades to a logged no-op.
func newEventRouter(
	redisClient redis.UniversalClient,
	cfg config.RedisConfig,
	logger *slog.Logger,
	obs ObservabilityContainer,
) (*service.EventRouter, error) {
	var transport core.Transport
	if redisClient != nil {
		t, err := redistransport.NewWithPrefix(redisClient, cfg.ChannelPrefix)
		if err != nil {
			return nil, fmt.Errorf("build redis transport: %w", err)
		}
		transport = t
	}

	opts := service.EventRouterOptions{
		Transport: transport,
		Logger:    logger,
	}
	if obs.MetricsSink != nil {
		opts.Metrics = obs.MetricsSink
	}
	return service.NewEventRouter(opts), nil
}

// newJobUnits constructs the executable job units and prunes definitions
// whose dependencies are unavailable. The token cleanup job needs a
// reachable OIDC issuer; without one it is dropped with a warning instead
// of failing startup.
func newJobUnits(
	ctx context.Context,
	deps *ServiceDeps,
	repos *serviceRepositories,
	notifications *service.NotificationService,
	events *service.EventRouter,
) ([]core.JobUnit, []jobs.Definition, error) {
	cfg := deps.Config

	lowStock, err := service.NewLowStockJob(service.LowStockJobOptions{
		Products:      repos.Products,
		Users:         repos.Users,
		Notifications: notifications,
		Publisher:     events,
		Logger:        deps.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build low stock job: %w", err)
	}

	orderArchive, err := service.NewOrderArchiveJob(service.OrderArchiveJobOptions{
		Orders:        repos.Orders,
		Archive:       repos.Archive,
		RetentionDays: cfg.Jobs.RetentionDays,
		BatchSize:     cfg.Jobs.BatchSize,
		Logger:        deps.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build order archive job: %w", err)
	}

	dailySummary, err := service.NewDailySummaryJob(service.DailySummaryJobOptions{
		Orders:    repos.Orders,
		Activity:  repos.Activity,
		Products:  repos.Products,
		Users:     repos.Users,
		SystemLog: repos.SystemLogs,
		Publisher: events,
		Logger:    deps.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("build daily summary job: %w", err)
	}

	units := []core.JobUnit{lowStock, orderArchive, dailySummary}
	definitions := cfg.Jobs.Definitions()

	if cfg.Auth.VerifierConfigured() {
		verifier, verr := tokens.NewVerifier(ctx, tokens.VerifierConfig{
			IssuerURL: cfg.Auth.OIDCIssuerURL,
			ClientID:  cfg.Auth.OIDCClientID,
		})
		if verr != nil {
			return nil, nil, fmt.Errorf("build token verifier: %w", verr)
		}
		tokenCleanup, terr := service.NewTokenCleanupJob(service.TokenCleanupJobOptions{
			Users:     repos.Users,
			Verifier:  verifier,
			BatchSize: cfg.Jobs.BatchSize,
			Logger:    deps.Logger,
		})
		if terr != nil {
			return nil, nil, fmt.Errorf("build token cleanup job: %w", terr)
		}
		units = append(units, tokenCleanup)
	} else {
		deps.Logger.Warn("token cleanup disabled: no OIDC issuer configured")
		definitions = withoutDefinition(definitions, jobs.NameTokenCleanup)
	}

	return units, definitions, nil
}

func withoutDefinition(defs []jobs.Definition, name jobs.Name) []jobs.Definition {
	result := make([]jobs.Definition, 0, len(defs))
	for _, def := range defs {
		if def.Name != name {
			result = append(result, def)
		}
	}
	return result
}

// NewServices wires repositories, the event router, and the scheduler.
func NewServices(ctx context.Context, deps *ServiceDeps) (*ServiceContainer, error) {
	if deps == nil || deps.Config == nil || deps.DB == nil {
		return nil, errors.New("service dependencies are incomplete")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
		deps.Logger = logger
	}

	repos := buildRepositories(deps.DB)
	observability := buildObservability(logger, deps.Config.Observability)

	events, err := newEventRouter(deps.RedisClient, deps.Config.Redis, logger, observability)
	if err != nil {
		return nil, err
	}

	notifications, err := service.NewNotificationService(service.NotificationServiceOptions{
		Repo:      repos.Notifications,
		Users:     repos.Users,
		Publisher: events,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build notification service: %w", err)
	}

	units, definitions, err := newJobUnits(ctx, deps, repos, notifications, events)
	if err != nil {
		return nil, err
	}

	schedOpts := scheduler.Options{
		Definitions: definitions,
		Units:       units,
		MaxRunTime:  deps.Config.Jobs.MaxExecutionTime,
		Logger:      logger,
	}
	if observability.MetricsSink != nil {
		schedOpts.Metrics = observability.MetricsSink
	}
	sched, err := scheduler.New(schedOpts)
	if err != nil {
		return nil, fmt.Errorf("build scheduler: %w", err)
	}

	return &ServiceContainer{
		Scheduler:     sched,
		Notifications: notifications,
		Events:        events,
		Observability: observability,
	}, nil
}

// RunWithShutdown starts the scheduler and blocks until SIGINT or SIGTERM,
// then stops it, waiting out in-flight job runs up to the shutdown budget.
func RunWithShutdown(ctx context.Context, services *ServiceContainer, logger *slog.Logger) error {
	if services == nil || services.Scheduler == nil {
		return errors.New("service container is incomplete")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if err := services.Scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("shutting down", "reason", "context cancelled")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), shutdownWaitTimeout)
	defer cancel()
	services.Scheduler.Stop(stopCtx)

	if sink := services.Observability.MetricsSink; sink != nil {
		if err := sink.Close(); err != nil {
			logger.Warn("close metrics sink failed", "error", err)
		}
	}
	return nil
}
