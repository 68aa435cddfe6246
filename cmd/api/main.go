package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimtiger/Minibini-sub000/internal/adapters"
	"github.com/alimtiger/Minibini-sub000/internal/catalog"
	"github.com/alimtiger/Minibini-sub000/internal/estimates"
	estdomain "github.com/alimtiger/Minibini-sub000/internal/estimates/domain"
	apphttp "github.com/alimtiger/Minibini-sub000/internal/http"
	"github.com/alimtiger/Minibini-sub000/internal/http/router"
	"github.com/alimtiger/Minibini-sub000/internal/jobs"
	jobsdomain "github.com/alimtiger/Minibini-sub000/internal/jobs/domain"
	"github.com/alimtiger/Minibini-sub000/internal/workorders"
	"github.com/alimtiger/Minibini-sub000/internal/worksheets"
	"github.com/alimtiger/Minibini-sub000/migrations"
	"github.com/alimtiger/Minibini-sub000/platform/config"
	"github.com/alimtiger/Minibini-sub000/platform/db"
	"github.com/alimtiger/Minibini-sub000/platform/events"
	"github.com/alimtiger/Minibini-sub000/platform/logger"
	"github.com/alimtiger/Minibini-sub000/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	jobsModule := jobs.NewModule(pool, eventBus, log, val)
	catalogModule := catalog.NewModule(pool, log, val)

	jobReader := adapters.NewJobsStatusReader(jobsModule.Repository())
	worksheetSeeder := adapters.NewCatalogWorksheetSeeder(catalogModule.Repository())
	worksheetsModule := worksheets.NewModule(pool, jobReader, worksheetSeeder, log, val)

	worksheetSource := adapters.NewWorksheetsAdapter(worksheetsModule.Repository())
	jobCascader := adapters.NewJobsCascadeAdapter(jobsModule.Repository(), log)
	estimatesModule := estimates.NewModule(pool, worksheetSource, catalogModule.Service(), jobCascader, eventBus, cfg, log, val)

	workOrderSeeder := adapters.NewCatalogWorkOrderSeeder(catalogModule.Repository())
	estimateSource := adapters.NewEstimatesAdapter(estimatesModule.Repository())
	workOrdersModule := workorders.NewModule(pool, jobReader, workOrderSeeder, estimateSource, log, val)

	subscribeAuditLog(eventBus, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			jobsModule,
			catalogModule,
			worksheetsModule,
			estimatesModule,
			workOrdersModule,
		},
	}

	engine := router.New(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
		panic("server error: " + err.Error())
	}
	log.Info("server stopped")
}

// subscribeAuditLog records lifecycle milestones so accepted estimates and
// approved jobs leave a trace even with no downstream consumer configured.
func subscribeAuditLog(bus events.Bus, log *logger.Logger) {
	bus.Subscribe(estdomain.EventEstimateGenerated, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(estdomain.EstimateGeneratedEvent); ok {
			log.Info("estimate generated",
				"estimate_id", ev.EstimateID, "job_id", ev.JobID,
				"number", ev.EstimateNumber, "version", ev.Version,
				"lines", ev.LineCount, "total_cents", ev.TotalCents)
		}
		return nil
	}))
	bus.Subscribe(estdomain.EventEstimateAccepted, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(estdomain.EstimateAcceptedEvent); ok {
			log.Info("estimate accepted",
				"estimate_id", ev.EstimateID, "job_id", ev.JobID, "number", ev.EstimateNumber)
		}
		return nil
	}))
	bus.Subscribe(jobsdomain.EventJobApproved, events.HandlerFunc(func(ctx context.Context, e events.Event) error {
		if ev, ok := e.(jobsdomain.JobApprovedEvent); ok {
			log.Info("job approved", "job_id", ev.JobID, "job_number", ev.JobNumber)
		}
		return nil
	}))
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
