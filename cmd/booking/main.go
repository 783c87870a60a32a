package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/example/booking-portal/internal/application"
	"github.com/example/booking-portal/internal/config"
	"github.com/example/booking-portal/internal/events"
	httptransport "github.com/example/booking-portal/internal/http"
	"github.com/example/booking-portal/internal/jobs"
	"github.com/example/booking-portal/internal/logging"
	"github.com/example/booking-portal/internal/metrics"
	"github.com/example/booking-portal/internal/persistence"
	"github.com/example/booking-portal/internal/persistence/appstore"
	"github.com/example/booking-portal/internal/persistence/bolt"
	"github.com/example/booking-portal/internal/persistence/memory"
	"github.com/example/booking-portal/internal/persistence/sqlite"
	"github.com/example/booking-portal/internal/persistence/sqlite/migration"
	"github.com/example/booking-portal/internal/scheduler"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("booking service stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("booking API listening", "addr", server.Addr, "store", cfg.StoreDriver, "slot_policy", a.policy.String())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	})
	if a.scheduler.Enabled() {
		g.Go(func() error {
			a.scheduler.Run(gctx)
			return nil
		})
	}

	return g.Wait()
}

// app holds the wired service graph.
type app struct {
	handler   http.Handler
	scheduler *jobs.Scheduler
	policy    application.SlotPolicy
	limiter   *httptransport.RateLimiter
	bus       *events.Bus
	kv        persistence.KeyValueStore
}

func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	kv, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	entities := persistence.NewEntityStore(kv, persistence.NewSeeder(cfg.Location), time.Now)
	if err := entities.Seed(ctx); err != nil {
		kv.Close()
		return nil, fmt.Errorf("seed store: %w", err)
	}
	store := appstore.New(entities)

	tokens, err := application.NewTokenIssuer([]byte(cfg.SessionSecret), cfg.SessionTTL, time.Now)
	if err != nil {
		kv.Close()
		return nil, err
	}

	bus := events.New()
	policy := application.SlotPolicyObserved
	if cfg.PersistSlotState {
		policy = application.SlotPolicyPersist
	}

	// every writer of the professionals collection shares this lock
	writeLock := &sync.Mutex{}

	authService := application.NewAuthServiceWithLogger(store, tokens, bus, time.Now,
		application.Latency{Delay: cfg.AuthLatency, Timeout: cfg.OperationTimeout}, logger)
	bookingService := application.NewBookingServiceWithLogger(store, bus, time.Now, application.BookingOptions{
		Latency:    application.Latency{Delay: cfg.BookingLatency, Timeout: cfg.OperationTimeout},
		SlotPolicy: policy,
		WriteLock:  writeLock,
	}, logger)
	professionalService := application.NewProfessionalServiceWithLock(store, writeLock, logger)
	dashboardService := application.NewDashboardServiceWithLogger(store, cfg.DemoUserID, logger)
	reconcileService := application.NewReconcileServiceWithLogger(store, time.Now, cfg.ReconcileCacheTTL, logger)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	if err := subscribe(bus, collector, reconcileService, logger); err != nil {
		kv.Close()
		return nil, err
	}

	sched, err := jobs.NewScheduler(reconcileService, func(report application.ReconciliationReport) {
		collector.SetReconcileIssues(report.Counts(), conflictKinds)
	}, jobs.Options{
		Schedule: cfg.ReconcileSchedule,
		Location: cfg.Location,
		Timeout:  cfg.OperationTimeout,
		Logger:   logger,
	})
	if err != nil {
		kv.Close()
		return nil, err
	}

	limiter := httptransport.NewRateLimiter(httptransport.RateLimiterConfig{
		Rate:  rate.Limit(cfg.AuthRatePerSecond),
		Burst: cfg.AuthRateBurst,
	}, logger)

	handler := httptransport.NewRouter(httptransport.RouterConfig{
		Auth:          httptransport.NewAuthHandler(authService, logger),
		Professionals: httptransport.NewProfessionalHandler(professionalService, bookingService, logger),
		Dashboards:    httptransport.NewDashboardHandler(dashboardService, logger),
		Admin:         httptransport.NewAdminHandler(professionalService, reconcileService, logger),
		Sessions:      authService,
		AuthLimiter:   limiter,
		Metrics:       metrics.Handler(registry),
		Health:        healthCheck(kv),
		Logger:        logger,
		Middleware:    []func(http.Handler) http.Handler{httptransport.RequestLogger(logger, collector)},
	})

	return &app{
		handler:   handler,
		scheduler: sched,
		policy:    policy,
		limiter:   limiter,
		bus:       bus,
		kv:        kv,
	}, nil
}

// Close stops background work and releases the store.
func (a *app) Close() error {
	if a == nil {
		return nil
	}
	a.limiter.Stop()
	a.bus.Wait()
	return a.kv.Close()
}

var conflictKinds = []string{
	string(scheduler.ConflictOrphanBookedSlot),
	string(scheduler.ConflictUnmarkedBooking),
	string(scheduler.ConflictDoubleBooked),
	string(scheduler.ConflictUnknownSlot),
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (persistence.KeyValueStore, error) {
	switch cfg.StoreDriver {
	case config.StoreMemory:
		return memory.Open(), nil
	case config.StoreBolt:
		store, err := bolt.Open(cfg.BoltPath)
		if err != nil {
			return nil, fmt.Errorf("open bolt store: %w", err)
		}
		return store, nil
	case config.StoreSQLite, "":
		store, err := sqlite.OpenWithConfig(migration.DefaultSQLiteConfig(cfg.SQLiteDSN), logger)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		if err := store.Migrate(ctx); err != nil {
			store.Close()
			return nil, fmt.Errorf("migrate sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func subscribe(bus *events.Bus, collector *metrics.Collector, reconcile *application.ReconcileService, logger *slog.Logger) error {
	if err := bus.OnAppointmentBooked(func(ctx context.Context, result application.BookingResult) {
		collector.RecordBooking(result.SlotPersisted)
		reconcile.Invalidate()
	}); err != nil {
		return err
	}
	if err := bus.OnAppointmentBookedAsync(func(ctx context.Context, result application.BookingResult) {
		logger.InfoContext(ctx, "appointment booked",
			"appointment_id", result.Appointment.ID,
			"professional_id", result.Appointment.ProfessionalID,
			"slot_persisted", result.SlotPersisted,
		)
	}); err != nil {
		return err
	}
	if err := bus.OnBookingFailed(func(ctx context.Context, kind string) {
		collector.RecordBookingFailure(kind)
	}); err != nil {
		return err
	}
	return bus.OnUserSignedIn(func(ctx context.Context, user application.User) {
		collector.RecordSignIn(string(user.Role))
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthCheck(kv persistence.KeyValueStore) func(ctx context.Context) error {
	if p, ok := kv.(pinger); ok {
		return p.Ping
	}
	return func(ctx context.Context) error {
		_, _, err := kv.Get(ctx, persistence.KeyProfessionals)
		return err
	}
}
