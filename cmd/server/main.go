/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the break-even engine HTTP server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, then flags)
  2. Create the logger
  3. Initialize the store (SQLite or memory)
  4. Connect the hourly cost sinks (Redis, AMQP; both optional)
  5. Create calculator, translations and API handler
  6. Start the cache maintenance scheduler
  7. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides SERVER_PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  See config/config.go. A .env file in the working directory is read first.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (SERVER_SHUTDOWN_TIMEOUT)
  3. Write debounced billable settings
  4. Close sinks and database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/breakeven.db"

  # Run with in-memory database and JSON logs
  LOG_FORMAT=json ./server -db=":memory:"

  # Publish hourly costs to Redis
  REDIS_ADDR=localhost:6379 ./server

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/warp/breakeven-engine/api"
	"github.com/warp/breakeven-engine/billing"
	"github.com/warp/breakeven-engine/broadcast"
	"github.com/warp/breakeven-engine/config"
	"github.com/warp/breakeven-engine/expenses"
	"github.com/warp/breakeven-engine/i18n"
	"github.com/warp/breakeven-engine/logging"
	"github.com/warp/breakeven-engine/store/memory"
	"github.com/warp/breakeven-engine/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Database.Path, "SQLite database path")
	flag.Parse()
	cfg.Server.Port = *port
	cfg.Database.Path = *dbPath
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: os.Stderr})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize store
	store, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	// Hourly cost sinks
	latest := broadcast.NewLatest()
	sinks, reader, closeSinks, err := openSinks(ctx, cfg, logger, latest)
	if err != nil {
		return err
	}
	defer closeSinks()

	catalog, err := i18n.Load(cfg.Locale.Default)
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	validator, err := i18n.NewValidator(cfg.Locale.Default)
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	calc := billing.NewCalculator(cfg.CalcCache.Size, cfg.CalcCache.TTL)

	// Initialize handler
	handler := api.NewHandler(api.Options{
		Store:           store,
		Calc:            calc,
		Catalog:         catalog,
		Validator:       validator,
		Sink:            sinks,
		HourlyCosts:     reader,
		Logger:          logger,
		PersistDelay:    cfg.Persist.Debounce,
		DefaultCurrency: cfg.Locale.Currency,
	})

	scheduler := api.NewMaintenanceScheduler(calc, logger)
	scheduler.Enabled = cfg.CalcCache.SweepInterval > 0
	if scheduler.Enabled {
		scheduler.CheckInterval = cfg.CalcCache.SweepInterval
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	})

	// Create server
	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			"addr", server.Addr,
			"database", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := server.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("server forced to shutdown: %w", err))
		}
		if err := handler.Close(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("flush pending writes: %w", err))
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped with error", logging.FieldError, err)
		return err
	}
	logger.Info("server stopped")
	return nil
}

func openStore(cfg *config.Config, logger *logging.Logger) (expenses.Store, error) {
	log := logger.WithComponent(logging.ComponentStorage)
	if cfg.Database.Driver == "memory" {
		log.Info("using in-memory store")
		return memory.New(), nil
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	log.Info("sqlite store ready", "path", cfg.Database.Path)
	return store, nil
}

// openSinks connects the configured external sinks. The in-process latest
// value is always kept so GET /api/hourly-cost works without Redis.
func openSinks(ctx context.Context, cfg *config.Config, logger *logging.Logger, latest *broadcast.Latest) (broadcast.Sink, broadcast.Reader, func(), error) {
	log := logger.WithComponent(logging.ComponentBroadcast)
	sinks := broadcast.Multi{latest}
	var reader broadcast.Reader = latest
	var closers []func() error

	if cfg.Redis.Addr != "" {
		client, err := broadcast.DialRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, nil, nil, err
		}
		redisSink := broadcast.NewRedisSink(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL)
		sinks = append(sinks, redisSink)
		reader = redisSink
		closers = append(closers, client.Close)
		log.Info("publishing hourly cost to redis", "addr", cfg.Redis.Addr)
	}

	if cfg.AMQP.URL != "" {
		amqpSink, err := broadcast.DialAMQP(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			for _, c := range closers {
				c()
			}
			return nil, nil, nil, err
		}
		sinks = append(sinks, amqpSink)
		closers = append(closers, amqpSink.Close)
		log.Info("publishing hourly cost to amqp", "exchange", cfg.AMQP.Exchange)
	}

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn("close sink failed", logging.FieldError, err)
			}
		}
	}
	return sinks, reader, closeAll, nil
}
