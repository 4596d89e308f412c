package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/sbilibin2017/lamp-demo/internal/config"
	"github.com/sbilibin2017/lamp-demo/internal/db"
	"github.com/sbilibin2017/lamp-demo/internal/handlers"
	"github.com/sbilibin2017/lamp-demo/internal/logger"
	"github.com/sbilibin2017/lamp-demo/internal/middlewares"
	"github.com/sbilibin2017/lamp-demo/internal/repositories"
	"github.com/sbilibin2017/lamp-demo/internal/services"
	"github.com/sbilibin2017/lamp-demo/internal/views"
)

// Build info variables, set via ldflags at build time.
var (
	buildVersion = "N/A" // Version of the service
	buildDate    = "N/A" // Build date
	buildCommit  = "N/A" // Git commit hash
)

func main() {
	printBuildInfo()
	configPath := parseFlags()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}

	if err := run(context.Background(), cfg); err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}

// printBuildInfo prints the build version, commit hash, and build date.
func printBuildInfo() {
	fmt.Printf("Starting service Version: %s, Commit: %s, Build: %s\n", buildVersion, buildCommit, buildDate)
}

// parseFlags parses command-line flags and returns the config file path.
func parseFlags() string {
	c := flag.String("c", "config.env", "Path to configuration file")
	flag.Parse()
	return *c
}

// run initializes the logger, database and optional Redis limiter, then
// serves HTTP until ctx is cancelled or a termination signal arrives.
func run(ctx context.Context, cfg *config.Config) error {
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Log.Sync()
	logger.Log.Infof("Logger initialized with level %s", cfg.LogLevel)

	dbCfg := cfg.Database()
	logger.Log.Infow("Opening PostgreSQL pool", "dsn", dbCfg.Redacted())

	pool, err := db.Open(dbCfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Ping(ctx, pool, 5*time.Second); err != nil {
		// Requests fail individually with "Connection failed" until the database is back.
		logger.Log.Warnw("PostgreSQL is not reachable yet", "error", err)
	}

	checks := map[string]handlers.HealthCheck{
		"postgres": pool.PingContext,
	}

	var limiter handlers.MutationLimiter
	if cfg.RateLimitEnabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Log.Warnw("Redis is not reachable yet, mutations will not be throttled", "error", err)
		}
		limiter = repositories.NewMutationLimitRepository(rdb, cfg.RateLimitMutations, cfg.RateLimitWindow)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	router, err := newRouter(cfg, pool, limiter, checks)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	errChan := make(chan error, 1)
	ctxShutdown, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	go func() {
		logger.Log.Infof("HTTP server listening on %s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	select {
	case <-ctxShutdown.Done():
		logger.Log.Info("Shutdown signal received, stopping HTTP server...")
	case serveErr := <-errChan:
		return serveErr
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorw("HTTP server shutdown error", "error", err)
	}

	logger.Log.Info("HTTP server stopped gracefully")
	return nil
}

// newRouter wires repositories, the service and handlers into a chi router.
// limiter may be nil.
func newRouter(
	cfg *config.Config,
	pool *sqlx.DB,
	limiter handlers.MutationLimiter,
	checks map[string]handlers.HealthCheck,
) (http.Handler, error) {
	renderer, err := views.New()
	if err != nil {
		return nil, err
	}

	// Initialize repositories
	userReadRepo := repositories.NewUserReadRepository(pool, middlewares.GetConnFromContext)
	userWriteRepo := repositories.NewUserWriteRepository(pool, middlewares.GetConnFromContext)
	serverInfoRepo := repositories.NewServerInfoRepository(pool, middlewares.GetConnFromContext)

	// Initialize services
	userService := services.NewUserService(userReadRepo, userWriteRepo)

	// Initialize handlers
	usersPage := handlers.NewUsersPageHandler(userService, serverInfoRepo, limiter, renderer, cfg.ServerName)

	protect := csrf.Protect(
		[]byte(cfg.CSRFAuthKey),
		csrf.Secure(cfg.CSRFSecure),
		csrf.FieldName("csrf_token"),
		csrf.Path("/"),
	)

	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middlewares.LoggingMiddleware(logger.Log))

	r.Get("/healthz", handlers.NewHealthzHandler())
	r.Get("/readyz", handlers.NewReadyzHandler(checks))
	r.Get("/styles.css", views.StaticHandler().ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(protect)
		r.Use(middlewares.ConnMiddleware(pool))
		r.Get("/", usersPage)
		r.Post("/", usersPage)
	})

	return r, nil
}
