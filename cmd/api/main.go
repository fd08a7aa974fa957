package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"ariesctl/docs"
	"ariesctl/internal/admin"
	"ariesctl/internal/config"
	"ariesctl/internal/connections"
	"ariesctl/internal/database"
	"ariesctl/internal/database/migration"
	handlers "ariesctl/internal/http/handler"
	"ariesctl/internal/http/middleware"
	"ariesctl/internal/logger"
	"ariesctl/internal/otel"
	"ariesctl/internal/protocol"
	"ariesctl/internal/repository/postgres"
	"ariesctl/internal/service"
	"ariesctl/internal/storage"
)

// @title ariesctl API
// @version 1.0
// @description Drives protocol tests against an agent admin API and keeps their history.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.Must(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing_shutdown_failed", zap.Error(err))
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	// one session for every admin call; owned here, borrowed by the client
	httpClient := &http.Client{
		Timeout:   cfg.Admin.Timeout(),
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	adminMetrics, err := admin.NewMetrics(reg)
	if err != nil {
		log.Fatal("failed to register admin metrics", zap.Error(err))
	}
	adminClient := admin.NewClient(cfg.Admin.URL, httpClient,
		admin.WithAPIKey(cfg.Admin.APIKey),
		admin.WithMetrics(adminMetrics),
	)

	conns := connections.NewController(adminClient)
	tester := protocol.NewController(adminClient, conns, protocol.Config{EnforceActive: cfg.Admin.EnforceActive}, log)

	runRepo := postgres.NewTestRunPostgres(db)
	runSvc := service.NewTestRunService(tester, objStore, runRepo, log)

	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal("failed to register http metrics", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	handlers.RegisterRoutes(app, db, runSvc, conns, reg)

	app.Get("/swagger/*", handlers.Swagger(docs.SwaggerInfo, cfg.AppHost, nil))

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Warn("server_shutdown_failed", zap.Error(err))
		}
	}()

	log.Info("server_starting",
		zap.String("addr", ":"+cfg.Port),
		zap.String("admin_url", adminClient.BaseURL()),
		zap.Bool("enforce_active", cfg.Admin.EnforceActive),
	)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("failed to start server", zap.Error(err))
	}
}
