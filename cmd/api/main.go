package main

import (
	"context"
	"database/sql"
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cybershang/b2bed/docs"
	"github.com/cybershang/b2bed/internal/b2"
	"github.com/cybershang/b2bed/internal/config"
	"github.com/cybershang/b2bed/internal/database"
	"github.com/cybershang/b2bed/internal/database/migration"
	"github.com/cybershang/b2bed/internal/events"
	handlers "github.com/cybershang/b2bed/internal/http/handler"
	"github.com/cybershang/b2bed/internal/http/middleware"
	"github.com/cybershang/b2bed/internal/logging"
	"github.com/cybershang/b2bed/internal/notify"
	"github.com/cybershang/b2bed/internal/otel"
	"github.com/cybershang/b2bed/internal/repository"
	"github.com/cybershang/b2bed/internal/repository/postgres"
	"github.com/cybershang/b2bed/internal/service"
)

// @title B2 Image Bed API
// @version 1.0
// @BasePath /
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	log := logging.Setup(cfg.Environment)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	defer shutdownTracing(context.Background())

	// Upload history is optional: without a database the service still
	// uploads and deletes, it just keeps no records.
	var db *sql.DB
	var repo repository.UploadRepository
	if cfg.HistoryEnabled() {
		db, err = database.NewPostgres(cfg.Database)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log); err != nil {
			log.Fatal().Err(err).Msg("failed to run migrations")
		}
		repo = postgres.NewUploadPostgres(db)
	} else {
		log.Info().Msg("upload history disabled: no database configured")
	}

	client := b2.NewClient(b2.NewHTTPTransport(), log)
	notifier := notify.NewLogNotifier(log)

	svc, err := service.NewUploaderService(client, repo, cfg.B2, notifier, log)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid storage configuration")
	}

	bus := events.NewBus()
	service.NewRemoveSync(bus, svc, log).Start(ctx)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
	})

	// Register global middleware
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(otelfiber.Middleware())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register http metrics")
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, db, svc, bus)

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	addr := ":" + cfg.Port
	log.Info().Str("addr", addr).Msg("starting server")

	if err := app.Listen(addr); err != nil {
		log.Fatal().Err(err).Msg("failed to start server")
	}
}
