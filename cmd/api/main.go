package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"alfredoptarigan/cv-master-ats/internal/config"
	"alfredoptarigan/cv-master-ats/internal/handlers"
	"alfredoptarigan/cv-master-ats/internal/logger"
	"alfredoptarigan/cv-master-ats/internal/models"
	"alfredoptarigan/cv-master-ats/internal/repositories"
	"alfredoptarigan/cv-master-ats/internal/secrets"
	"alfredoptarigan/cv-master-ats/internal/services"
)

// bodyLimit leaves room for multipart framing and base64 overhead around
// the document size cap.
const bodyLimit = models.MaxDocumentSize*4/3 + 64*1024

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.Log.JSON, cfg.Log.Debug)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	zl.Info("config loaded", zap.String("env", cfg.Server.Env))

	// The archive is optional. Sessions work without a database.
	var reportRepo repositories.ReportRepository
	var archiver services.ReportArchiver
	if cfg.Database.Enabled {
		db, err := config.InitDatabase(cfg, zl)
		if err != nil {
			zl.Fatal("failed to initialize database", zap.Error(err))
		}
		reportRepo = repositories.NewReportRepository(db)
		archiver = reportRepo
	} else {
		zl.Info("report archive disabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	gateway := newGateway(ctx, cfg, zl)

	pdfParser := services.NewPDFParserService()
	intake := services.NewIntakeService(pdfParser, zl)

	worker := services.NewWorker(services.WorkerOptions{
		Concurrency:   cfg.Worker.Concurrency,
		QueueSize:     cfg.Worker.QueueSize,
		SweepInterval: cfg.Session.SweepInterval,
	}, zl)

	store := services.NewSessionStore(services.ControllerDeps{
		Gateway:    gateway,
		Intake:     intake,
		Dispatcher: worker,
		Archiver:   archiver,
		Logger:     zl,
	}, cfg.Session.TTL, zl)

	worker.Start(ctx, store)

	sessionHandler := handlers.NewSessionHandler(store, zl)
	reportHandler := handlers.NewReportHandler(reportRepo)

	app := fiber.New(fiber.Config{
		AppName:      "CV Master ATS API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    int(bodyLimit),
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.Register(app.Group("/api/v1"), sessionHandler, reportHandler)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Master ATS API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/sessions",
				"POST /api/v1/sessions/:id/document",
				"POST /api/v1/sessions/:id/profile",
				"POST /api/v1/sessions/:id/optimize",
				"GET /api/v1/sessions/:id",
				"GET /api/v1/sessions/:id/export",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		zl.Info("shutting down server")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			zl.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	zl.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		zl.Fatal("failed to start server", zap.Error(err))
	}
}

// newGateway falls back to a gateway that fails every call when no API key
// is configured, so the API still serves uploads and reports the problem
// on the session.
func newGateway(ctx context.Context, cfg *config.Config, zl *zap.Logger) services.InferenceGateway {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  "GEMINI_API_KEY",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		zl.Warn("gemini api key unavailable", zap.Error(err))
		return services.NewUnavailableGateway(services.ErrMissingCredentials)
	}

	gateway, err := services.NewGeminiService(ctx, services.GeminiOptions{
		APIKey:              apiKey,
		Model:               cfg.Gemini.Model,
		Timeout:             cfg.Gemini.Timeout,
		MaxAttempts:         cfg.Gemini.MaxAttempts,
		RetryDelay:          cfg.Gemini.RetryDelay,
		AnalyzeTemperature:  &cfg.Gemini.AnalyzeTemperature,
		OptimizeTemperature: &cfg.Gemini.OptimizeTemperature,
		Language:            cfg.Gemini.Language,
		MaxLogLength:        cfg.Log.MaxPreviewLen,
	}, zl)
	if err != nil {
		zl.Error("failed to initialize gemini", zap.Error(err))
		return services.NewUnavailableGateway(err)
	}

	zl.Info("gemini initialized", zap.String("model", cfg.Gemini.Model))
	return gateway
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
