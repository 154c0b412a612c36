package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"hainguyen/cv-job-matching/internal/config"
	"hainguyen/cv-job-matching/internal/handlers"
	"hainguyen/cv-job-matching/internal/keyring"
	"hainguyen/cv-job-matching/internal/repositories"
	"hainguyen/cv-job-matching/internal/services"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	cfg := config.Load(logger)

	db, err := config.InitDatabase(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}

	cvRepo := repositories.NewCVRepository(db)
	jobRepo := repositories.NewJobRepository(db, logger)
	appRepo := repositories.NewApplicationRepository(db)
	logRepo := repositories.NewMatchLogRepository(db)

	ring, err := keyring.LoadFromEnv(logger)
	if err != nil {
		logger.Fatal("failed to load gemini api keys", zap.Error(err))
	}

	gemini, err := services.NewGeminiService(ring, cfg.Matching, cfg.Retry, logger)
	if err != nil {
		logger.Fatal("failed to initialize gemini", zap.Error(err))
	}

	store, err := services.NewQdrantStore(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		gemini,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to initialize qdrant", zap.Error(err))
	}

	if err := store.InitCollection(context.Background()); err != nil {
		logger.Fatal("failed to initialize qdrant collection", zap.Error(err))
	}

	prompts := services.NewPromptBuilder()
	pdfParser := services.NewPDFParserService()
	extractor := services.NewExtractorService(gemini, prompts, cfg.Retry, logger)
	matcher := services.NewMatcherService(gemini, store, prompts, cfg.Matching, logger)
	enricher := services.NewEnricher(jobRepo, logger)
	cache := services.NewMatchCache(logRepo, cfg.Matching.CacheWindow, logger)
	insights := services.NewInsightsService(gemini, prompts, logger)

	cvHandler := handlers.NewCVHandler(cvRepo, pdfParser, extractor, cfg.Storage.MaxFileSize, logger)
	matchHandler := handlers.NewMatchHandler(cvRepo, jobRepo, extractor, matcher, enricher, cache, logger)
	jobHandler := handlers.NewJobHandler(jobRepo, cvRepo, gemini, prompts, logger)
	appHandler := handlers.NewApplicationHandler(appRepo, cvRepo, jobRepo, logger)
	insightsHandler := handlers.NewInsightsHandler(cvRepo, insights, logger)

	app := fiber.New(fiber.Config{
		AppName:      "CV Job Matching API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
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

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/cv/upload", cvHandler.HandleUpload)
	api.Get("/cv", cvHandler.HandleList)
	api.Delete("/cv/:id", cvHandler.HandleDelete)
	api.Get("/cv/:id/insights", insightsHandler.HandleInsights)
	api.Post("/cv/improve", insightsHandler.HandleImprove)

	api.Post("/match", matchHandler.HandleMatch)

	api.Get("/jobs", jobHandler.HandleList)
	api.Get("/jobs/:id", jobHandler.HandleGet)
	api.Post("/jobs/search", jobHandler.HandleSearch)
	api.Get("/analytics/:chart", jobHandler.HandleAnalytics)

	api.Post("/applications", appHandler.HandleApply)
	api.Get("/applications/cv/:cv_id", appHandler.HandleListByCV)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "CV Job Matching API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/cv/upload",
				"GET /api/v1/cv",
				"DELETE /api/v1/cv/:id",
				"GET /api/v1/cv/:id/insights",
				"POST /api/v1/cv/improve",
				"POST /api/v1/match",
				"GET /api/v1/jobs",
				"GET /api/v1/jobs/:id",
				"POST /api/v1/jobs/search",
				"GET /api/v1/analytics/:chart",
				"POST /api/v1/applications",
				"GET /api/v1/applications/cv/:cv_id",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		logger.Info("shutting down server")
		if err := app.Shutdown(); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	logger.Info("server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
