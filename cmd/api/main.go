package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"alfredoptarigan/project-matcher/internal/config"
	"alfredoptarigan/project-matcher/internal/handlers"
	"alfredoptarigan/project-matcher/internal/logger"
	"alfredoptarigan/project-matcher/internal/metrics"
	"alfredoptarigan/project-matcher/internal/repositories"
	"alfredoptarigan/project-matcher/internal/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	metrics.Register()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		return err
	}

	projectRepo := repositories.NewProjectRepository(db)
	jobRepo := repositories.NewFitJobRepository(db)

	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	pdfParser := services.NewPDFRFPParser()

	agents, embedder, err := initAgents(ctx, cfg, log)
	if err != nil {
		return err
	}
	log.Info("agents initialized",
		zap.Strings("agents", agents.Names()),
		zap.String("default", cfg.Agents.Default),
		zap.String("embeddings", cfg.Agents.EmbeddingProvider),
	)

	if cfg.Redis.Addr != "" {
		store, err := services.NewRedisStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.CacheTTL)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Ping(ctx); err != nil {
			log.Warn("redis unavailable, embedding cache disabled", zap.Error(err))
		} else {
			embedder = services.NewCachedEmbedder(embedder, store, embedModelFor(cfg), log)
			log.Info("embedding cache enabled", zap.String("addr", cfg.Redis.Addr))
		}
	}

	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
		cfg.Qdrant.VectorSize,
		log,
	)
	if err != nil {
		return err
	}

	reranker := services.NewLLMReranker(agents.Default(), log)
	kb := services.NewKnowledgeBase(embedder, qdrantService, reranker, cfg.Retrieval.RerankCandidateMultiplier, log)

	projectStore := services.NewProjectStore(kb, projectRepo, log)
	if err := projectStore.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize project store: %w", err)
	}

	matcher := services.NewMatcherService(kb, log)
	analyzer := services.NewFitAnalyzer(kb, agents.Default(), log)
	jobService := services.NewFitJobService(jobRepo, analyzer, log)

	worker := services.NewWorker(jobRepo, jobService, cfg.Worker.Concurrency, cfg.Worker.QueueSize, log)
	worker.Start(ctx)

	projectHandler := handlers.NewProjectHandler(projectStore)
	uploadHandler := handlers.NewUploadHandler(projectStore, storageService, pdfParser, cfg.Storage.MaxFileSize, log)
	matchHandler := handlers.NewMatchHandler(matcher, agents)
	fitHandler := handlers.NewFitHandler(analyzer, jobRepo, worker)
	resultHandler := handlers.NewResultHandler(jobRepo)

	app := fiber.New(fiber.Config{
		AppName:      "Project Matcher API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1<<20,
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
	app.Use(metrics.Middleware())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	api.Post("/store/init", projectHandler.HandleInitStore)
	api.Post("/projects", projectHandler.HandleStoreProject)
	api.Post("/projects/batch", projectHandler.HandleStoreProjects)
	api.Post("/projects/upload", uploadHandler.HandleUploadRFP)
	api.Get("/projects/:id", projectHandler.HandleGetProject)
	api.Delete("/projects/:id", projectHandler.HandleDeleteProject)

	api.Post("/match", matchHandler.HandleMatch)
	api.Post("/match/batch", matchHandler.HandleMatchBatch)
	api.Post("/match/knowledge-base", matchHandler.HandleMatchKnowledgeBase)

	api.Post("/fit", fitHandler.HandleFit)
	api.Post("/fit/jobs", fitHandler.HandleCreateFitJob)
	api.Get("/fit/jobs/:id", resultHandler.HandleGetFitJob)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Project Matcher API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/store/init",
				"POST /api/v1/projects",
				"POST /api/v1/projects/batch",
				"POST /api/v1/projects/upload",
				"GET /api/v1/projects/:id",
				"DELETE /api/v1/projects/:id",
				"POST /api/v1/match",
				"POST /api/v1/match/batch",
				"POST /api/v1/match/knowledge-base",
				"POST /api/v1/fit",
				"POST /api/v1/fit/jobs",
				"GET /api/v1/fit/jobs/:id",
			},
		})
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("shutting down server")
		cancel()
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Server.Env))

	return app.Listen(addr)
}

// initAgents builds every agent with credentials configured and picks the
// embedding provider.
func initAgents(ctx context.Context, cfg *config.Config, log *zap.Logger) (*services.AgentRegistry, services.Embedder, error) {
	var (
		agents    []services.Agent
		embedders = make(map[string]services.Embedder)
	)

	if cfg.Gemini.APIKey != "" {
		gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbedModel, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize gemini: %w", err)
		}
		agents = append(agents, services.NewInstrumentedAgent(gemini))
		embedders[services.GeminiAgentName] = gemini
	}

	if cfg.OpenAI.APIKey != "" {
		openAI, err := services.NewOpenAIService(services.OpenAIConfig{
			APIKey:     cfg.OpenAI.APIKey,
			BaseURL:    cfg.OpenAI.BaseURL,
			Model:      cfg.OpenAI.Model,
			EmbedModel: cfg.OpenAI.EmbedModel,
			Dimensions: int(cfg.Qdrant.VectorSize),
		}, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize openai: %w", err)
		}
		agents = append(agents, services.NewInstrumentedAgent(openAI))
		embedders[services.OpenAIAgentName] = openAI
	}

	registry, err := services.NewAgentRegistry(cfg.Agents.Default, agents...)
	if err != nil {
		return nil, nil, err
	}

	embedder, ok := embedders[cfg.Agents.EmbeddingProvider]
	if !ok {
		return nil, nil, fmt.Errorf("embedding provider %q is not configured", cfg.Agents.EmbeddingProvider)
	}

	return registry, embedder, nil
}

func embedModelFor(cfg *config.Config) string {
	if cfg.Agents.EmbeddingProvider == services.OpenAIAgentName {
		return cfg.OpenAI.EmbedModel
	}
	return cfg.Gemini.EmbedModel
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := handlers.StatusFor(err)

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
