package app

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/campusworks/integrity-service/internal/config"
	"github.com/campusworks/integrity-service/internal/delivery/httpd"
	"github.com/campusworks/integrity-service/internal/repository"
	"github.com/campusworks/integrity-service/internal/service"
	"github.com/campusworks/integrity-service/internal/service/analyzer"
	"github.com/campusworks/integrity-service/internal/worker"
	"github.com/campusworks/integrity-service/internal/worker/queue"
)

type App struct {
	server         *http.Server
	logger         zerolog.Logger
	config         *config.Config
	db             *sql.DB
	analysisWorker worker.AnalysisWorker
	rabbitMQRepo   repository.RabbitMQRepository
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	rabbitMQRepo, err := repository.NewRabbitMQRepository(cfg.RabbitMQ.URL, log)
	if err != nil {
		return nil, err
	}

	if err := rabbitMQRepo.SetupQueue(
		cfg.RabbitMQ.Exchange,
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.SubmissionRouting,
	); err != nil {
		return nil, err
	}

	rabbitMQPublisher := queue.NewRabbitMQPublisher(rabbitMQRepo.Channel(), log)
	rabbitMQConsumer := queue.NewRabbitMQConsumer(
		rabbitMQRepo.Channel(),
		cfg.RabbitMQ.QueueName,
		cfg.RabbitMQ.ConsumerTag,
		cfg.RabbitMQ.PrefetchCount,
		log,
	)

	submissionRepo := repository.NewSubmissionRepository(db, log)
	verdictRepo := repository.NewVerdictRepository(db, log)

	objectStore, err := repository.NewMinIOStore(
		cfg.Storage.Endpoint,
		cfg.Storage.AccessKey,
		cfg.Storage.SecretKey,
		cfg.Storage.Bucket,
		cfg.Storage.Region,
		cfg.Storage.UseSSL,
		cfg.Storage.ConnectTimeout,
		log,
	)
	if err != nil {
		return nil, err
	}

	extractors := analyzer.NewExtractorRegistry(log)
	cache := analyzer.NewExtractionCache(cfg.Integrity.CacheEntries)
	engine := analyzer.NewEngine(extractors, cache, log, analyzer.EngineConfig{
		MaxWorkers: cfg.Integrity.MaxWorkers,
	})
	policy := analyzer.NewPolicy(cfg.Integrity.SimilarityThreshold)

	integrityService := service.NewIntegrityService(
		submissionRepo,
		verdictRepo,
		objectStore,
		rabbitMQRepo,
		rabbitMQPublisher,
		extractors,
		engine,
		policy,
		log,
		service.IntegrityServiceConfig{
			SimilarityThreshold: cfg.Integrity.SimilarityThreshold,
			Exchange:            cfg.RabbitMQ.Exchange,
			SubmissionRouting:   cfg.RabbitMQ.SubmissionRouting,
			CompletedRouting:    cfg.RabbitMQ.CompletedRouting,
			FailedRouting:       cfg.RabbitMQ.FailedRouting,
		},
	)

	evidenceService := service.NewEvidenceService(
		submissionRepo,
		verdictRepo,
		objectStore,
		extractors,
		engine,
		log,
	)

	workerPool := worker.NewPool(cfg.Integrity.MaxWorkers, log)

	analysisWorker := worker.NewAnalysisWorker(
		workerPool,
		rabbitMQConsumer,
		integrityService,
		log,
	)

	handler := httpd.NewHandler(
		integrityService,
		evidenceService,
		analysisWorker,
		cfg.Server.MaxUploadBytes,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(cfg.Server.WriteTimeout))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:         server,
		logger:         log,
		config:         cfg,
		db:             db,
		analysisWorker: analysisWorker,
		rabbitMQRepo:   rabbitMQRepo,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	if err := a.analysisWorker.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start analysis worker")
		return err
	}

	a.logger.Info().Msgf("Starting integrity service on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down integrity service...")

	if err := a.analysisWorker.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop analysis worker")
	}

	if a.rabbitMQRepo != nil {
		if err := a.rabbitMQRepo.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close RabbitMQ connection")
		}
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Integrity service stopped")
	return nil
}
