package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seusdados/crm-service/internal/cache"
	"github.com/seusdados/crm-service/internal/config"
	"github.com/seusdados/crm-service/internal/handlers"
	"github.com/seusdados/crm-service/internal/render"
	"github.com/seusdados/crm-service/internal/repositories/postgres"
	"github.com/seusdados/crm-service/internal/services"
	"github.com/seusdados/crm-service/internal/storage"
	"github.com/seusdados/crm-service/internal/utils"
	"github.com/seusdados/crm-service/internal/validator"
	"github.com/seusdados/crm-service/pkg"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slogger := utils.ToSlogLogger(logger)

	ctx := context.Background()

	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		logger.LogError(err, "Failed to connect to database")
		os.Exit(1)
	}
	if cfg.AutoMigrate {
		if err := postgres.AutoMigrate(db); err != nil {
			logger.LogError(err, "Failed to migrate database")
			os.Exit(1)
		}
	}
	repo := postgres.NewRepository(db)
	defer repo.Close()

	zapLogger, err := utils.NewZapLogger(cfg.Environment)
	if err != nil {
		zapLogger = zap.NewNop()
	}
	defer zapLogger.Sync()

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	if err != nil {
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		cacheService = cache.NewMemoryCache()
	} else {
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, zapLogger)
	}
	if cfg.AutoMigrate {
		// cached definitions may predate the migrated schema
		if err := cacheService.DeletePattern(ctx, cache.QuestionnairePattern()); err != nil {
			logger.Warn("Failed to clear cached questionnaires", "error", err)
		}
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		logger.LogError(err, "Failed to create event publisher")
		os.Exit(1)
	}
	defer publisher.Close()

	var documentStorage storage.DocumentStorage
	if cfg.Minio.Enabled {
		client, err := storage.NewMinioClient(cfg.Minio)
		if err == nil {
			documentStorage, err = storage.NewMinioStorage(ctx, client, cfg.Minio.Bucket)
		}
		if err != nil {
			logger.Warn("Object storage unavailable, PDFs will not be stored", "error", err)
			documentStorage = nil
		}
	}

	var renderer render.Renderer
	if cfg.Renderer.Enabled {
		pdfRenderer := render.NewPDFRenderer(cfg.Renderer)
		defer pdfRenderer.Close()
		renderer = pdfRenderer
	}

	serviceManager := services.NewServiceManager(services.Dependencies{
		Repo:      repo,
		Cache:     cacheService,
		CacheTTL:  cfg.CacheTTL,
		Publisher: publisher,
		Renderer:  renderer,
		Storage:   documentStorage,
		Validator: validator.New(),
		Logger:    slogger,
		Debug:     !cfg.IsProduction(),
	})

	var verifier handlers.TokenVerifier
	if cfg.Casdoor.Enabled {
		verifier = handlers.NewCasdoorVerifier(cfg.Casdoor)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	handlers.NewHandlerManager(serviceManager, verifier, logger).SetupRoutes(router)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Server forced to shutdown")
	}
	logger.Info("Server exiting")
}
