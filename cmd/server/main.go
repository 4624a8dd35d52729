package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/donelist/backend/api/handler"
	"github.com/donelist/backend/internal/config"
	"github.com/donelist/backend/internal/infrastructure/monitor"
	pgInfra "github.com/donelist/backend/internal/infrastructure/postgres"
	"github.com/donelist/backend/internal/infrastructure/queue"
	redisInfra "github.com/donelist/backend/internal/infrastructure/redis"
	"github.com/donelist/backend/internal/middleware"
	"github.com/donelist/backend/internal/router"
	"github.com/donelist/backend/internal/services"
	"github.com/donelist/backend/internal/services/lifecycle"
	"github.com/donelist/backend/pkg/embeddings"
	"github.com/donelist/backend/pkg/httpcontext"
	"github.com/donelist/backend/pkg/logger"
	"github.com/donelist/backend/repository/postgres"
	redisRepo "github.com/donelist/backend/repository/redis"
	authUC "github.com/donelist/backend/usecase/auth"
	taskUC "github.com/donelist/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	enrichQueue, err := queue.Open(cfg.Queue.Path)
	if err != nil {
		zapLogger.Fatal("failed to open enrichment queue", zap.Error(err))
	}
	manager.Register("queue", func(ctx context.Context) error {
		return enrichQueue.Close()
	})

	mon := monitor.New(pool, redisClient, enrichQueue, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool, config.PageSize)
	sessionRepo := redisRepo.NewSessionRepository(redisClient, cfg.Auth.SessionTTL)

	embedder := embeddings.NewClient(embeddings.Config{
		BaseURL:    cfg.Embeddings.BaseURL,
		APIKey:     cfg.Embeddings.APIKey,
		Model:      cfg.Embeddings.Model,
		Dimensions: cfg.Embeddings.Dimensions,
		Timeout:    cfg.Embeddings.Timeout,
	})

	enricher := services.NewEnricher(
		enrichQueue,
		mon,
		embedder,
		taskRepo,
		zapLogger,
		services.EnricherConfig{
			Interval:    cfg.Queue.DrainInterval,
			BatchSize:   cfg.Queue.BatchSize,
			MaxAttempts: cfg.Queue.MaxAttempts,
		},
	)
	enricher.Start()
	manager.Register("enricher", func(ctx context.Context) error {
		enricher.Stop(ctx)
		return nil
	})

	digest := services.NewDigest(cfg.Digest, zapLogger)
	digest.Start()
	manager.Register("digest", func(ctx context.Context) error {
		digest.Stop()
		return nil
	})

	authUseCase := authUC.New(userRepo, sessionRepo, zapLogger, authUC.Config{
		Secret:     cfg.Auth.Secret,
		Issuer:     cfg.Auth.Issuer,
		SessionTTL: cfg.Auth.SessionTTL,
	})
	taskUseCase := taskUC.New(taskRepo, enricher, zapLogger)

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:   apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:   apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Health: apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
	}

	authMiddleware := middleware.SessionAuth(authUseCase, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
