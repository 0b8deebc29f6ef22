package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"invisinsights/internal/cache"
	"invisinsights/internal/config"
	"invisinsights/internal/logging"
	"invisinsights/internal/repository"
	"invisinsights/internal/service"
	"invisinsights/internal/survey"
	"invisinsights/internal/telemetry"
	"invisinsights/internal/transport/rest"
	"invisinsights/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited with error", zap.Error(err))
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Reasoning.IsEnabled() {
		logger.Info("reasoning configured", zap.String("model", cfg.Reasoning.Model))
	} else {
		logger.Warn("OPENROUTER_API_KEY not set, analysis requests will fail")
	}

	// Project store
	repo, closeStore, err := openProjectRepo(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Session buffer
	sessions, closeSessions, err := openSessionBuffer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSessions()

	// Question intent policy
	policy := survey.DefaultPolicy()
	if cfg.InferencePolicyFile != "" {
		policy, err = survey.LoadPolicyFile(cfg.InferencePolicyFile)
		if err != nil {
			return err
		}
		logger.Info("loaded inference policy", zap.String("path", cfg.InferencePolicyFile))
	}
	classifier, err := survey.NewKeywordClassifier(policy)
	if err != nil {
		return err
	}

	metrics, err := telemetry.New(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metrics.Close(shutdownCtx); err != nil {
			logger.Warn("metrics shutdown failed", zap.Error(err))
		}
	}()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(logger)
	go wsHub.Run(ctx)

	// Initialize services
	smClient := service.NewSMClient(cfg.SurveyMonkeyBaseURL, cfg.HTTPTimeout, logger)
	reasoning := service.NewReasoningClient(cfg.Reasoning, logger)

	connectSvc := service.NewConnectService(smClient, repo, survey.NewMapper(classifier), logger)
	analysisSvc := service.NewAnalysisService(smClient, reasoning, repo, sessions, cfg.SurveyMonkeyAccessToken, logger)

	// Inject publisher (wsHub implements service.Publisher) and metrics
	connectSvc.SetPublisher(wsHub)
	connectSvc.SetRecorder(metrics)
	analysisSvc.SetPublisher(wsHub)
	analysisSvc.SetRecorder(metrics)

	router := rest.NewRouter(&rest.Container{
		ConnectService:  connectSvc,
		AnalysisService: analysisSvc,
		WSHub:           wsHub,
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		Logger:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("port", cfg.Port),
			zap.String("environment", cfg.Environment),
			zap.String("store", cfg.StoreBackend))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	return nil
}

func openProjectRepo(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.ProjectRepo, func(), error) {
	if cfg.StoreBackend != config.StoreMongo {
		logger.Info("using in-memory project store")
		return repository.NewMemoryProjectRepo(), func() {}, nil
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	closeFn := func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client.Disconnect(disconnectCtx)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		closeFn()
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.MongoDatabase))

	return repository.NewMongoProjectRepo(ctx, client.Database(cfg.MongoDatabase), logger), closeFn, nil
}

func openSessionBuffer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (cache.SessionBuffer, func(), error) {
	if cfg.RedisURI == "" {
		return cache.NewMemorySessionBuffer(cfg.SessionBufferSize), func() {}, nil
	}

	opts, err := redisOptions(cfg.RedisURI)
	if err != nil {
		return nil, nil, err
	}
	rdb := redis.NewClient(opts)
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	logger.Info("connected to Redis")

	return cache.NewRedisSessionBuffer(rdb, cfg.SessionBufferSize), func() { rdb.Close() }, nil
}

// redisOptions accepts a full redis:// URL or a bare host:port
func redisOptions(uri string) (*redis.Options, error) {
	if strings.Contains(uri, "://") {
		opts, err := redis.ParseURL(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: uri}, nil
}
