package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/patternengine/internal/classifier"
	"github.com/kailas-cloud/patternengine/internal/config"
	"github.com/kailas-cloud/patternengine/internal/embedding"
	"github.com/kailas-cloud/patternengine/internal/embedding/hashing"
	"github.com/kailas-cloud/patternengine/internal/embedding/lrucache"
	"github.com/kailas-cloud/patternengine/internal/embedding/openaibatch"
	"github.com/kailas-cloud/patternengine/internal/gateway"
	logpkg "github.com/kailas-cloud/patternengine/internal/logger"
	"github.com/kailas-cloud/patternengine/internal/loader"
	"github.com/kailas-cloud/patternengine/internal/metrics"
	"github.com/kailas-cloud/patternengine/internal/scheduler"
	"github.com/kailas-cloud/patternengine/internal/version"
)

func main() {
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting pattern engine",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("embedding_dimension", cfg.Embedding.Dimension),
	)

	metrics.RegisterEmbeddingMetrics()

	embedder, err := buildEmbedder(cfg, logger)
	if err != nil {
		logger.Fatal("failed to build embedding provider", zap.Error(err))
	}

	classify := classifier.New(embedder)

	source, err := buildArtifactSource(cfg)
	if err != nil {
		logger.Fatal("failed to build artifact source", zap.Error(err))
	}

	var batch embedding.BatchProvider
	if cfg.Embedding.RemoteBridge.Enabled {
		batch = openaibatch.New(openaibatch.Config{
			APIKey:     cfg.Embedding.RemoteBridge.APIKey,
			BaseURL:    cfg.Embedding.RemoteBridge.BaseURL,
			Model:      cfg.Embedding.RemoteBridge.Model,
			Dimensions: cfg.Embedding.Dimension,
		})
	}

	ldr := loader.New(source, embedder, batch, classify, logger)

	if _, err := ldr.Reload(context.Background()); err != nil {
		logger.Warn("initial index load failed, starting with an empty index", zap.Error(err))
	}

	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched, err = scheduler.New(ldr, cfg.Scheduler.CronSpec, logger)
		if err != nil {
			logger.Fatal("failed to build scheduler", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	}

	handlers := gateway.NewHandlers(classify, ldr, time.Duration(cfg.HTTP.RequestTimeoutMs)*time.Millisecond, logger)

	authCfg := gateway.AuthConfig{APIKeys: cfg.Auth.APIKeys}
	if cfg.Auth.JWTSecret != "" {
		authCfg = gateway.AuthConfig{JWTSecret: []byte(cfg.Auth.JWTSecret)}
	}

	router := gateway.NewRouter(handlers, gateway.Config{
		Auth:           authCfg,
		RequestTimeout: time.Duration(cfg.HTTP.RequestTimeoutMs) * time.Millisecond,
		MaxInFlight:    cfg.HTTP.MaxInFlight,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}

	logger.Info("server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: hashing base -> LRU cache.
func buildEmbedder(cfg config.Config, logger *zap.Logger) (embedding.Provider, error) {
	base, err := hashing.New(cfg.Embedding.Dimension)
	if err != nil {
		return nil, fmt.Errorf("build hashing embedder: %w", err)
	}

	cached, err := lrucache.New(base, cfg.Embedding.CacheSize, metrics.EmbeddingCacheTotal)
	if err != nil {
		return nil, fmt.Errorf("build cached embedder: %w", err)
	}

	logger.Info("embedding provider ready", zap.String("descriptor", cached.Descriptor()))
	return cached, nil
}

// buildArtifactSource selects the configured artifact backend.
func buildArtifactSource(cfg config.Config) (loader.ArtifactSource, error) {
	switch cfg.Artifact.Source {
	case "redis":
		return loader.NewRedisSource(loader.RedisConfig{
			Addrs:    cfg.Artifact.Redis.Addrs,
			Password: cfg.Artifact.Redis.Password,
			Key:      cfg.Artifact.Redis.Key,
		})
	default:
		return loader.NewFileSource(cfg.Artifact.Path, 5*time.Second), nil
	}
}
