package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-community-leaderboard/config"
	"github.com/oksasatya/go-community-leaderboard/internal/container"
	"github.com/oksasatya/go-community-leaderboard/internal/infrastructure"
	"github.com/oksasatya/go-community-leaderboard/internal/router"
	"github.com/oksasatya/go-community-leaderboard/pkg/helpers"
	"github.com/oksasatya/go-community-leaderboard/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx := context.Background()

	backend, err := infrastructure.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	logger.WithField("driver", backend.Driver).Info("store ready")

	// Optional infrastructure; each stays nil when not configured.
	rdb := openRedis(ctx, cfg, logger)
	gcsClient := openGCS(ctx, cfg, logger)
	esClient := openES(ctx, cfg, logger)
	var rabbitPub *helpers.RabbitPublisher
	if cfg.RabbitMQURL != "" {
		rabbitPub, err = helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQMembershipQueue)
		if err != nil {
			logger.WithError(err).Warn("rabbitmq unavailable; membership events disabled")
			rabbitPub = nil
		}
	}

	// Provide singletons to container for registry auto-wiring
	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetStore(backend, backend.Users, backend.Communities)
	container.SetRedis(rdb)
	container.SetGCS(gcsClient)
	container.SetES(esClient)
	container.SetRabbitPub(rabbitPub)

	r := router.NewEngine(cfg)
	reg := router.NewRegistry(r, cfg.APIBasePath)
	router.InitModules(reg)
	reg.RegisterAll()

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logger.Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}

	rabbitPub.Close()
	if gcsClient != nil {
		_ = gcsClient.Close()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if err := backend.Close(ctxShutdown); err != nil {
		logger.WithError(err).Warn("store close failed")
	}
	logger.Info("server exited properly")
}

func openRedis(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *redis.Client {
	if cfg.RedisAddr == "" {
		return nil
	}
	rdb := helpers.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		// keep the client: cache and limiter fail open and recover when redis returns
		logger.WithError(err).Warn("redis not reachable at startup")
	}
	return rdb
}

func openGCS(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *storage.Client {
	if cfg.GCSBucket == "" {
		return nil
	}
	client, err := helpers.NewGCSClient(ctx, cfg.GCSCredentialsJSONPath)
	if err != nil {
		logger.WithError(err).Warn("gcs unavailable; uploads disabled")
		return nil
	}
	return client
}

func openES(ctx context.Context, cfg *config.Config, logger *logrus.Logger) *elasticsearch.Client {
	addrs := cfg.ESAddrs()
	if len(addrs) == 0 {
		return nil
	}
	client, err := helpers.NewESClient(addrs, cfg.ElasticsearchUser, cfg.ElasticsearchPass)
	if err != nil {
		logger.WithError(err).Warn("elasticsearch unavailable; search disabled")
		return nil
	}
	if err := helpers.EnsureCommunityIndex(ctx, client, cfg.ESCommunitiesIndex); err != nil {
		// indexing and search fail per request until the cluster is back
		logger.WithError(err).Warn("elasticsearch index not ready")
	}
	return client
}
