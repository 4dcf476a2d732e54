package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"forumhelper/internal/mqhandler"
	"forumhelper/pkg/config"
	"forumhelper/pkg/gravatar"
	"forumhelper/pkg/logger"
	"forumhelper/pkg/mq"
	"forumhelper/pkg/otel"
	redisclient "forumhelper/pkg/redis"
)

func main() {
	// Load config
	env := config.GetConfigEnv()
	cfg, err := config.Load(env, config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		panic(err)
	}

	log := logger.New(env == "local")
	defer log.Sync()

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: "forumhelper-worker",
		Endpoint:    cfg.Tracing.Endpoint,
		Enabled:     cfg.Tracing.Enabled,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("OpenTelemetry initialization failed", zap.Error(err))
	}
	defer shutdownTracing()

	log.Info("Starting gravatar invalidation worker...")

	// worker 只清理 Redis 中的共享缓存
	if cfg.Gravatar.CacheBackend != "redis" {
		log.Warn("Gravatar cache backend is not redis, server caches will not see invalidations",
			zap.String("backend", cfg.Gravatar.CacheBackend))
	}

	// Init Redis
	rdb, err := redisclient.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	resolver := gravatar.NewResolver(
		nil,
		gravatar.NewRedisCache(rdb, cfg.Gravatar.CacheTTL, cfg.Gravatar.NegativeTTL),
		gravatar.WithLogger(log),
	)
	handler := mqhandler.NewGravatarInvalidateHandler(resolver, log)

	consumer, err := mq.NewConsumer(cfg.MQ.URL, cfg.MQ.Queue, []string{
		mq.RoutingKeyUserEmailChanged,
		mq.RoutingKeyUserAvatarReset,
	}, log)
	if err != nil {
		log.Fatal("failed to init consumer", zap.Error(err))
	}
	defer consumer.Close()

	consumer.Handle(mq.RoutingKeyUserEmailChanged, handler.HandleEmailChanged)
	consumer.Handle(mq.RoutingKeyUserAvatarReset, handler.HandleAvatarReset)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Consumer started, worker is ready to process messages")
	if err := consumer.StartConsuming(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", zap.Error(err))
	}
	log.Info("Worker shut down")
}
