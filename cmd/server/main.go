package main

import (
	"go.uber.org/zap"

	"forumhelper/internal/httpserver"
	"forumhelper/pkg/circuitbreaker"
	"forumhelper/pkg/config"
	"forumhelper/pkg/db"
	"forumhelper/pkg/gravatar"
	"forumhelper/pkg/logger"
	"forumhelper/pkg/otel"
	"forumhelper/pkg/pagination"
	redisclient "forumhelper/pkg/redis"
	"forumhelper/pkg/status"
	"forumhelper/pkg/viewer"
)

func main() {
	// 1. Load config
	env := config.GetConfigEnv()
	cfg, err := config.Load(env, config.GetEnv("CONFIG_DIR", "config"))
	if err != nil {
		panic(err)
	}

	log := logger.New(env == "local")
	defer log.Sync()

	shutdownTracing, err := otel.Init(otel.Config{
		ServiceName: "forumhelper-server",
		Endpoint:    cfg.Tracing.Endpoint,
		Enabled:     cfg.Tracing.Enabled,
		SampleRatio: cfg.Tracing.SampleRatio,
	}, log)
	if err != nil {
		log.Fatal("OpenTelemetry initialization failed", zap.Error(err))
	}
	defer shutdownTracing()

	// 2. Init Redis (sessions, shared gravatar cache)
	rdb, err := redisclient.NewRedisClient(cfg.Redis, log)
	if err != nil {
		log.Fatal("Redis initialization failed", zap.Error(err))
	}
	defer rdb.Close()

	// 3. Init DB (access grants)
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// 4. Gravatar resolver
	var cache gravatar.Cache
	switch cfg.Gravatar.CacheBackend {
	case "redis":
		cache = gravatar.NewRedisCache(rdb, cfg.Gravatar.CacheTTL, cfg.Gravatar.NegativeTTL)
	default:
		cache = gravatar.NewMemoryCache(cfg.Gravatar.CacheSize, cfg.Gravatar.CacheTTL, cfg.Gravatar.NegativeTTL)
	}
	breaker := circuitbreaker.New(circuitbreaker.DefaultConfig())
	resolver := gravatar.NewResolver(
		gravatar.NewHTTPFetcher(cfg.Gravatar.Timeout, breaker),
		cache,
		gravatar.WithBaseURL(cfg.Gravatar.BaseURL),
		gravatar.WithDefaults(cfg.Gravatar.Size, cfg.Gravatar.Rating),
		gravatar.WithFetchTimeout(cfg.Gravatar.Timeout),
		gravatar.WithLogger(log),
	)

	// 5. Viewer provider
	provider := viewer.NewProvider(
		viewer.NewRedisSessionStore(rdb),
		viewer.NewPGGrantRepository(dbConn),
		log,
	)

	// 6. Handlers
	statusHandler := httpserver.NewStatusHandler(
		status.NewClassifier(cfg.Forum.PostsTillHotTopic),
		pagination.Settings{
			PostsPerPage:  cfg.Forum.PostsPerPage,
			TruncateAfter: cfg.Forum.TopicPagesTillTruncate,
		},
		pagination.RouteBuilder{},
		nil,
	)
	gravatarHandler := httpserver.NewGravatarHandler(resolver, cfg.Gravatar.Size, cfg.Gravatar.Rating, log)
	viewerHandler := httpserver.NewViewerHandler(nil, cfg.Forum.DefaultTimezone)

	// 7. Router
	router := httpserver.NewRouter(statusHandler, gravatarHandler, viewerHandler, provider, cfg.JWT.Secret, log)

	log.Info("Starting forum helper server", zap.String("env", env), zap.String("port", cfg.Server.Port))
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
