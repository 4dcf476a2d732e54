package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"forumhelper/pkg/otel"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	statusHandler *StatusHandler,
	gravatarHandler *GravatarHandler,
	viewerHandler *ViewerHandler,
	loader ViewerLoader,
	jwtSecret string,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), otel.GinMiddleware(), TraceMiddleware(), MetricsMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// No viewer needed
	r.GET("/gravatar", gravatarHandler.Resolve)
	r.GET("/options/:kind", viewerHandler.Options)

	forumRoutes := r.Group("/")
	forumRoutes.Use(ViewerMiddleware(jwtSecret, loader, logger))
	{
		forumRoutes.POST("/forums/status", statusHandler.ForumStatus)
		forumRoutes.POST("/topics/status", statusHandler.TopicStatus)
		forumRoutes.GET("/viewer/access", viewerHandler.Access)
		forumRoutes.GET("/viewer/activity", viewerHandler.Activity)
	}

	return &Router{Engine: r}
}

func (r *Router) Run(port string) error {
	return r.Engine.Run(port)
}
