package httpserver

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forumhelper/pkg/forum"
	"forumhelper/pkg/logger"
	"forumhelper/pkg/metrics"
	"forumhelper/pkg/trace"
	"forumhelper/pkg/viewer"
)

const (
	viewerKey = "viewer"

	// SessionCookie carries the forum session id for guests without a token.
	SessionCookie = "forum_sid"
)

// ViewerLoader builds the viewer snapshot for an identity.
type ViewerLoader interface {
	Load(ctx context.Context, id viewer.Identity) (*forum.Viewer, error)
}

// TraceMiddleware 复用或生成 trace_id，并写回响应头
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := c.GetHeader(trace.HeaderName)
		if traceID == "" {
			traceID = trace.GenerateTraceID()
		}
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName, traceID)
		c.Next()
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}

// ViewerMiddleware resolves the viewer for every request. A missing token
// means a guest; a token that fails verification is rejected.
func ViewerMiddleware(jwtSecret string, loader ViewerLoader, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var id viewer.Identity

		if token := viewer.ExtractToken(c.Request); token != "" {
			parsed, err := viewer.ParseToken(token, jwtSecret)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
				c.Abort()
				return
			}
			id = parsed
		} else if sid, err := c.Cookie(SessionCookie); err == nil {
			id.SessionID = sid
		}

		v, err := loader.Load(c.Request.Context(), id)
		if err != nil {
			logger.WithTrace(c.Request.Context(), log).Error("Failed to load viewer",
				zap.Int64("user_id", id.UserID),
				zap.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "viewer unavailable"})
			c.Abort()
			return
		}

		c.Set(viewerKey, v)
		c.Next()
	}
}

// currentViewer returns the viewer stored by ViewerMiddleware, or nil.
func currentViewer(c *gin.Context) *forum.Viewer {
	v, ok := c.Get(viewerKey)
	if !ok {
		return nil
	}
	fv, _ := v.(*forum.Viewer)
	return fv
}
