package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"forumhelper/pkg/gravatar"
	"forumhelper/pkg/logger"
)

// AvatarResolver is the part of gravatar.Resolver the handler needs.
type AvatarResolver interface {
	ResolveWith(ctx context.Context, email string, size int, rating string) (string, bool, error)
}

type GravatarHandler struct {
	resolver AvatarResolver
	size     int
	rating   string
	logger   *zap.Logger
}

// NewGravatarHandler uses size and rating when the query leaves them out.
func NewGravatarHandler(resolver AvatarResolver, size int, rating string, logger *zap.Logger) *GravatarHandler {
	return &GravatarHandler{resolver: resolver, size: size, rating: rating, logger: logger}
}

// Resolve handles GET /gravatar?email=&size=&rating=
func (h *GravatarHandler) Resolve(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email is required"})
		return
	}

	size := h.size
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid size"})
			return
		}
		size = n
	}
	rating := c.DefaultQuery("rating", h.rating)

	url, found, err := h.resolver.ResolveWith(c.Request.Context(), email, size, rating)
	if err != nil {
		logger.WithTrace(c.Request.Context(), h.logger).Warn("Gravatar lookup failed", zap.Error(err))
		if errors.Is(err, gravatar.ErrTransport) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "avatar service unavailable"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve avatar"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url":   url,
		"found": found,
	})
}
