package httpserver

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"forumhelper/pkg/access"
	"forumhelper/pkg/activity"
	"forumhelper/pkg/forum"
	"forumhelper/pkg/options"
	"forumhelper/pkg/viewer"
)

var optionKinds = map[string]options.Kind{
	"yes_no":       options.YesNo,
	"open_closed":  options.OpenClosed,
	"visibility":   options.Visibility,
	"access_level": options.AccessLevel,
	"user_status":  options.UserStatus,
}

type ViewerHandler struct {
	localizer       forum.Localizer
	defaultTimezone string
	now             func() time.Time
}

func NewViewerHandler(localizer forum.Localizer, defaultTimezone string) *ViewerHandler {
	return &ViewerHandler{
		localizer:       localizer,
		defaultTimezone: defaultTimezone,
		now:             time.Now,
	}
}

// Access handles GET /viewer/access?level=&forum_id=
func (h *ViewerHandler) Access(c *gin.Context) {
	level, err := access.ParseLevel(c.Query("level"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var forumID *int64
	if raw := c.Query("forum_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid forum_id"})
			return
		}
		forumID = &id
	}

	v := currentViewer(c)
	err = access.Check(level, forumID, v)

	var denied *access.DeniedError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"allowed": true, "highest_level": access.HighestLevel(v)})
	case errors.As(err, &denied):
		c.JSON(http.StatusOK, gin.H{"allowed": false, "highest_level": access.HighestLevel(v), "reason": denied.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "access check failed"})
	}
}

// Activity handles GET /viewer/activity
func (h *ViewerHandler) Activity(c *gin.Context) {
	v := currentViewer(c)
	now := h.now()

	resp := gin.H{
		"topics_past_hour": activity.TopicsInPastHour(v, now),
		"posts_past_hour":  activity.PostsInPastHour(v, now),
		"timezone":         viewer.Timezone(v, h.defaultTimezone),
	}
	if id, ok := viewer.UserID(v); ok {
		resp["user_id"] = id
	}
	c.JSON(http.StatusOK, resp)
}

// Options handles GET /options/:kind?guest=1&value=
func (h *ViewerHandler) Options(c *gin.Context) {
	kind, ok := optionKinds[c.Param("kind")]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown option list"})
		return
	}
	table := options.Build(kind, h.localizer, c.Query("guest") == "1")

	if raw := c.Query("value"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid value"})
			return
		}
		// 未知取值返回整张表
		if label, found := table.Lookup(n); found {
			c.JSON(http.StatusOK, gin.H{"value": n, "label": label})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"options": table})
}
