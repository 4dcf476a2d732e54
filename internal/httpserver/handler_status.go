package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"forumhelper/pkg/forum"
	"forumhelper/pkg/pagination"
	"forumhelper/pkg/status"
)

type StatusHandler struct {
	classifier *status.Classifier
	pages      pagination.Settings
	links      pagination.LinkBuilder
	localizer  forum.Localizer
}

func NewStatusHandler(classifier *status.Classifier, pages pagination.Settings, links pagination.LinkBuilder, localizer forum.Localizer) *StatusHandler {
	return &StatusHandler{
		classifier: classifier,
		pages:      pages,
		links:      links,
		localizer:  localizer,
	}
}

// 超出范围的计数来自伪造请求，直接拒绝
const (
	maxTopicPosts = 10_000_000
	maxTopicPages = 1_000_000
)

type forumStatus struct {
	ID   int64       `json:"id"`
	Tag  status.Tag  `json:"tag"`
	Icon status.Icon `json:"icon"`
}

type topicStatus struct {
	ID        int64             `json:"id"`
	Tag       status.Tag        `json:"tag"`
	Icon      status.Icon       `json:"icon"`
	TypeLabel string            `json:"type_label"`
	Emphasis  bool              `json:"emphasis"`
	Pages     []pagination.Link `json:"pages"`
}

// ForumStatus handles POST /forums/status
func (h *StatusHandler) ForumStatus(c *gin.Context) {
	var req struct {
		Forums []forum.ForumSummary `json:"forums"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	v := currentViewer(c)
	out := make([]forumStatus, 0, len(req.Forums))
	for _, f := range req.Forums {
		tag := h.classifier.ClassifyForum(f, v)
		out = append(out, forumStatus{ID: f.ID, Tag: tag, Icon: status.ForumIcon(tag)})
	}

	c.JSON(http.StatusOK, gin.H{"forums": out})
}

// TopicStatus handles POST /topics/status
func (h *StatusHandler) TopicStatus(c *gin.Context) {
	var req struct {
		Topics []forum.TopicSummary `json:"topics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	for _, t := range req.Topics {
		if t.PostCount < 0 || t.PostCount > maxTopicPosts || t.PageCount < 0 || t.PageCount > maxTopicPages {
			c.JSON(http.StatusBadRequest, gin.H{"error": "post_count or page_count out of range", "topic_id": t.ID})
			return
		}
	}

	v := currentViewer(c)
	out := make([]topicStatus, 0, len(req.Topics))
	for _, t := range req.Topics {
		tag, err := h.classifier.ClassifyTopic(t, v)
		if err != nil {
			h.invalidType(c, t.ID, err)
			return
		}

		ts := topicStatus{
			ID:    t.ID,
			Tag:   tag,
			Icon:  status.TopicIcon(tag),
			Pages: pagination.BuildPageLinks(t, h.pages, h.links),
		}
		// 已关闭/新主题的类型不参与状态判断，但标题前缀仍需合法类型
		if t.Type.Valid() {
			ts.TypeLabel, _ = status.TopicTypeLabel(t.Type, h.localizer)
			ts.Emphasis = ts.TypeLabel != ""
		}
		out = append(out, ts)
	}

	c.JSON(http.StatusOK, gin.H{"topics": out})
}

func (h *StatusHandler) invalidType(c *gin.Context, topicID int64, err error) {
	var typeErr *status.InvalidTypeError
	if errors.As(err, &typeErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":    err.Error(),
			"topic_id": topicID,
			"type":     int(typeErr.Type),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to classify topic"})
}
