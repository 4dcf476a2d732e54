// Package status picks the single badge shown next to a forum or topic.
package status

import (
	"errors"
	"fmt"

	"forumhelper/pkg/forum"
	"forumhelper/pkg/metrics"
)

// Tag is the symbolic status of a forum or topic.
type Tag string

const (
	Open         Tag = "open"
	Closed       Tag = "closed"
	New          Tag = "new"
	Sticky       Tag = "sticky"
	Important    Tag = "important"
	Announcement Tag = "announcement"
	OpenHot      Tag = "open_hot"
	NewHot       Tag = "new_hot"
)

const hotSuffix = "_hot"

// ErrInvalidTopicType is returned for a topic type outside the enum.
var ErrInvalidTopicType = errors.New("invalid topic type")

// InvalidTypeError carries the offending value.
type InvalidTypeError struct {
	Type forum.TopicType
}

func (e *InvalidTypeError) Error() string {
	return fmt.Sprintf("invalid topic type: %d", int(e.Type))
}

func (e *InvalidTypeError) Unwrap() error { return ErrInvalidTopicType }

// Classifier holds the configured hot-topic threshold.
type Classifier struct {
	HotThreshold int
}

// NewClassifier returns a classifier. A threshold <= 0 marks every open or
// new topic hot, matching a zero posts_till_hot_topic setting.
func NewClassifier(hotThreshold int) *Classifier {
	return &Classifier{HotThreshold: hotThreshold}
}

// ClassifyForum returns closed, new or open.
func (c *Classifier) ClassifyForum(f forum.ForumSummary, v *forum.Viewer) Tag {
	tag := Open
	switch {
	case f.Status == forum.ForumClosed:
		tag = Closed
	case v.ActiveAfter(f.LastActivity()):
		tag = New
	}
	metrics.IncrementStatusClassified("forum", string(tag))
	return tag
}

// ClassifyTopic returns the topic's badge. Closed wins over everything; an
// unread topic shows as new even when it is sticky, important or an
// announcement. The hot suffix only ever decorates open and new.
func (c *Classifier) ClassifyTopic(t forum.TopicSummary, v *forum.Viewer) (Tag, error) {
	if t.Status == forum.TopicClosed {
		metrics.IncrementStatusClassified("topic", string(Closed))
		return Closed, nil
	}

	var tag Tag
	if v.ActiveAfter(t.LastActivity()) && !v.HasRead(t.ID) {
		tag = New
	} else {
		switch t.Type {
		case forum.TopicNormal:
			tag = Open
		case forum.TopicSticky:
			tag = Sticky
		case forum.TopicImportant:
			tag = Important
		case forum.TopicAnnouncement:
			tag = Announcement
		default:
			return "", &InvalidTypeError{Type: t.Type}
		}
	}

	if (tag == Open || tag == New) && t.PostCount >= c.HotThreshold {
		tag += hotSuffix
	}

	metrics.IncrementStatusClassified("topic", string(tag))
	return tag, nil
}

// IsHot reports whether the tag carries the hot suffix.
func (t Tag) IsHot() bool {
	return t == OpenHot || t == NewHot
}

// TopicTypeLabel returns the prefix shown before a topic title, e.g.
// "Sticky:". Normal topics have no prefix.
func TopicTypeLabel(t forum.TopicType, l forum.Localizer) (string, error) {
	if l == nil {
		l = forum.Identity
	}
	switch t {
	case forum.TopicNormal:
		return "", nil
	case forum.TopicSticky:
		return l.T(forum.Domain, "Sticky") + ":", nil
	case forum.TopicImportant:
		return l.T(forum.Domain, "Important") + ":", nil
	case forum.TopicAnnouncement:
		return l.T(forum.Domain, "Announcement") + ":", nil
	default:
		return "", &InvalidTypeError{Type: t}
	}
}
