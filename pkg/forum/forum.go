package forum

import "time"

// ForumStatus 论坛状态（注意：与 TopicStatus 的取值相反）
type ForumStatus int

const (
	ForumClosed ForumStatus = 0
	ForumOpen   ForumStatus = 1
)

// TopicStatus 主题状态
type TopicStatus int

const (
	TopicOpen   TopicStatus = 0
	TopicClosed TopicStatus = 1
)

// TopicType 主题类型
type TopicType int

const (
	TopicNormal       TopicType = 0
	TopicSticky       TopicType = 1
	TopicImportant    TopicType = 2
	TopicAnnouncement TopicType = 3
)

// Valid reports whether t is one of the enumerated topic types.
func (t TopicType) Valid() bool {
	return t >= TopicNormal && t <= TopicAnnouncement
}

// ForumSummary is the part of a forum row needed to pick its icon.
type ForumSummary struct {
	ID          int64       `json:"id"`
	Status      ForumStatus `json:"status"`
	LastPostAt  *time.Time  `json:"last_post_at,omitempty"`
	LastTopicAt *time.Time  `json:"last_topic_at,omitempty"`
}

// LastActivity returns the last post time, falling back to the last topic
// creation time. Nil means the forum has no activity.
func (f ForumSummary) LastActivity() *time.Time {
	if f.LastPostAt != nil {
		return f.LastPostAt
	}
	return f.LastTopicAt
}

// TopicSummary is the part of a topic row needed for icons and page links.
type TopicSummary struct {
	ID         int64       `json:"id"`
	Slug       string      `json:"slug"`
	Status     TopicStatus `json:"status"`
	Type       TopicType   `json:"type"`
	PostCount  int         `json:"post_count"`
	PageCount  int         `json:"page_count,omitempty"`
	LastPostAt *time.Time  `json:"last_post_at,omitempty"`
	CreatedAt  *time.Time  `json:"created_at,omitempty"`
}

// LastActivity prefers the most recent post over the topic creation time.
func (t TopicSummary) LastActivity() *time.Time {
	if t.LastPostAt != nil {
		return t.LastPostAt
	}
	return t.CreatedAt
}

// Viewer is a read-only snapshot of the current reader's session, rebuilt
// for every request.
type Viewer struct {
	UserID       int64
	LastVisit    *time.Time
	ReadTopics   map[int64]struct{}
	AccessLevels []int
	Moderates    []int64
	IsAdmin      bool
	IsSuperMod   bool
	Timezone     string

	// flood control history: id -> creation time
	TopicsCreated map[int64]time.Time
	PostsCreated  map[int64]time.Time
}

// HasRead reports whether the topic is in the viewer's read set.
func (v *Viewer) HasRead(topicID int64) bool {
	if v == nil || v.ReadTopics == nil {
		return false
	}
	_, ok := v.ReadTopics[topicID]
	return ok
}

// ModeratesForum reports whether the viewer holds a moderation grant for forumID.
func (v *Viewer) ModeratesForum(forumID int64) bool {
	if v == nil {
		return false
	}
	for _, id := range v.Moderates {
		if id == forumID {
			return true
		}
	}
	return false
}

// ActiveAfter reports whether ts is strictly later than the viewer's last
// visit. An unset last visit behaves like the beginning of time.
func (v *Viewer) ActiveAfter(ts *time.Time) bool {
	if ts == nil {
		return false
	}
	if v == nil || v.LastVisit == nil {
		return true
	}
	return ts.After(*v.LastVisit)
}

// IsGuest reports whether the viewer has no authenticated user id.
func (v *Viewer) IsGuest() bool {
	return v == nil || v.UserID <= 0
}

// Localizer maps a (domain, key) pair to a display string.
type Localizer interface {
	T(domain, key string) string
}

// LocalizerFunc adapts a plain function to Localizer.
type LocalizerFunc func(domain, key string) string

func (f LocalizerFunc) T(domain, key string) string { return f(domain, key) }

// Identity returns keys unchanged; used when no catalog is configured.
var Identity Localizer = LocalizerFunc(func(_, key string) string { return key })

// Domain is the translation domain used by the forum.
const Domain = "forum"
