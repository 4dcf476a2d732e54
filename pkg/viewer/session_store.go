package viewer

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned when the session id has no stored snapshot.
var ErrNoSession = errors.New("session not found")

// Session is the forum part of a user's session.
type Session struct {
	LastVisit     *time.Time
	Timezone      string
	ReadTopics    []int64
	TopicsCreated map[int64]time.Time
	PostsCreated  map[int64]time.Time
}

// SessionStore loads session snapshots. The web application owns writes.
type SessionStore interface {
	Load(ctx context.Context, sessionID string) (*Session, error)
}

// RedisSessionStore reads the layout:
//
//	forum:session:<sid>         hash  last_visit (unix), timezone
//	forum:session:<sid>:read    set   topic ids
//	forum:session:<sid>:topics  hash  topic id -> unix created
//	forum:session:<sid>:posts   hash  post id -> unix created
type RedisSessionStore struct {
	rdb redis.Cmdable
}

func NewRedisSessionStore(rdb redis.Cmdable) *RedisSessionStore {
	return &RedisSessionStore{rdb: rdb}
}

func sessionKey(sid string) string { return "forum:session:" + sid }

func (s *RedisSessionStore) Load(ctx context.Context, sessionID string) (*Session, error) {
	key := sessionKey(sessionID)

	var (
		base   *redis.MapStringStringCmd
		read   *redis.StringSliceCmd
		topics *redis.MapStringStringCmd
		posts  *redis.MapStringStringCmd
	)
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		base = p.HGetAll(ctx, key)
		read = p.SMembers(ctx, key+":read")
		topics = p.HGetAll(ctx, key+":topics")
		posts = p.HGetAll(ctx, key+":posts")
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	fields := base.Val()
	if len(fields) == 0 {
		return nil, ErrNoSession
	}

	sess := &Session{Timezone: fields["timezone"]}
	if raw := fields["last_visit"]; raw != "" {
		ts, err := parseUnix(raw)
		if err != nil {
			return nil, fmt.Errorf("session %s: bad last_visit: %w", sessionID, err)
		}
		sess.LastVisit = &ts
	}
	for _, m := range read.Val() {
		id, err := strconv.ParseInt(m, 10, 64)
		if err != nil {
			continue
		}
		sess.ReadTopics = append(sess.ReadTopics, id)
	}
	sess.TopicsCreated = parseHistory(topics.Val())
	sess.PostsCreated = parseHistory(posts.Val())
	return sess, nil
}

func parseUnix(s string) (time.Time, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(n, 0).UTC(), nil
}

// parseHistory 跳过无法解析的条目
func parseHistory(m map[string]string) map[int64]time.Time {
	out := make(map[int64]time.Time, len(m))
	for k, v := range m {
		id, err := strconv.ParseInt(k, 10, 64)
		if err != nil {
			continue
		}
		ts, err := parseUnix(v)
		if err != nil {
			continue
		}
		out[id] = ts
	}
	return out
}
