// Package viewer assembles the per-request forum.Viewer snapshot from the
// session store and the grant repository.
package viewer

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"forumhelper/pkg/forum"
)

type Provider struct {
	sessions SessionStore
	grants   GrantRepository
	logger   *zap.Logger
}

func NewProvider(sessions SessionStore, grants GrantRepository, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{sessions: sessions, grants: grants, logger: logger}
}

// Load builds the viewer for id. A missing session yields a viewer with no
// last visit and an empty read set rather than an error; grants are only
// looked up for signed-in users.
func (p *Provider) Load(ctx context.Context, id Identity) (*forum.Viewer, error) {
	v := &forum.Viewer{
		UserID:     id.UserID,
		ReadTopics: map[int64]struct{}{},
	}

	if id.SessionID != "" {
		sess, err := p.sessions.Load(ctx, id.SessionID)
		switch {
		case errors.Is(err, ErrNoSession):
			p.logger.Debug("no forum session, treating as first visit", zap.String("sid", id.SessionID))
		case err != nil:
			return nil, err
		default:
			applySession(v, sess)
		}
	}

	if id.UserID > 0 && p.grants != nil {
		g, err := p.grants.Grants(ctx, id.UserID)
		if err != nil {
			return nil, err
		}
		v.AccessLevels = g.AccessLevels
		v.Moderates = g.Moderates
		v.IsAdmin = g.IsAdmin
		v.IsSuperMod = g.IsSuperMod
	}
	return v, nil
}

func applySession(v *forum.Viewer, s *Session) {
	v.LastVisit = s.LastVisit
	v.Timezone = s.Timezone
	for _, id := range s.ReadTopics {
		v.ReadTopics[id] = struct{}{}
	}
	v.TopicsCreated = s.TopicsCreated
	v.PostsCreated = s.PostsCreated
}

// Timezone returns the viewer's profile timezone or the configured default.
func Timezone(v *forum.Viewer, def string) string {
	if v != nil && v.Timezone != "" {
		return v.Timezone
	}
	return def
}

// UserID returns the signed-in user's id and whether there is one.
func UserID(v *forum.Viewer) (int64, bool) {
	if v.IsGuest() {
		return 0, false
	}
	return v.UserID, true
}
