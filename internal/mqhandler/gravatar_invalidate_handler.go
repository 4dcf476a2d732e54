package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"forumhelper/pkg/mq"
)

// Invalidator drops cached avatar answers for an address.
type Invalidator interface {
	Invalidate(ctx context.Context, email string) error
}

type GravatarInvalidateHandler struct {
	resolver Invalidator
	logger   *zap.Logger
}

func NewGravatarInvalidateHandler(resolver Invalidator, logger *zap.Logger) *GravatarInvalidateHandler {
	return &GravatarInvalidateHandler{resolver: resolver, logger: logger}
}

// HandleEmailChanged forgets both the old and the new address so the next
// render looks the new one up instead of serving a stale negative entry.
// Idempotent: deleting a missing entry is a no-op.
func (h *GravatarInvalidateHandler) HandleEmailChanged(ctx context.Context, raw json.RawMessage) error {
	var p mq.UserEmailChangedPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal email changed payload", zap.Error(err))
		return err
	}

	h.logger.Info("Invalidating gravatar cache for email change", zap.Int64("user_id", p.UserID))

	for _, email := range []string{p.OldEmail, p.NewEmail} {
		if email == "" {
			continue
		}
		if err := h.resolver.Invalidate(ctx, email); err != nil {
			return fmt.Errorf("invalidate gravatar for user %d: %w", p.UserID, err)
		}
	}
	return nil
}

// HandleAvatarReset forgets the cached answer for the user's address.
func (h *GravatarInvalidateHandler) HandleAvatarReset(ctx context.Context, raw json.RawMessage) error {
	var p mq.UserAvatarResetPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		h.logger.Error("Failed to unmarshal avatar reset payload", zap.Error(err))
		return err
	}
	if p.Email == "" {
		h.logger.Warn("Avatar reset without email, skipping", zap.Int64("user_id", p.UserID))
		return nil
	}
	if err := h.resolver.Invalidate(ctx, p.Email); err != nil {
		return fmt.Errorf("invalidate gravatar for user %d: %w", p.UserID, err)
	}
	return nil
}
