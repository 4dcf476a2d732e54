package mqhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"forumhelper/pkg/gravatar"
)

func TestHandleEmailChanged_ForcesFreshLookup(t *testing.T) {
	calls := 0
	fetcher := gravatar.FetcherFunc(func(context.Context, string) (int, error) {
		calls++
		return http.StatusNotFound, nil
	})
	resolver := gravatar.NewResolver(fetcher, nil)
	ctx := context.Background()

	_, _, _ = resolver.Resolve(ctx, "new@example.com")
	h := NewGravatarInvalidateHandler(resolver, zap.NewNop())
	err := h.HandleEmailChanged(ctx, json.RawMessage(`{"user_id":1,"old_email":"old@example.com","new_email":"New@Example.com"}`))
	if err != nil {
		t.Fatalf("HandleEmailChanged: %v", err)
	}
	_, _, _ = resolver.Resolve(ctx, "new@example.com")
	if calls != 2 {
		t.Fatalf("expected lookup after invalidation, calls=%d", calls)
	}
}

type failingInvalidator struct{ err error }

func (f failingInvalidator) Invalidate(context.Context, string) error { return f.err }

func TestHandleEmailChanged_Errors(t *testing.T) {
	h := NewGravatarInvalidateHandler(failingInvalidator{}, zap.NewNop())
	if err := h.HandleEmailChanged(context.Background(), json.RawMessage(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}

	boom := errors.New("redis down")
	h = NewGravatarInvalidateHandler(failingInvalidator{err: boom}, zap.NewNop())
	if err := h.HandleEmailChanged(context.Background(), json.RawMessage(`{"user_id":1,"new_email":"a@b.c"}`)); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped cache error, got %v", err)
	}
}

func TestHandleAvatarReset_SkipsEmptyEmail(t *testing.T) {
	h := NewGravatarInvalidateHandler(failingInvalidator{err: errors.New("must not be called")}, zap.NewNop())
	if err := h.HandleAvatarReset(context.Background(), json.RawMessage(`{"user_id":3}`)); err != nil {
		t.Fatalf("HandleAvatarReset: %v", err)
	}
}
