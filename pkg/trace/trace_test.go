package trace

import (
	"context"
	"testing"
)

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "abc")
	if got := FromContext(ctx); got != "abc" {
		t.Fatalf("got %q", got)
	}
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("empty context: %q", got)
	}
	if id := GenerateTraceID(); len(id) != 32 {
		t.Fatalf("trace id length %d", len(id))
	}
}
