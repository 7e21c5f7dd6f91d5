package middleware

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

func TestRequestID(t *testing.T) {
	t.Run("injects an ID", func(t *testing.T) {
		var got string
		handler := RequestID()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			got = RequestIDFromContext(ctx)
			return okHandler(ctx, req)
		})

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodPing}
		if _, err := handler(context.Background(), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == "" {
			t.Error("expected a generated request ID")
		}
	})

	t.Run("preserves an existing ID", func(t *testing.T) {
		var got string
		handler := RequestID()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			got = RequestIDFromContext(ctx)
			return okHandler(ctx, req)
		})

		ctx := ContextWithRequestID(context.Background(), "upstream-id")
		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodPing}
		if _, err := handler(ctx, req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "upstream-id" {
			t.Errorf("request ID = %q, want upstream-id", got)
		}
	})

	t.Run("generates distinct IDs per request", func(t *testing.T) {
		seen := make(map[string]bool)
		handler := RequestID()(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			seen[RequestIDFromContext(ctx)] = true
			return okHandler(ctx, req)
		})

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodPing}
		for i := 0; i < 5; i++ {
			if _, err := handler(context.Background(), req); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		}
		if len(seen) != 5 {
			t.Errorf("got %d distinct IDs, want 5", len(seen))
		}
	})
}
