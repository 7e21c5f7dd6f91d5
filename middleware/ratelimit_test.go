package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

func TestRateLimit(t *testing.T) {
	t.Run("allows requests within the limit", func(t *testing.T) {
		handler := RateLimit(100, 10)(okHandler)

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsList}
		for i := 0; i < 5; i++ {
			if _, err := handler(context.Background(), req); err != nil {
				t.Fatalf("request %d: unexpected error: %v", i, err)
			}
		}
	})

	t.Run("rejects requests over the burst", func(t *testing.T) {
		handler := RateLimit(1, 2)(okHandler)

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsCall}
		var limited bool
		for i := 0; i < 10; i++ {
			if _, err := handler(context.Background(), req); err != nil {
				if !errors.Is(err, &protocol.Error{Code: protocol.CodeRateLimited}) {
					t.Fatalf("error = %v, want rate limited", err)
				}
				limited = true
				break
			}
		}
		if !limited {
			t.Error("expected a rate limited error within 10 requests")
		}
	})

	t.Run("per-method limits are independent", func(t *testing.T) {
		handler := RateLimitByMethod(1, 1)(okHandler)

		exhaust := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsCall}
		_, _ = handler(context.Background(), exhaust)
		_, _ = handler(context.Background(), exhaust)

		other := &protocol.Request{ID: json.RawMessage(`2`), Method: protocol.MethodToolsList}
		if _, err := handler(context.Background(), other); err != nil {
			t.Errorf("unexpected error on a different method: %v", err)
		}
	})
}
