package middleware

import (
	"context"
	"time"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// Timeout returns middleware that enforces a per-request deadline.
// When the handler overruns, the context is cancelled and the
// context error propagates.
func Timeout(d time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
