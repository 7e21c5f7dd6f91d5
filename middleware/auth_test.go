package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

func metaContext(key, value string) context.Context {
	return protocol.ContextWithRequestMeta(context.Background(), protocol.RequestMeta{key: value})
}

func TestAuth(t *testing.T) {
	authenticator := APIKeyAuthenticator("X-API-Key", "secret-key")

	t.Run("accepts a valid API key", func(t *testing.T) {
		var identity *Identity
		handler := Auth(authenticator)(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			identity = IdentityFromContext(ctx)
			return okHandler(ctx, req)
		})

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsCall}
		if _, err := handler(metaContext("X-API-Key", "secret-key"), req); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity == nil || identity.ID != "api-key" {
			t.Errorf("identity = %v, want api-key identity", identity)
		}
	})

	t.Run("rejects a wrong key", func(t *testing.T) {
		handler := Auth(authenticator)(okHandler)

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsCall}
		_, err := handler(metaContext("X-API-Key", "wrong"), req)
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeUnauthorized}) {
			t.Errorf("error = %v, want unauthorized", err)
		}
	})

	t.Run("rejects a missing key", func(t *testing.T) {
		handler := Auth(authenticator)(okHandler)

		req := &protocol.Request{ID: json.RawMessage(`1`), Method: protocol.MethodToolsList}
		if _, err := handler(context.Background(), req); err == nil {
			t.Error("expected unauthorized error")
		}
	})

	t.Run("initialize and ping bypass auth", func(t *testing.T) {
		handler := Auth(authenticator)(okHandler)

		for _, method := range []string{protocol.MethodInitialize, protocol.MethodPing} {
			req := &protocol.Request{ID: json.RawMessage(`1`), Method: method}
			if _, err := handler(context.Background(), req); err != nil {
				t.Errorf("%s: unexpected error: %v", method, err)
			}
		}
	})
}

func TestBearerTokenAuthenticator(t *testing.T) {
	authenticator := BearerTokenAuthenticator("tok-123")

	t.Run("accepts a valid bearer token", func(t *testing.T) {
		identity, err := authenticator(metaContext("Authorization", "Bearer tok-123"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity == nil {
			t.Error("expected identity for valid token")
		}
	})

	t.Run("rejects a malformed header", func(t *testing.T) {
		identity, err := authenticator(metaContext("Authorization", "tok-123"), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if identity != nil {
			t.Error("expected nil identity without Bearer prefix")
		}
	})
}
