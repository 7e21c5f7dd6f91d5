package middleware

import (
	"context"
	"crypto/subtle"
	"strings"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// Identity represents an authenticated caller.
type Identity struct {
	ID       string
	Name     string
	Metadata map[string]any
}

// identityContextKey is the context key for the identity.
type identityContextKey struct{}

// IdentityFromContext returns the authenticated identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	if id, ok := ctx.Value(identityContextKey{}).(*Identity); ok {
		return id
	}
	return nil
}

// ContextWithIdentity returns a context with the identity attached.
func ContextWithIdentity(ctx context.Context, identity *Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// Authenticator validates a request's credentials. It returns the
// caller's identity on success, or nil when no valid credentials are
// present.
type Authenticator func(ctx context.Context, req *protocol.Request) (*Identity, error)

// AuthOption configures the authentication middleware.
type AuthOption func(*authConfig)

type authConfig struct {
	logger      Logger
	skipMethods map[string]bool
}

// WithAuthLogger sets the logger for auth events.
func WithAuthLogger(l Logger) AuthOption {
	return func(c *authConfig) {
		c.logger = l
	}
}

// WithAuthSkipMethods adds methods that bypass authentication.
// Initialize and ping are always skipped.
func WithAuthSkipMethods(methods ...string) AuthOption {
	return func(c *authConfig) {
		for _, m := range methods {
			c.skipMethods[m] = true
		}
	}
}

// Auth returns middleware that rejects unauthenticated requests with
// an unauthorized error. The session stays open; the client may retry
// with credentials.
func Auth(authenticator Authenticator, opts ...AuthOption) Middleware {
	cfg := &authConfig{
		skipMethods: map[string]bool{
			protocol.MethodInitialize: true,
			protocol.MethodPing:       true,
		},
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			if cfg.skipMethods[req.Method] {
				return next(ctx, req)
			}

			identity, err := authenticator(ctx, req)
			if err != nil || identity == nil {
				if cfg.logger != nil {
					fields := []Field{F("method", req.Method)}
					if err != nil {
						fields = append(fields, F("error", err.Error()))
					}
					cfg.logger.Warn("authentication failed", fields...)
				}
				return nil, protocol.NewUnauthorized("authentication required")
			}

			return next(ContextWithIdentity(ctx, identity), req)
		}
	}
}

// APIKeyAuthenticator validates a key carried in request metadata
// under headerName (typically an X-API-Key header forwarded by the
// transport). Comparison is constant time.
func APIKeyAuthenticator(headerName, key string) Authenticator {
	return func(ctx context.Context, req *protocol.Request) (*Identity, error) {
		got := protocol.GetRequestMeta(ctx, headerName)
		if got == "" {
			got = protocol.GetRequestMeta(ctx, strings.ToLower(headerName))
		}
		if got == "" {
			return nil, nil
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			return nil, nil
		}
		return &Identity{ID: "api-key"}, nil
	}
}

// BearerTokenAuthenticator validates a bearer token from the
// Authorization metadata entry.
func BearerTokenAuthenticator(token string) Authenticator {
	return func(ctx context.Context, req *protocol.Request) (*Identity, error) {
		auth := protocol.GetRequestMeta(ctx, "Authorization")
		if auth == "" {
			auth = protocol.GetRequestMeta(ctx, "authorization")
		}
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			return nil, nil
		}
		got := strings.TrimPrefix(auth, prefix)
		if subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
			return nil, nil
		}
		return &Identity{ID: "bearer"}, nil
	}
}
