// Package basicmcp is a minimal MCP server template. It wires a tool
// registry, a session-aware protocol handler, and a choice of
// transports into a server that a new project can copy and extend.
//
// A typical server registers its tools and serves on stdio:
//
//	srv := basicmcp.NewServer("my-server", "1.0.0")
//	srv.MustRegisterTool(server.NewTool("example", "Process input text",
//		schema.NewObject(schema.Field{
//			Name:     "input",
//			Type:     schema.TypeString,
//			Required: true,
//		}),
//		func(ctx context.Context, args json.RawMessage) (*server.Result, error) {
//			var params struct {
//				Input string `json:"input"`
//			}
//			if err := json.Unmarshal(args, &params); err != nil {
//				return nil, err
//			}
//			return server.TextResult("Processed: " + params.Input), nil
//		}))
//	basicmcp.ServeStdio(ctx, srv)
package basicmcp

import (
	"context"

	"github.com/dawsonlp/basic-mcp-server/middleware"
	"github.com/dawsonlp/basic-mcp-server/server"
	"github.com/dawsonlp/basic-mcp-server/transport"
)

// NewServer creates a server with the given identity and default
// capabilities matching what gets registered on it.
func NewServer(name, version string) *server.Server {
	return server.New(server.Info{
		Name:    name,
		Version: version,
		Capabilities: server.Capabilities{
			Tools:     true,
			Resources: true,
			Prompts:   true,
		},
	})
}

// serveOptions collects cross-transport serve configuration.
type serveOptions struct {
	middleware []middleware.Middleware
}

// ServeOption configures how a server is exposed over a transport.
type ServeOption func(*serveOptions)

// WithMiddleware wraps the protocol handler with the given middleware,
// applied in order around the dispatch.
func WithMiddleware(mw ...middleware.Middleware) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, mw...)
	}
}

// WithLogger installs the default middleware stack (panic recovery,
// request IDs, request logging) using the given logger.
func WithLogger(logger middleware.Logger) ServeOption {
	return func(o *serveOptions) {
		o.middleware = append(o.middleware, middleware.DefaultStack(logger)...)
	}
}

// ServeStdio serves srv over stdin/stdout until ctx is canceled or
// input is exhausted.
func ServeStdio(ctx context.Context, srv *server.Server, opts ...ServeOption) error {
	return transport.NewStdio().Serve(ctx, NewHandler(srv, opts...))
}

// ServeSSE serves srv over HTTP with Server-Sent Events on addr.
func ServeSSE(ctx context.Context, srv *server.Server, addr string, opts ...ServeOption) error {
	return transport.NewSSE(addr).Serve(ctx, NewHandler(srv, opts...))
}

// ServeWebSocket serves srv over WebSocket connections on addr.
func ServeWebSocket(ctx context.Context, srv *server.Server, addr string, opts ...ServeOption) error {
	return transport.NewWebSocket(addr).Serve(ctx, NewHandler(srv, opts...))
}

// Serve runs srv on an already constructed transport, so callers can
// configure transport options themselves.
func Serve(ctx context.Context, srv *server.Server, t transport.Transport, opts ...ServeOption) error {
	return t.Serve(ctx, NewHandler(srv, opts...))
}
