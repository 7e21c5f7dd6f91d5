// Command basic-mcp-server runs the template server. It registers the
// example tool and serves over the transport selected by TRANSPORT
// (stdio by default), with settings taken from the environment.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	basicmcp "github.com/dawsonlp/basic-mcp-server"
	"github.com/dawsonlp/basic-mcp-server/internal/config"
	"github.com/dawsonlp/basic-mcp-server/middleware"
	"github.com/dawsonlp/basic-mcp-server/schema"
	"github.com/dawsonlp/basic-mcp-server/server"
)

const (
	serverName    = "basic-mcp-server"
	serverVersion = "0.1.0"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Stdout belongs to the stdio transport, so logs go to stderr.
	slogger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := middleware.NewSlogLogger(slogger)

	srv := basicmcp.NewServer(serverName, serverVersion)
	srv.MustRegisterTool(exampleTool())

	opts := []basicmcp.ServeOption{basicmcp.WithLogger(logger)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cfg.Transport {
	case "stdio":
		slogger.Info("serving on stdio", "server", serverName)
		return basicmcp.ServeStdio(ctx, srv, opts...)
	case "sse", "websocket":
		if cfg.APIKey != "" {
			opts = append(opts, basicmcp.WithMiddleware(
				middleware.Auth(middleware.APIKeyAuthenticator("X-API-Key", cfg.APIKey),
					middleware.WithAuthLogger(logger)),
			))
		}
		slogger.Info("serving over http", "transport", cfg.Transport, "addr", cfg.Addr())
		if cfg.Transport == "websocket" {
			return basicmcp.ServeWebSocket(ctx, srv, cfg.Addr(), opts...)
		}
		return basicmcp.ServeSSE(ctx, srv, cfg.Addr(), opts...)
	}
	return fmt.Errorf("unknown transport: %q", cfg.Transport)
}

// exampleTool processes a single text argument. It exists so a copy of
// this template has a working end-to-end path before any real tools
// are added.
func exampleTool() *server.Tool {
	return server.NewTool("example", "Process input text",
		schema.NewObject(schema.Field{
			Name:        "input",
			Type:        schema.TypeString,
			Required:    true,
			Description: "Text to process",
		}),
		func(ctx context.Context, args json.RawMessage) (*server.Result, error) {
			var params struct {
				Input string `json:"input"`
			}
			if err := json.Unmarshal(args, &params); err != nil {
				return nil, err
			}
			return server.TextResult("Processed: " + params.Input), nil
		})
}
