package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/schema"
)

func exampleTool() *Tool {
	sch := schema.NewObject(
		schema.Field{Name: "input", Type: schema.TypeString, Required: true, Description: "Text to process"},
	)
	return NewTool("example", "An example tool that processes input text", sch,
		func(ctx context.Context, args json.RawMessage) (*Result, error) {
			var in struct {
				Input string `json:"input"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return nil, err
			}
			return TextResult("Processed: " + in.Input), nil
		})
}

func TestTool_Execute(t *testing.T) {
	t.Run("returns processed text", func(t *testing.T) {
		tool := exampleTool()

		result, err := tool.Execute(context.Background(), json.RawMessage(`{"input":"Hello MCP World!"}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(result.Content) != 1 {
			t.Fatalf("content length = %d, want 1", len(result.Content))
		}
		if result.Content[0].Text != "Processed: Hello MCP World!" {
			t.Errorf("text = %q, want %q", result.Content[0].Text, "Processed: Hello MCP World!")
		}
	})

	t.Run("handles empty string input", func(t *testing.T) {
		tool := exampleTool()

		result, err := tool.Execute(context.Background(), json.RawMessage(`{"input":""}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Content[0].Text != "Processed: " {
			t.Errorf("text = %q, want %q", result.Content[0].Text, "Processed: ")
		}
	})

	t.Run("handles control characters in input", func(t *testing.T) {
		tool := exampleTool()

		input := "line1\nline2\ttabbell"
		args, err := json.Marshal(map[string]string{"input": input})
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		result, err := tool.Execute(context.Background(), args)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Content[0].Text != "Processed: "+input {
			t.Errorf("text = %q, want %q", result.Content[0].Text, "Processed: "+input)
		}
	})

	t.Run("rejects missing required argument", func(t *testing.T) {
		tool := exampleTool()

		_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeInvalidParams}) {
			t.Fatalf("error = %v, want invalid params", err)
		}

		var perr *protocol.Error
		errors.As(err, &perr)
		data, ok := perr.Data.(map[string]any)
		if !ok {
			t.Fatalf("Data = %v, want field detail", perr.Data)
		}
		fields, ok := data["fields"].([]string)
		if !ok || len(fields) != 1 || fields[0] != "input" {
			t.Errorf("fields = %v, want [input]", data["fields"])
		}
	})

	t.Run("rejects wrong argument type", func(t *testing.T) {
		tool := exampleTool()

		_, err := tool.Execute(context.Background(), json.RawMessage(`{"input":42}`))
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeInvalidParams}) {
			t.Errorf("error = %v, want invalid params", err)
		}
	})

	t.Run("converts handler error to tool execution error", func(t *testing.T) {
		tool := NewTool("failing", "always fails", nil,
			func(ctx context.Context, args json.RawMessage) (*Result, error) {
				return nil, fmt.Errorf("backend unavailable")
			})

		_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeToolExecution}) {
			t.Errorf("error = %v, want tool execution error", err)
		}
	})

	t.Run("recovers handler panic", func(t *testing.T) {
		tool := NewTool("panicking", "always panics", nil,
			func(ctx context.Context, args json.RawMessage) (*Result, error) {
				panic("boom")
			})

		_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeToolExecution}) {
			t.Errorf("error = %v, want tool execution error", err)
		}
	})

	t.Run("passes through protocol errors from handlers", func(t *testing.T) {
		tool := NewTool("strict", "returns protocol error", nil,
			func(ctx context.Context, args json.RawMessage) (*Result, error) {
				return nil, protocol.NewUnauthorized("credentials required")
			})

		_, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
		if !errors.Is(err, &protocol.Error{Code: protocol.CodeUnauthorized}) {
			t.Errorf("error = %v, want unauthorized", err)
		}
	})

	t.Run("nil result becomes empty content", func(t *testing.T) {
		tool := NewTool("quiet", "returns nothing", nil,
			func(ctx context.Context, args json.RawMessage) (*Result, error) {
				return nil, nil
			})

		result, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result == nil || result.Content == nil {
			t.Error("expected empty content, got nil")
		}
	})
}
