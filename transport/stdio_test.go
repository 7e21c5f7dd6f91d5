package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/server"
)

func TestNewStdio(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		tr := NewStdio()
		if tr == nil {
			t.Fatal("expected transport to be created")
		}
		if tr.Addr() != "stdio" {
			t.Errorf("Addr() = %q, want %q", tr.Addr(), "stdio")
		}
	})

	t.Run("custom streams", func(t *testing.T) {
		in := &bytes.Buffer{}
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		if tr.in != in {
			t.Error("expected custom stdin to be used")
		}
		if tr.out != out {
			t.Error("expected custom stdout to be used")
		}
	})
}

func TestStdio_Serve(t *testing.T) {
	t.Run("processes single request", func(t *testing.T) {
		req := protocol.Request{
			JSONRPC: protocol.JSONRPCVersion,
			ID:      json.RawMessage(`1`),
			Method:  protocol.MethodPing,
		}
		reqBytes, _ := json.Marshal(req)

		in := bytes.NewBuffer(append(reqBytes, '\n'))
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return protocol.NewResponse(req.ID, "success"), nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		// Serve exits when stdin is exhausted.
		_ = tr.Serve(ctx, handler)

		output := out.String()
		if !strings.Contains(output, `"result":"success"`) {
			t.Errorf("output = %q, expected to contain success result", output)
		}
	})

	t.Run("attaches one session for the stream", func(t *testing.T) {
		input := `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"ping"}` + "\n"
		in := bytes.NewBufferString(input)
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		var ids []string
		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			sess := server.SessionFromContext(ctx)
			if sess == nil {
				t.Fatal("expected session in context")
			}
			ids = append(ids, sess.ID())
			return protocol.NewResponse(req.ID, "ok"), nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = tr.Serve(ctx, handler)

		if len(ids) != 2 {
			t.Fatalf("handler called %d times, want 2", len(ids))
		}
		if ids[0] != ids[1] {
			t.Errorf("requests saw different sessions: %q and %q", ids[0], ids[1])
		}
	})

	t.Run("returns parse error for invalid JSON", func(t *testing.T) {
		in := bytes.NewBufferString("{invalid json}\n")
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			t.Error("handler should not be called for invalid JSON")
			return nil, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = tr.Serve(ctx, handler)

		var resp protocol.Response
		if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response output %q: %v", out.String(), err)
		}
		if resp.Error == nil || resp.Error.Code != protocol.CodeParseError {
			t.Errorf("error = %+v, want parse error", resp.Error)
		}
	})

	t.Run("handler errors become error responses", func(t *testing.T) {
		in := bytes.NewBufferString(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}` + "\n")
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return nil, protocol.NewNotInitialized()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = tr.Serve(ctx, handler)

		var resp protocol.Response
		if err := json.Unmarshal(out.Bytes(), &resp); err != nil {
			t.Fatalf("invalid response output %q: %v", out.String(), err)
		}
		if resp.Error == nil || resp.Error.Code != protocol.CodeNotInitialized {
			t.Errorf("error = %+v, want not initialized", resp.Error)
		}
		if string(resp.ID) != "7" {
			t.Errorf("response ID = %s, want 7", resp.ID)
		}
	})

	t.Run("stops on context cancellation", func(t *testing.T) {
		in := &blockingReader{}
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			return protocol.NewResponse(req.ID, "ok"), nil
		})

		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- tr.Serve(ctx, handler)
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		select {
		case err := <-done:
			if err != context.Canceled {
				t.Errorf("expected context.Canceled, got %v", err)
			}
		case <-time.After(100 * time.Millisecond):
			t.Error("Serve did not stop after context cancellation")
		}
	})

	t.Run("notifications produce no output", func(t *testing.T) {
		in := bytes.NewBufferString(`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n")
		out := &bytes.Buffer{}

		tr := NewStdio(WithStdin(in), WithStdout(out))

		handlerCalled := false
		handler := HandlerFunc(func(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
			handlerCalled = true
			return nil, nil
		})

		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		_ = tr.Serve(ctx, handler)

		if !handlerCalled {
			t.Error("handler should be called for notifications")
		}
		if out.Len() > 0 {
			t.Errorf("expected no output for notification, got %q", out.String())
		}
	})
}

func TestStdio_SendNotification(t *testing.T) {
	out := &bytes.Buffer{}
	tr := NewStdio(WithStdin(&bytes.Buffer{}), WithStdout(out))

	if err := tr.SendNotification("notifications/message", map[string]string{"level": "info"}); err != nil {
		t.Fatalf("SendNotification() error = %v", err)
	}

	var notif protocol.Notification
	if err := json.Unmarshal(out.Bytes(), &notif); err != nil {
		t.Fatalf("invalid notification output %q: %v", out.String(), err)
	}
	if notif.Method != "notifications/message" {
		t.Errorf("method = %q, want notifications/message", notif.Method)
	}
	if notif.JSONRPC != protocol.JSONRPCVersion {
		t.Errorf("jsonrpc = %q, want %q", notif.JSONRPC, protocol.JSONRPCVersion)
	}
}

// blockingReader blocks until the test goroutine is abandoned.
type blockingReader struct{}

func (r *blockingReader) Read(p []byte) (n int, err error) {
	select {}
}
