// Package testutil provides an in-memory client for testing servers
// built on this module.
//
// Example usage:
//
//	func TestMyServer(t *testing.T) {
//		srv := basicmcp.NewServer("test", "1.0.0")
//		srv.MustRegisterTool(myTool)
//
//		tc := testutil.NewTestClient(t, srv)
//		text, err := tc.CallTool("example", map[string]any{"input": "hi"})
//		if err != nil {
//			t.Fatal(err)
//		}
//		if text != "Processed: hi" {
//			t.Errorf("got %q", text)
//		}
//	}
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	basicmcp "github.com/dawsonlp/basic-mcp-server"
	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/server"
	"github.com/dawsonlp/basic-mcp-server/transport"
)

// TestClient drives a server in memory through the same request
// handler the transports use. All requests share one session, so the
// initialize handshake and state checks behave as they would on a
// live connection.
type TestClient struct {
	t       testing.TB
	handler transport.Handler
	sess    *server.Session

	mu    sync.Mutex
	reqID int64
}

// NewTestClient creates a client for srv and performs the initialize
// handshake. Use NewUninitializedClient to test pre-handshake
// behavior.
func NewTestClient(t testing.TB, srv *server.Server, opts ...basicmcp.ServeOption) *TestClient {
	t.Helper()

	tc := NewUninitializedClient(t, srv, opts...)
	if _, err := tc.Initialize(); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	tc.NotifyInitialized()
	return tc
}

// NewUninitializedClient creates a client without performing the
// handshake.
func NewUninitializedClient(t testing.TB, srv *server.Server, opts ...basicmcp.ServeOption) *TestClient {
	t.Helper()

	return &TestClient{
		t:       t,
		handler: basicmcp.NewHandler(srv, opts...),
		sess:    server.NewSession(),
	}
}

// Session returns the client's session.
func (tc *TestClient) Session() *server.Session {
	return tc.sess
}

func (tc *TestClient) nextID() json.RawMessage {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.reqID++
	return json.RawMessage(fmt.Sprintf("%d", tc.reqID))
}

// SendRequest sends one request and returns the response. A handler
// error is converted to an error response, as transports do.
func (tc *TestClient) SendRequest(method string, params any) (*protocol.Response, error) {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		ID:      tc.nextID(),
		Method:  method,
		Params:  paramsData,
	}

	ctx := server.ContextWithSession(context.Background(), tc.sess)
	resp, err := tc.handler.HandleRequest(ctx, req)
	if err != nil {
		var perr *protocol.Error
		if e, ok := err.(*protocol.Error); ok {
			perr = e
		} else {
			perr = protocol.NewInternalError(err.Error())
		}
		return protocol.NewErrorResponse(req.ID, perr), nil
	}
	return resp, nil
}

// SendNotification sends a notification. Notifications produce no
// response; a non-nil error means the handler rejected it.
func (tc *TestClient) SendNotification(method string, params any) error {
	tc.t.Helper()

	var paramsData json.RawMessage
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return fmt.Errorf("marshal params: %w", err)
		}
		paramsData = data
	}

	req := &protocol.Request{
		JSONRPC: protocol.JSONRPCVersion,
		Method:  method,
		Params:  paramsData,
	}

	ctx := server.ContextWithSession(context.Background(), tc.sess)
	_, err := tc.handler.HandleRequest(ctx, req)
	return err
}

// decodeResult round-trips a response result through JSON into out, so
// callers see the same shape a wire client would.
func decodeResult(resp *protocol.Response, out any) error {
	if resp.Error != nil {
		return resp.Error
	}
	data, err := json.Marshal(resp.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	return json.Unmarshal(data, out)
}

// Initialize performs the initialize request and returns its result.
func (tc *TestClient) Initialize() (map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodInitialize, map[string]any{
		"protocolVersion": protocol.Version,
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	})
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// NotifyInitialized sends the initialized notification.
func (tc *TestClient) NotifyInitialized() {
	tc.t.Helper()

	if err := tc.SendNotification(protocol.MethodInitialized, nil); err != nil {
		tc.t.Fatalf("initialized notification failed: %v", err)
	}
}

// Ping sends a ping request.
func (tc *TestClient) Ping() error {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodPing, nil)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return resp.Error
	}
	return nil
}

// ListTools returns the advertised tools in listing order.
func (tc *TestClient) ListTools() ([]map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodToolsList, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Tools []map[string]any `json:"tools"`
	}
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool and returns the text of its first content
// item.
func (tc *TestClient) CallTool(name string, args any) (string, error) {
	tc.t.Helper()

	resp, err := tc.CallToolRaw(name, args)
	if err != nil {
		return "", err
	}

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	if err := decodeResult(resp, &result); err != nil {
		return "", err
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("empty content array")
	}
	return result.Content[0].Text, nil
}

// CallToolRaw invokes a tool and returns the raw response.
func (tc *TestClient) CallToolRaw(name string, args any) (*protocol.Response, error) {
	tc.t.Helper()

	return tc.SendRequest(protocol.MethodToolsCall, map[string]any{
		"name":      name,
		"arguments": args,
	})
}

// ListResources returns the advertised resources.
func (tc *TestClient) ListResources() ([]map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodResourcesList, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Resources []map[string]any `json:"resources"`
	}
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result.Resources, nil
}

// ReadResource reads a resource and returns its text content.
func (tc *TestClient) ReadResource(uri string) (string, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodResourcesRead, map[string]any{"uri": uri})
	if err != nil {
		return "", err
	}

	var result struct {
		Contents []struct {
			Text string `json:"text"`
		} `json:"contents"`
	}
	if err := decodeResult(resp, &result); err != nil {
		return "", err
	}
	if len(result.Contents) == 0 {
		return "", fmt.Errorf("empty contents array")
	}
	return result.Contents[0].Text, nil
}

// ListPrompts returns the advertised prompts.
func (tc *TestClient) ListPrompts() ([]map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodPromptsList, nil)
	if err != nil {
		return nil, err
	}

	var result struct {
		Prompts []map[string]any `json:"prompts"`
	}
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result.Prompts, nil
}

// GetPrompt resolves a prompt with the given arguments.
func (tc *TestClient) GetPrompt(name string, args map[string]string) (map[string]any, error) {
	tc.t.Helper()

	resp, err := tc.SendRequest(protocol.MethodPromptsGet, map[string]any{
		"name":      name,
		"arguments": args,
	})
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := decodeResult(resp, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertToolExists fails the test when no tool with the given name is
// advertised.
func (tc *TestClient) AssertToolExists(name string) {
	tc.t.Helper()

	tools, err := tc.ListTools()
	if err != nil {
		tc.t.Fatalf("ListTools failed: %v", err)
	}
	for _, tool := range tools {
		if tool["name"] == name {
			return
		}
	}
	tc.t.Errorf("tool %q not found", name)
}
