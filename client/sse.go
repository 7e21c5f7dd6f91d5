package client

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// SSETransport talks to a server over its Server-Sent Events surface:
// it holds the GET /sse event stream open and posts requests to the
// per-session endpoint the server announced, correlating responses to
// requests by ID.
type SSETransport struct {
	baseURL    string
	httpClient *http.Client
	header     http.Header

	endpoint string
	cancel   context.CancelFunc

	mu      sync.Mutex
	pending map[string]chan *protocol.Response
	closed  bool

	// readErr holds the first event stream failure; all pending calls
	// are failed with it.
	readErr error
}

// SSEOption configures the SSE transport.
type SSEOption func(*SSETransport)

// WithHTTPClient sets the HTTP client used for both the stream and
// posted requests.
func WithHTTPClient(c *http.Client) SSEOption {
	return func(t *SSETransport) {
		t.httpClient = c
	}
}

// WithHeader adds a header to every request, for credentials such as
// X-API-Key.
func WithHeader(key, value string) SSEOption {
	return func(t *SSETransport) {
		t.header.Set(key, value)
	}
}

// NewSSETransport connects to the server at baseURL and waits for the
// session endpoint announcement.
func NewSSETransport(ctx context.Context, baseURL string, opts ...SSEOption) (*SSETransport, error) {
	t := &SSETransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
		header:     make(http.Header),
		pending:    make(map[string]chan *protocol.Response),
	}

	for _, opt := range opts {
		opt(t)
	}

	streamCtx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel

	req, err := http.NewRequestWithContext(streamCtx, http.MethodGet, t.baseURL+"/sse", nil)
	if err != nil {
		cancel()
		return nil, err
	}
	for k, v := range t.header {
		req.Header[k] = v
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open event stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("open event stream: status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	endpoint, err := readEndpointEvent(ctx, scanner)
	if err != nil {
		resp.Body.Close()
		cancel()
		return nil, err
	}
	t.endpoint = endpoint

	go t.readLoop(resp, scanner)

	return t, nil
}

// readEndpointEvent consumes events until the server announces the
// session endpoint.
func readEndpointEvent(ctx context.Context, scanner *bufio.Scanner) (string, error) {
	var event, data string
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if event == "endpoint" && data != "" {
				return data, nil
			}
			event, data = "", ""
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("event stream: %w", err)
	}
	return "", fmt.Errorf("event stream closed before endpoint event")
}

// readLoop dispatches message events to waiting calls.
func (t *SSETransport) readLoop(resp *http.Response, scanner *bufio.Scanner) {
	defer resp.Body.Close()

	var data string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "":
			if data != "" {
				t.dispatch([]byte(data))
				data = ""
			}
		}
	}

	err := scanner.Err()
	if err == nil {
		err = fmt.Errorf("event stream closed")
	}
	t.failPending(err)
}

func (t *SSETransport) dispatch(data []byte) {
	var resp protocol.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return
	}

	// Responses to malformed requests carry no ID; nothing waits for
	// them.
	key := string(resp.ID)
	if key == "" {
		return
	}

	t.mu.Lock()
	ch, ok := t.pending[key]
	if ok {
		delete(t.pending, key)
	}
	t.mu.Unlock()

	if ok {
		ch <- &resp
	}
}

func (t *SSETransport) failPending(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.readErr = err
	for key, ch := range t.pending {
		close(ch)
		delete(t.pending, key)
	}
}

// Send posts one request to the session endpoint and waits for the
// response on the event stream.
func (t *SSETransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil, fmt.Errorf("transport is closed")
	}
	if t.readErr != nil {
		err := t.readErr
		t.mu.Unlock()
		return nil, err
	}

	var ch chan *protocol.Response
	key := string(req.ID)
	if key != "" {
		ch = make(chan *protocol.Response, 1)
		t.pending[key] = ch
	}
	t.mu.Unlock()

	body, err := json.Marshal(req)
	if err != nil {
		t.abandon(key)
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+t.endpoint, bytes.NewReader(body))
	if err != nil {
		t.abandon(key)
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range t.header {
		httpReq.Header[k] = v
	}

	httpResp, err := t.httpClient.Do(httpReq)
	if err != nil {
		t.abandon(key)
		return nil, err
	}
	httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusAccepted {
		t.abandon(key)
		return nil, fmt.Errorf("post request: status %d", httpResp.StatusCode)
	}

	if ch == nil {
		return nil, nil // notification
	}

	select {
	case <-ctx.Done():
		t.abandon(key)
		return nil, ctx.Err()
	case resp, ok := <-ch:
		if !ok {
			t.mu.Lock()
			err := t.readErr
			t.mu.Unlock()
			return nil, err
		}
		return resp, nil
	}
}

func (t *SSETransport) abandon(key string) {
	if key == "" {
		return
	}
	t.mu.Lock()
	delete(t.pending, key)
	t.mu.Unlock()
}

// Close tears down the event stream.
func (t *SSETransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.cancel()
	return nil
}
