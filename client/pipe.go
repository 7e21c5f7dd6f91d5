package client

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// PipeTransport speaks newline-delimited JSON-RPC over a reader/writer
// pair, matching the server's stdio transport. It fits tests that run
// the server over in-process pipes and clients that own the server
// process's stdin/stdout.
type PipeTransport struct {
	out io.Writer

	writeMu sync.Mutex

	mu      sync.Mutex
	pending map[string]chan *protocol.Response
	readErr error
	closed  bool
}

// NewPipeTransport creates a transport reading responses from r and
// writing requests to w.
func NewPipeTransport(r io.Reader, w io.Writer) *PipeTransport {
	t := &PipeTransport{
		out:     w,
		pending: make(map[string]chan *protocol.Response),
	}
	go t.readLoop(r)
	return t
}

func (t *PipeTransport) readLoop(r io.Reader) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		var resp protocol.Response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			continue
		}

		key := string(resp.ID)
		if key == "" {
			continue
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

	err := scanner.Err()
	if err == nil {
		err = io.EOF
	}

	t.mu.Lock()
	t.readErr = err
	for key, ch := range t.pending {
		close(ch)
		delete(t.pending, key)
	}
	t.mu.Unlock()
}

// Send writes one request and waits for its response line.
func (t *PipeTransport) Send(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
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

	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	t.writeMu.Lock()
	_, err = t.out.Write(append(data, '\n'))
	t.writeMu.Unlock()
	if err != nil {
		return nil, err
	}

	if ch == nil {
		return nil, nil // notification
	}

	select {
	case <-ctx.Done():
		t.mu.Lock()
		delete(t.pending, key)
		t.mu.Unlock()
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

// Close marks the transport closed. The caller owns the underlying
// reader and writer.
func (t *PipeTransport) Close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
