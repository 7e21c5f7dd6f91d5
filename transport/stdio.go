package transport

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"sync"

	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/server"
)

// Stdio speaks newline-delimited JSON-RPC over stdin/stdout. One
// transport carries exactly one session, created when Serve starts and
// closed when the input stream ends.
type Stdio struct {
	in  io.Reader
	out io.Writer

	// maxLineBytes caps the scanner buffer. Zero means the default.
	maxLineBytes int

	mu sync.Mutex
}

// StdioOption configures a Stdio transport.
type StdioOption func(*Stdio)

// WithStdin sets a custom input reader.
func WithStdin(r io.Reader) StdioOption {
	return func(s *Stdio) {
		s.in = r
	}
}

// WithStdout sets a custom output writer.
func WithStdout(w io.Writer) StdioOption {
	return func(s *Stdio) {
		s.out = w
	}
}

// WithMaxLineBytes caps the size of a single incoming message line.
func WithMaxLineBytes(n int) StdioOption {
	return func(s *Stdio) {
		s.maxLineBytes = n
	}
}

// NewStdio creates a stdio transport bound to os.Stdin and os.Stdout.
func NewStdio(opts ...StdioOption) *Stdio {
	s := &Stdio{
		in:  os.Stdin,
		out: os.Stdout,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the transport address.
func (s *Stdio) Addr() string {
	return "stdio"
}

// Serve reads requests line by line until EOF or context cancellation.
// Malformed lines produce a parse error response; they never terminate
// the stream.
func (s *Stdio) Serve(ctx context.Context, handler Handler) error {
	sess := server.NewSession()
	defer sess.Close()

	scanner := bufio.NewScanner(s.in)
	if s.maxLineBytes > 0 {
		scanner.Buffer(make([]byte, 0, 64*1024), s.maxLineBytes)
	}

	lines := make(chan string)
	scanErr := make(chan error, 1)

	go func() {
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		if err := scanner.Err(); err != nil {
			scanErr <- err
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-scanErr:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil // EOF
			}
			s.handleLine(ctx, sess, handler, line)
		}
	}
}

// SendNotification sends a JSON-RPC notification to the client.
func (s *Stdio) SendNotification(method string, params any) error {
	notif, err := newNotification(method, params)
	if err != nil {
		return err
	}
	return s.writeJSON(notif)
}

func (s *Stdio) handleLine(ctx context.Context, sess *server.Session, handler Handler, line string) {
	var req protocol.Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.writeJSON(protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error())))
		return
	}

	ctx = server.ContextWithSession(ctx, sess)
	ctx = ContextWithNotificationSender(ctx, s)

	resp, err := handler.HandleRequest(ctx, &req)

	if req.IsNotification() {
		return
	}

	if err != nil {
		resp = errorResponse(req.ID, err)
	}

	if resp != nil {
		s.writeJSON(resp)
	}
}

func (s *Stdio) writeJSON(v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	if _, err := s.out.Write(data); err != nil {
		return err
	}
	_, err = s.out.Write([]byte("\n"))
	return err
}
