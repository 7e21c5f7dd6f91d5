package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/server"
)

// SSE serves the protocol over HTTP with Server-Sent Events. A client
// opens GET /sse, receives an "endpoint" event naming the POST URL for
// its session, and posts requests there; responses stream back down
// the event channel. The event stream's lifetime is the session's
// lifetime.
type SSE struct {
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	corsConfig   *CORSConfig

	shutdown *ShutdownManager

	mu         sync.RWMutex
	listenAddr string
	server     *http.Server
	sessions   map[string]*sseSession
}

// sseSession pairs a protocol session with the event channel of the
// client that opened it.
type sseSession struct {
	sess   *server.Session
	events chan []byte
}

// SSEOption configures the SSE transport.
type SSEOption func(*SSE)

// WithSSEReadTimeout sets the HTTP read timeout.
func WithSSEReadTimeout(d time.Duration) SSEOption {
	return func(s *SSE) {
		s.readTimeout = d
	}
}

// WithSSECORS enables CORS with the given configuration.
func WithSSECORS(config CORSConfig) SSEOption {
	return func(s *SSE) {
		s.corsConfig = &config
	}
}

// WithSSEShutdown sets the graceful shutdown configuration.
func WithSSEShutdown(config ShutdownConfig) SSEOption {
	return func(s *SSE) {
		s.shutdown = NewShutdownManager(config)
	}
}

// NewSSE creates an SSE transport listening on addr.
func NewSSE(addr string, opts ...SSEOption) *SSE {
	s := &SSE{
		addr:        addr,
		readTimeout: 30 * time.Second,
		// The event stream must outlive the write timeout, so only
		// reads are bounded by default.
		writeTimeout: 0,
		sessions:     make(map[string]*sseSession),
		shutdown:     NewShutdownManager(DefaultShutdownConfig()),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Addr returns the configured address.
func (s *SSE) Addr() string {
	return s.addr
}

// ListenAddr returns the actual address the server is listening on,
// available once Serve has bound the listener.
func (s *SSE) ListenAddr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listenAddr
}

// Serve starts the HTTP server and blocks until ctx is canceled or the
// server fails.
func (s *SSE) Serve(ctx context.Context, handler Handler) error {
	router := s.router(handler)

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	s.mu.Lock()
	s.listenAddr = listener.Addr().String()
	s.server = &http.Server{
		Handler:      router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdown.Timeout())
		defer cancel()
		_ = s.shutdown.Shutdown(shutdownCtx)
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *SSE) router(handler Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Get("/sse", func(w http.ResponseWriter, r *http.Request) {
		s.handleEventStream(w, r)
	})

	r.Post("/messages", func(w http.ResponseWriter, r *http.Request) {
		s.handleMessage(w, r, handler)
	})

	if s.corsConfig != nil {
		return CORSHandler(*s.corsConfig, r)
	}
	return r
}

// handleEventStream opens the session's event channel. The session is
// created here and closed when the client disconnects.
func (s *SSE) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	if s.shutdown.IsDraining() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	sess := server.NewSession()
	entry := &sseSession{
		sess:   sess,
		events: make(chan []byte, 16),
	}

	s.mu.Lock()
	s.sessions[sess.ID()] = entry
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sessions, sess.ID())
		s.mu.Unlock()
		sess.Close()
	}()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Tell the client where to post its requests.
	fmt.Fprintf(w, "event: endpoint\ndata: /messages?sessionId=%s\n\n", sess.ID())
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-entry.events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: message\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// handleMessage dispatches one posted request to the handler and pushes
// the response down the session's event stream. The POST itself only
// acknowledges receipt.
func (s *SSE) handleMessage(w http.ResponseWriter, r *http.Request, handler Handler) {
	if !s.shutdown.TrackRequest() {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	defer s.shutdown.CompleteRequest()

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		http.Error(w, "missing sessionId", http.StatusBadRequest)
		return
	}

	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, "unknown session", http.StatusNotFound)
		return
	}

	var req protocol.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		entry.push(protocol.NewErrorResponse(nil, protocol.NewParseError(err.Error())))
		w.WriteHeader(http.StatusAccepted)
		return
	}

	ctx := server.ContextWithSession(r.Context(), entry.sess)
	ctx = protocol.ContextWithRequestMeta(ctx, metaFromHeaders(r.Header))
	ctx = ContextWithNotificationSender(ctx, entry)

	resp, err := handler.HandleRequest(ctx, &req)

	if req.IsNotification() {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if err != nil {
		resp = errorResponse(req.ID, err)
	}

	if resp != nil {
		entry.push(resp)
	}
	w.WriteHeader(http.StatusAccepted)
}

// push serializes v onto the session's event channel, dropping the
// message if the client has stopped draining its stream.
func (e *sseSession) push(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case e.events <- data:
	default:
	}
}

// SendNotification implements NotificationSender over the event stream.
func (e *sseSession) SendNotification(method string, params any) error {
	notif, err := newNotification(method, params)
	if err != nil {
		return err
	}
	e.push(notif)
	return nil
}

// metaFromHeaders flattens HTTP headers into request metadata so
// middleware can see credentials and tracing headers.
func metaFromHeaders(h http.Header) protocol.RequestMeta {
	meta := make(protocol.RequestMeta, len(h))
	for key, values := range h {
		if len(values) > 0 {
			meta[strings.ToLower(key)] = values[0]
		}
	}
	return meta
}
