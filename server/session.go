package server

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// State is the lifecycle state of a session.
type State int

const (
	// StateUninitialized accepts only the initialize request.
	StateUninitialized State = iota
	// StateReady serves listing and invocation requests.
	StateReady
	// StateClosed is terminal; no further responses are sent.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ClientInfo identifies the client that opened the session.
type ClientInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities declares which content kinds the client can
// receive.
type ClientCapabilities struct {
	ReceiveText  bool `json:"receiveText,omitempty"`
	ReceiveImage bool `json:"receiveImage,omitempty"`
}

// Session is the stateful protocol conversation bound to one client
// connection. A session exclusively owns its connection's message
// streams; the transport creates one session per accepted connection
// and closes it when the connection ends.
type Session struct {
	id string

	mu     sync.RWMutex
	state  State
	client ClientInfo
	caps   ClientCapabilities
}

// NewSession creates a session in the uninitialized state with a
// fresh unique identifier.
func NewSession() *Session {
	return &Session{id: uuid.NewString()}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Initialize transitions the session from uninitialized to ready,
// recording the client's identity and capabilities. It fails if the
// handshake already happened or the session is closed; a failed
// attempt does not change state.
func (s *Session) Initialize(client ClientInfo, caps ClientCapabilities) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateReady:
		return protocol.NewInvalidRequest("session already initialized")
	case StateClosed:
		return protocol.NewInvalidRequest("session is closed")
	}

	s.client = client
	s.caps = caps
	s.state = StateReady
	return nil
}

// CheckReady returns a not-initialized error unless the session has
// completed the handshake. Called before dispatching any request other
// than initialize or ping.
func (s *Session) CheckReady() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.state {
	case StateUninitialized:
		return protocol.NewNotInitialized()
	case StateClosed:
		return protocol.NewInvalidRequest("session is closed")
	}
	return nil
}

// Close moves the session to its terminal state. Buffered but
// unanswered requests are dropped by the transport; Close is
// idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateClosed
}

// Closed reports whether the session reached its terminal state.
func (s *Session) Closed() bool {
	return s.State() == StateClosed
}

// Client returns the client identity recorded during initialize.
func (s *Session) Client() ClientInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client
}

// Capabilities returns the client capabilities recorded during
// initialize.
func (s *Session) Capabilities() ClientCapabilities {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.caps
}

// sessionKey is the context key for the session.
type sessionKey struct{}

// ContextWithSession returns a context with the session attached.
func ContextWithSession(ctx context.Context, session *Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, session)
}

// SessionFromContext returns the session from context, or nil if none.
func SessionFromContext(ctx context.Context) *Session {
	session, _ := ctx.Value(sessionKey{}).(*Session)
	return session
}
