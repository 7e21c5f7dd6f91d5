package server

import (
	"errors"
	"fmt"
	"sync"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// Info contains server metadata exposed to clients.
type Info struct {
	Name         string
	Version      string
	Capabilities Capabilities
}

// Capabilities declares which protocol surfaces the server supports.
type Capabilities struct {
	Tools     bool
	Resources bool
	Prompts   bool
}

// Manifest is the server identity returned from initialize.
type Manifest struct {
	Name            string       `json:"name"`
	Version         string       `json:"version"`
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
}

// ErrDuplicateResource is returned when registering a resource whose
// URI is already taken.
var ErrDuplicateResource = errors.New("resource already registered")

// ErrDuplicatePrompt is returned when registering a prompt whose name
// is already taken.
var ErrDuplicatePrompt = errors.New("prompt already registered")

// Server is one MCP server instance: identity plus the registered
// tools, resources, and prompts. All registration happens during
// bootstrap; afterward the server is read-only and shared by every
// session without locking concerns.
type Server struct {
	info     Info
	registry *Registry

	mu            sync.RWMutex
	resourceOrder []string
	resources     map[string]*Resource
	promptOrder   []string
	prompts       map[string]*Prompt
}

// New creates a server with the given info and an empty registry.
func New(info Info) *Server {
	return &Server{
		info:      info,
		registry:  NewRegistry(),
		resources: make(map[string]*Resource),
		prompts:   make(map[string]*Prompt),
	}
}

// Info returns the server metadata.
func (s *Server) Info() Info { return s.info }

// Registry returns the server's tool registry.
func (s *Server) Registry() *Registry { return s.registry }

// RegisterTool adds a tool to the registry.
func (s *Server) RegisterTool(t *Tool) error {
	return s.registry.Register(t)
}

// MustRegisterTool adds a tool and panics on a duplicate name. For use
// in bootstrap code where a duplicate is a programming error.
func (s *Server) MustRegisterTool(t *Tool) {
	if err := s.registry.Register(t); err != nil {
		panic(err)
	}
}

// Manifest returns the identity payload for the initialize response.
func (s *Server) Manifest() Manifest {
	return Manifest{
		Name:            s.info.Name,
		Version:         s.info.Version,
		ProtocolVersion: protocol.Version,
		Capabilities:    s.info.Capabilities,
	}
}

// RegisterResource adds a resource, failing on a duplicate URI.
func (s *Server) RegisterResource(r *Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.resources[r.uri]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateResource, r.uri)
	}
	s.resources[r.uri] = r
	s.resourceOrder = append(s.resourceOrder, r.uri)
	return nil
}

// MustRegisterResource adds a resource and panics on a duplicate URI.
func (s *Server) MustRegisterResource(r *Resource) {
	if err := s.RegisterResource(r); err != nil {
		panic(err)
	}
}

// Resources returns registered resources in registration order.
func (s *Server) Resources() []*Resource {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Resource, 0, len(s.resourceOrder))
	for _, uri := range s.resourceOrder {
		out = append(out, s.resources[uri])
	}
	return out
}

// GetResource looks up a resource by URI.
func (s *Server) GetResource(uri string) (*Resource, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.resources[uri]
	return r, ok
}

// RegisterPrompt adds a prompt, failing on a duplicate name.
func (s *Server) RegisterPrompt(p *Prompt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.prompts[p.name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicatePrompt, p.name)
	}
	s.prompts[p.name] = p
	s.promptOrder = append(s.promptOrder, p.name)
	return nil
}

// MustRegisterPrompt adds a prompt and panics on a duplicate name.
func (s *Server) MustRegisterPrompt(p *Prompt) {
	if err := s.RegisterPrompt(p); err != nil {
		panic(err)
	}
}

// Prompts returns registered prompts in registration order.
func (s *Server) Prompts() []*Prompt {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Prompt, 0, len(s.promptOrder))
	for _, name := range s.promptOrder {
		out = append(out, s.prompts[name])
	}
	return out
}

// GetPrompt looks up a prompt by name.
func (s *Server) GetPrompt(name string) (*Prompt, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.prompts[name]
	return p, ok
}
