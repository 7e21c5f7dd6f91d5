package server

import "context"

// PromptArgument describes one argument a prompt accepts.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

// PromptMessage is one message of a rendered prompt.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// PromptResult is a rendered prompt.
type PromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// GetFunc renders a prompt for the given arguments.
type GetFunc func(ctx context.Context, args map[string]string) (*PromptResult, error)

// Prompt is a named prompt template. The template registers none; the
// type exists so embedders can add their own alongside tools.
type Prompt struct {
	name        string
	description string
	arguments   []PromptArgument
	get         GetFunc
}

// NewPrompt creates a prompt with the given descriptor and renderer.
func NewPrompt(name, description string, arguments []PromptArgument, get GetFunc) *Prompt {
	return &Prompt{
		name:        name,
		description: description,
		arguments:   arguments,
		get:         get,
	}
}

// Name returns the prompt's unique name.
func (p *Prompt) Name() string { return p.name }

// Description returns the human-readable description.
func (p *Prompt) Description() string { return p.description }

// Arguments returns the declared arguments.
func (p *Prompt) Arguments() []PromptArgument { return p.arguments }

// Get renders the prompt.
func (p *Prompt) Get(ctx context.Context, args map[string]string) (*PromptResult, error) {
	return p.get(ctx, args)
}
