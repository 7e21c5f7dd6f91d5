package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/schema"
)

// Handler is a tool's implementation. Arguments arrive as raw JSON
// already validated against the tool's schema.
type Handler func(ctx context.Context, args json.RawMessage) (*Result, error)

// Tool is a named, schema-described operation exposed for client
// invocation. Tools are immutable once created.
type Tool struct {
	name        string
	description string
	schema      *schema.Object
	handler     Handler
}

// NewTool creates a tool from its descriptor parts and handler.
func NewTool(name, description string, sch *schema.Object, handler Handler) *Tool {
	return &Tool{
		name:        name,
		description: description,
		schema:      sch,
		handler:     handler,
	}
}

// Name returns the tool's unique name.
func (t *Tool) Name() string { return t.name }

// Description returns the human-readable description.
func (t *Tool) Description() string { return t.description }

// Schema returns the declared argument schema.
func (t *Tool) Schema() *schema.Object { return t.schema }

// Execute validates args against the tool's schema and runs the
// handler. Validation failures become invalid-params errors naming the
// offending fields; handler errors and panics become tool execution
// errors. A failure here never escapes as anything but a *protocol.Error,
// so a misbehaving tool cannot take down the session.
func (t *Tool) Execute(ctx context.Context, args json.RawMessage) (result *Result, err error) {
	if t.schema != nil {
		if verr := t.schema.Validate(args); verr != nil {
			perr := protocol.NewInvalidParams(fmt.Sprintf("invalid arguments for tool %q: %v", t.name, verr))
			var errs schema.ValidationErrors
			if errors.As(verr, &errs) {
				perr = perr.WithData(map[string]any{"fields": errs.Fields()})
			}
			return nil, perr
		}
	}

	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = protocol.NewToolExecution(fmt.Sprintf("tool %q panicked: %v", t.name, r))
		}
	}()

	result, err = t.handler(ctx, args)
	if err != nil {
		var perr *protocol.Error
		if errors.As(err, &perr) {
			return nil, perr
		}
		return nil, protocol.NewToolExecution(fmt.Sprintf("tool %q failed: %v", t.name, err))
	}
	if result == nil {
		result = &Result{Content: []Content{}}
	}
	return result, nil
}
