package basicmcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dawsonlp/basic-mcp-server/middleware"
	"github.com/dawsonlp/basic-mcp-server/protocol"
	"github.com/dawsonlp/basic-mcp-server/schema"
	"github.com/dawsonlp/basic-mcp-server/server"
	"github.com/dawsonlp/basic-mcp-server/transport"
)

// methodEntry is one row of the dispatch table: a handler plus
// whether it requires a ready session.
type methodEntry struct {
	fn         middleware.HandlerFunc
	needsReady bool
}

// requestHandler serves one session's protocol lifecycle: it maps
// request methods to handlers through a finite dispatch table, checked
// against the session state before dispatch. Every failure becomes an
// error response correlated to the request; nothing escapes to
// terminate the session except transport-level failures, which the
// transports own.
type requestHandler struct {
	srv        *server.Server
	methods    map[string]methodEntry
	handleFunc middleware.HandlerFunc
}

// NewHandler builds the request handler for a server, wrapping it in
// the given ServeOptions' middleware. Transports attach a session to
// the context before calling HandleRequest.
func NewHandler(srv *server.Server, opts ...ServeOption) transport.Handler {
	options := &serveOptions{}
	for _, opt := range opts {
		opt(options)
	}

	h := &requestHandler{srv: srv}
	h.methods = map[string]methodEntry{
		protocol.MethodInitialize:    {fn: h.handleInitialize},
		protocol.MethodInitialized:   {fn: h.handleInitialized},
		protocol.MethodPing:          {fn: h.handlePing},
		protocol.MethodToolsList:     {fn: h.handleToolsList, needsReady: true},
		protocol.MethodToolsCall:     {fn: h.handleToolsCall, needsReady: true},
		protocol.MethodResourcesList: {fn: h.handleResourcesList, needsReady: true},
		protocol.MethodResourcesRead: {fn: h.handleResourcesRead, needsReady: true},
		protocol.MethodPromptsList:   {fn: h.handlePromptsList, needsReady: true},
		protocol.MethodPromptsGet:    {fn: h.handlePromptsGet, needsReady: true},
	}

	base := middleware.HandlerFunc(h.dispatch)
	if len(options.middleware) > 0 {
		h.handleFunc = middleware.Chain(options.middleware...)(base)
	} else {
		h.handleFunc = base
	}
	return h
}

// HandleRequest implements transport.Handler.
func (h *requestHandler) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return h.handleFunc(ctx, req)
}

func (h *requestHandler) dispatch(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	sess := server.SessionFromContext(ctx)
	if sess == nil {
		return nil, protocol.NewInternalError("no session bound to request")
	}

	entry, ok := h.methods[req.Method]
	if !ok {
		if req.IsNotification() {
			// Unknown notifications are ignored, per JSON-RPC.
			return nil, nil
		}
		return nil, protocol.NewMethodNotFound(req.Method)
	}

	if entry.needsReady {
		if err := sess.CheckReady(); err != nil {
			return nil, err
		}
	}

	return entry.fn(ctx, req)
}

func (h *requestHandler) handleInitialize(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		ProtocolVersion string                    `json:"protocolVersion"`
		ClientInfo      server.ClientInfo         `json:"clientInfo"`
		Capabilities    server.ClientCapabilities `json:"capabilities"`
	}
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, protocol.NewInvalidParams(err.Error())
		}
	}

	sess := server.SessionFromContext(ctx)
	if err := sess.Initialize(params.ClientInfo, params.Capabilities); err != nil {
		return nil, asProtocolError(err)
	}

	manifest := h.srv.Manifest()
	capabilities := make(map[string]any)
	if manifest.Capabilities.Tools {
		capabilities["tools"] = map[string]any{}
	}
	if manifest.Capabilities.Resources {
		capabilities["resources"] = map[string]any{}
	}
	if manifest.Capabilities.Prompts {
		capabilities["prompts"] = map[string]any{}
	}

	result := map[string]any{
		"protocolVersion": manifest.ProtocolVersion,
		"serverInfo": map[string]any{
			"name":    manifest.Name,
			"version": manifest.Version,
		},
		"capabilities": capabilities,
	}
	return protocol.NewResponse(req.ID, result), nil
}

func (h *requestHandler) handleInitialized(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	// Acknowledgment notification; nothing to reply.
	return nil, nil
}

func (h *requestHandler) handlePing(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return protocol.NewResponse(req.ID, map[string]any{}), nil
}

func (h *requestHandler) handleToolsList(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	tools := h.srv.Registry().List()

	toolList := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		sch := t.Schema()
		if sch == nil {
			sch = schema.NewObject()
		}
		toolList = append(toolList, map[string]any{
			"name":        t.Name(),
			"description": t.Description(),
			"inputSchema": sch,
		})
	}

	return protocol.NewResponse(req.ID, map[string]any{"tools": toolList}), nil
}

func (h *requestHandler) handleToolsCall(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	tool, ok := h.srv.Registry().Get(params.Name)
	if !ok {
		return nil, protocol.NewToolNotFound("tool not found: " + params.Name)
	}

	result, err := tool.Execute(ctx, params.Arguments)
	if err != nil {
		return nil, asProtocolError(err)
	}

	return protocol.NewResponse(req.ID, result), nil
}

func (h *requestHandler) handleResourcesList(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	resources := h.srv.Resources()

	resourceList := make([]map[string]any, 0, len(resources))
	for _, r := range resources {
		item := map[string]any{
			"uri":  r.URI(),
			"name": r.Name(),
		}
		if r.Description() != "" {
			item["description"] = r.Description()
		}
		if r.MimeType() != "" {
			item["mimeType"] = r.MimeType()
		}
		resourceList = append(resourceList, item)
	}

	return protocol.NewResponse(req.ID, map[string]any{"resources": resourceList}), nil
}

func (h *requestHandler) handleResourcesRead(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		URI string `json:"uri"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	resource, ok := h.srv.GetResource(params.URI)
	if !ok {
		return nil, protocol.NewNotFound("resource not found: " + params.URI)
	}

	content, err := resource.Read(ctx)
	if err != nil {
		return nil, asProtocolError(err)
	}

	return protocol.NewResponse(req.ID, map[string]any{
		"contents": []*server.ResourceContent{content},
	}), nil
}

func (h *requestHandler) handlePromptsList(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	prompts := h.srv.Prompts()

	promptList := make([]map[string]any, 0, len(prompts))
	for _, p := range prompts {
		item := map[string]any{"name": p.Name()}
		if p.Description() != "" {
			item["description"] = p.Description()
		}
		if args := p.Arguments(); len(args) > 0 {
			item["arguments"] = args
		}
		promptList = append(promptList, item)
	}

	return protocol.NewResponse(req.ID, map[string]any{"prompts": promptList}), nil
}

func (h *requestHandler) handlePromptsGet(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	var params struct {
		Name      string            `json:"name"`
		Arguments map[string]string `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return nil, protocol.NewInvalidParams(err.Error())
	}

	prompt, ok := h.srv.GetPrompt(params.Name)
	if !ok {
		return nil, protocol.NewNotFound("prompt not found: " + params.Name)
	}

	result, err := prompt.Get(ctx, params.Arguments)
	if err != nil {
		return nil, asProtocolError(err)
	}

	response := map[string]any{"messages": result.Messages}
	if result.Description != "" {
		response["description"] = result.Description
	}
	return protocol.NewResponse(req.ID, response), nil
}

// asProtocolError preserves typed protocol errors and wraps anything
// else as an internal error.
func asProtocolError(err error) *protocol.Error {
	var perr *protocol.Error
	if errors.As(err, &perr) {
		return perr
	}
	return protocol.NewInternalError(err.Error())
}
