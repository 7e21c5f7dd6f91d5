package transport

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/dawsonlp/basic-mcp-server/protocol"
)

// Handler processes incoming protocol requests.
type Handler interface {
	HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, req *protocol.Request) (*protocol.Response, error)

// HandleRequest calls f(ctx, req).
func (f HandlerFunc) HandleRequest(ctx context.Context, req *protocol.Request) (*protocol.Response, error) {
	return f(ctx, req)
}

// Transport defines the communication layer interface.
type Transport interface {
	// Serve starts the transport, blocking until ctx is canceled or an
	// error occurs.
	Serve(ctx context.Context, handler Handler) error

	// Addr returns the transport's address description.
	Addr() string
}

// NotificationSender can push JSON-RPC notifications to the client of
// the current connection.
type NotificationSender interface {
	SendNotification(method string, params any) error
}

type notificationSenderKey struct{}

// ContextWithNotificationSender returns a context with the notification
// sender attached.
func ContextWithNotificationSender(ctx context.Context, sender NotificationSender) context.Context {
	return context.WithValue(ctx, notificationSenderKey{}, sender)
}

// NotificationSenderFromContext returns the notification sender from
// context, or nil if none.
func NotificationSenderFromContext(ctx context.Context) NotificationSender {
	sender, _ := ctx.Value(notificationSenderKey{}).(NotificationSender)
	return sender
}

func newNotification(method string, params any) (*protocol.Notification, error) {
	paramsData, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &protocol.Notification{
		JSONRPC: protocol.JSONRPCVersion,
		Method:  method,
		Params:  paramsData,
	}, nil
}

// errorResponse turns a handler error into an error response. Typed
// protocol errors keep their code; anything else becomes an internal
// error.
func errorResponse(id json.RawMessage, err error) *protocol.Response {
	var perr *protocol.Error
	if errors.As(err, &perr) {
		return protocol.NewErrorResponse(id, perr)
	}
	return protocol.NewErrorResponse(id, protocol.NewInternalError(err.Error()))
}
