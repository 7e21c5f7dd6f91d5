package protocol

import "fmt"

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Server-side error codes for the session protocol.
const (
	CodeToolExecution  = -32000
	CodeNotFound       = -32001
	CodeNotInitialized = -32002
	CodeRateLimited    = -32003
	CodeUnauthorized   = -32004
)

// Error is a JSON-RPC 2.0 error. It implements the error interface so
// handlers can return it directly; transports serialize it into the
// error member of the response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("mcp: %s (code: %d)", e.Message, e.Code)
}

// Is matches errors by code so errors.Is works across wrapped values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithData returns a copy of the error with additional data attached.
func (e *Error) WithData(data any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Data:    data,
	}
}

// NewParseError creates a parse error (-32700).
func NewParseError(msg string) *Error {
	return &Error{Code: CodeParseError, Message: msg}
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(msg string) *Error {
	return &Error{Code: CodeInvalidRequest, Message: msg}
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(method string) *Error {
	return &Error{Code: CodeMethodNotFound, Message: "method not found: " + method}
}

// NewInvalidParams creates an invalid params error (-32602).
// Used when tool arguments fail schema validation; the validation
// detail lists the missing or malformed fields.
func NewInvalidParams(msg string) *Error {
	return &Error{Code: CodeInvalidParams, Message: msg}
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}

// NewToolExecution creates a tool execution error (-32000). Raised
// when a registered tool's handler returns an error or panics.
func NewToolExecution(msg string) *Error {
	return &Error{Code: CodeToolExecution, Message: msg}
}

// NewNotFound creates a not found error (-32001).
func NewNotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NewToolNotFound creates a not found error (-32001) for an
// unregistered tool name.
func NewToolNotFound(msg string) *Error {
	return NewNotFound(msg)
}

// NewNotInitialized creates a not initialized error (-32002). Returned
// for any request other than initialize while the session is still in
// its uninitialized state.
func NewNotInitialized() *Error {
	return &Error{Code: CodeNotInitialized, Message: "server not initialized"}
}

// NewUnauthorized creates an unauthorized error (-32004).
func NewUnauthorized(msg string) *Error {
	return &Error{Code: CodeUnauthorized, Message: msg}
}
