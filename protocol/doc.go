// Package protocol defines the JSON-RPC 2.0 message types and error
// vocabulary for the MCP session protocol.
//
// # Messages
//
// Requests, responses, and notifications follow JSON-RPC 2.0 framing.
// A request carrying an ID receives exactly one correlated response,
// success or error, for the lifetime of a session. A request without
// an ID is a notification and receives no response.
//
// # Errors
//
// Handler failures are expressed as *Error values carrying a JSON-RPC
// error code. Beyond the standard codes, the package defines the
// server-side taxonomy used by request handlers:
//
//	CodeToolExecution  = -32000  // tool handler failed or panicked
//	CodeNotFound   = -32001  // tool, resource, or prompt not registered
//	CodeNotInitialized = -32002  // request before initialize handshake
//	CodeRateLimited    = -32003  // request rejected by rate limiting
//	CodeUnauthorized   = -32004  // missing or invalid credentials
//
// Helper constructors create properly coded errors:
//
//	err := protocol.NewToolNotFound("no such tool: frobnicate")
//	err := protocol.NewNotInitialized()
package protocol
