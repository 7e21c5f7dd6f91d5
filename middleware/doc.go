// Package middleware provides composable request-handling middleware
// for the MCP dispatcher: panic recovery, request IDs, structured
// logging, deadlines, payload size limits, API-key authentication,
// rate limiting, and OpenTelemetry instrumentation.
//
// Middleware wrap the same HandlerFunc signature the dispatcher uses,
// so a chain applies uniformly regardless of transport.
package middleware
