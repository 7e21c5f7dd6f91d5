// Package transport provides the wire layers the server speaks over:
// newline-delimited JSON-RPC on stdin/stdout, Server-Sent Events over
// HTTP, and WebSocket. Each transport owns session lifecycle for its
// connections and attaches the session to the request context before
// handing the request to the protocol handler.
package transport
