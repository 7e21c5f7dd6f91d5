// Package server provides the core pieces of an MCP server: the tool
// registry, tool execution, the per-connection session state machine,
// and the minimal resource and prompt surfaces.
//
// A Server is assembled once at bootstrap, with tools registered and
// info set, and is immutable afterward, so concurrent sessions read it
// without coordination.
package server
