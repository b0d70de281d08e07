// Package server provides the MCP server implementation for the
// MemoryBank service.
package server

// MemoryToolServer defines the interface for the MCP server that
// handles memory- and context-related tool calls from MCP clients.
type MemoryToolServer interface {
	// Initialize initializes the server with dependencies and configurations.
	Initialize() error

	// Start starts the MCP server on the specified transport.
	Start() error

	// Stop gracefully shuts down the MCP server.
	Stop() error
}
