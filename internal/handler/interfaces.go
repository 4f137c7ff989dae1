package handler

// Server defines the interface for long-running front ends.
// This allows swapping between transports (HTTP proxy, MCP stdio, etc.)
type Server interface {
	Start() error
	Stop() error
}
