package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-hclog"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/thinko/swinelink/internal/handler/tools"
)

const (
	serverName    = "swinelink"
	serverVersion = "1.1.0"
)

// Server exposes the registrar tools over MCP on stdio
type Server struct {
	registry *tools.Registry
	mcp      *server.MCPServer
	logger   hclog.Logger
}

// NewServer creates an MCP server with every registry tool registered
func NewServer(registry *tools.Registry, logger hclog.Logger) *Server {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	s := &Server{
		registry: registry,
		logger:   logger,
		mcp: server.NewMCPServer(
			serverName,
			serverVersion,
			server.WithLogging(),
			server.WithToolCapabilities(true),
		),
	}

	for _, t := range registry.Tools() {
		name := t.Name
		s.mcp.AddTool(mcp.NewTool(name, t.Description, t.InputSchema), func(arguments map[string]interface{}) (*mcp.CallToolResult, error) {
			text, isError := s.call(context.Background(), name, arguments)
			return &mcp.CallToolResult{
				IsError: isError,
				Content: []interface{}{mcp.NewTextContent(text)},
			}, nil
		})
	}
	logger.Debug("registered tools", "count", len(registry.Tools()))

	return s
}

// call runs a tool and renders its result as indented JSON, or an error
// message when isError is true.
func (s *Server) call(ctx context.Context, name string, arguments map[string]interface{}) (text string, isError bool) {
	s.logger.Debug("tool call", "tool", name)

	result, err := s.registry.Call(ctx, name, arguments)
	if err != nil {
		s.logger.Warn("tool call failed", "tool", name, "error", err)
		return tools.ErrorMessage(name, err), true
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("Error: %v", err), true
	}
	return string(jsonData), false
}

// Start serves MCP on stdin/stdout until the input is closed
func (s *Server) Start() error {
	s.logger.Info("starting MCP server on stdio", "tools", len(s.registry.Tools()))
	return server.ServeStdio(s.mcp)
}

// Stop is a no-op; the stdio server ends when its input closes
func (s *Server) Stop() error {
	return nil
}
