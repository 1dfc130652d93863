// Package mcp exposes scanning and fixing to editor agents over the
// Model Context Protocol.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvvmshift/mvvmshift/internal/engine"
)

// NewServer creates an MCP server with the scan and fix tools wired to
// the given engine.
func NewServer(eng *engine.Engine, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"mvvmshift",
		version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithRecovery(),
	)

	addScanSourceTool(s, eng)
	addFixSourceTool(s, eng)
	addListRulesTool(s, eng)

	return s
}

// ServeStdio runs the server on stdin/stdout until the client hangs up.
func ServeStdio(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
