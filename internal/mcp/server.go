// Package mcp exposes the indexing engine over the Model Context Protocol.
// The editor-integration and AI feature layers consume the engine's query
// API through these tools; they never reach into the engine's internals.
package mcp

import (
	"context"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"codeatlas/internal/indexer"
)

const (
	// ServerName is the MCP server name.
	ServerName = "codeatlas"
	// ServerVersion is the current server version.
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the engine behind it.
type Server struct {
	mcp         *server.MCPServer
	coordinator *indexer.Coordinator
}

// NewServer creates an MCP server for the workspace rooted at root.
func NewServer(root string) (*Server, error) {
	coord, err := indexer.New(indexer.Config{Root: root})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize engine: %w", err)
	}

	mcpServer := server.NewMCPServer(ServerName, ServerVersion)

	s := &Server{
		mcp:         mcpServer,
		coordinator: coord,
	}
	s.registerTools()

	return s, nil
}

// Serve runs the MCP server on stdio until ctx is cancelled or the stream
// closes.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.coordinator.Close() }()
	return server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(indexWorkspaceTool(), s.handleIndexWorkspace)
	s.mcp.AddTool(semanticSearchTool(), s.handleSemanticSearch)
	s.mcp.AddTool(findSymbolTool(), s.handleFindSymbol)
	s.mcp.AddTool(fileSymbolsTool(), s.handleFileSymbols)
	s.mcp.AddTool(relatedSymbolsTool(), s.handleRelatedSymbols)
	s.mcp.AddTool(similarCodeTool(), s.handleSimilarCode)
	s.mcp.AddTool(updateFileTool(), s.handleUpdateFile)
	s.mcp.AddTool(removeFileTool(), s.handleRemoveFile)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
