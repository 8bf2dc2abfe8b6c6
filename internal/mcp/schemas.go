package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// indexWorkspaceTool returns the tool definition for index_workspace
func indexWorkspaceTool() mcp.Tool {
	return mcp.Tool{
		Name:        "index_workspace",
		Description: "Run a full index build over the workspace to make it searchable",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}

// semanticSearchTool returns the tool definition for semantic_search
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search",
		Description: "Search the indexed workspace with a natural language or keyword query",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (natural language or keywords)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     10,
					"minimum":     1,
					"maximum":     100,
				},
			},
			Required: []string{"query"},
		},
	}
}

// findSymbolTool returns the tool definition for find_symbol
func findSymbolTool() mcp.Tool {
	return mcp.Tool{
		Name:        "find_symbol",
		Description: "Find symbols by name across the indexed workspace (exact match first, then substring)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Symbol name to search for (case-insensitive)",
				},
			},
			Required: []string{"name"},
		},
	}
}

// fileSymbolsTool returns the tool definition for file_symbols
func fileSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "file_symbols",
		Description: "List all symbols declared in one indexed file",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// relatedSymbolsTool returns the tool definition for related_symbols
func relatedSymbolsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "related_symbols",
		Description: "Find symbols in files connected to a symbol's file through the import graph",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"symbol_id": map[string]interface{}{
					"type":        "string",
					"description": "Symbol identifier (file#name#startLine)",
				},
			},
			Required: []string{"symbol_id"},
		},
	}
}

// similarCodeTool returns the tool definition for similar_code
func similarCodeTool() mcp.Tool {
	return mcp.Tool{
		Name:        "similar_code",
		Description: "Find code chunks semantically similar to the chunk enclosing a file position",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the file",
				},
				"line": map[string]interface{}{
					"type":        "integer",
					"description": "1-based line number inside the chunk of interest",
					"minimum":     1,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of similar chunks to return (1-50)",
					"default":     5,
					"minimum":     1,
					"maximum":     50,
				},
			},
			Required: []string{"path", "line"},
		},
	}
}

// updateFileTool returns the tool definition for update_file
func updateFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "update_file",
		Description: "Re-index a single file after an edit (removes it if the file is gone)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// removeFileTool returns the tool definition for remove_file
func removeFileTool() mcp.Tool {
	return mcp.Tool{
		Name:        "remove_file",
		Description: "Remove a file and all of its symbols, chunks, and vectors from the index",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Workspace-relative path of the file",
				},
			},
			Required: []string{"path"},
		},
	}
}

// getStatusTool returns the tool definition for get_status
func getStatusTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_status",
		Description: "Report index lifecycle state and document, symbol, chunk, and vector counts",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}
}
