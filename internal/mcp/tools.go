package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"codeatlas/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeNotFound           = -32001 // Requested file, symbol, or chunk is not indexed
	ErrorCodeIndexingInProgress = -32002 // Another full build is already running
	ErrorCodeEmptyQuery         = -32004 // Query parameter is empty
)

// handleIndexWorkspace handles the index_workspace tool invocation
func (s *Server) handleIndexWorkspace(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.coordinator.BuildFull(ctx)
	if err != nil {
		if errors.Is(err, types.ErrBusy) {
			return nil, newMCPError(ErrorCodeIndexingInProgress, "an index build is already running", nil)
		}
		return nil, newMCPError(ErrorCodeInternalError, "indexing failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"indexed":           true,
		"files_indexed":     stats.FilesIndexed,
		"files_reused":      stats.FilesReused,
		"files_failed":      stats.FilesFailed,
		"symbols_extracted": stats.SymbolsExtracted,
		"chunks_created":    stats.ChunksCreated,
		"duration_ms":       stats.Duration.Milliseconds(),
	}

	if len(stats.ErrorMessages) > 0 {
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSemanticSearch handles the semantic_search tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 10)
	if limit < 1 || limit > 100 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	results, err := s.coordinator.SemanticSearch(ctx, query, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"query":   query,
		"count":   len(results),
		"results": searchResultsJSON(results),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFindSymbol handles the find_symbol tool invocation
func (s *Server) handleFindSymbol(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	symbols := s.coordinator.SearchSymbolByName(name)

	response := map[string]interface{}{
		"name":    name,
		"count":   len(symbols),
		"symbols": symbolsJSON(symbols),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleFileSymbols handles the file_symbols tool invocation
func (s *Server) handleFileSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	symbols, err := s.coordinator.GetSymbolsInFile(path)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotFound, "file is not indexed", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "symbol lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"path":    path,
		"count":   len(symbols),
		"symbols": symbolsJSON(symbols),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRelatedSymbols handles the related_symbols tool invocation
func (s *Server) handleRelatedSymbols(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	symbolID, ok := args["symbol_id"].(string)
	if !ok || symbolID == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "symbol_id parameter is required", map[string]interface{}{
			"param":  "symbol_id",
			"reason": "missing or empty",
		})
	}

	symbols, err := s.coordinator.FindRelatedSymbols(symbolID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotFound, "symbol is not indexed", map[string]interface{}{
				"symbol_id": symbolID,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "related symbol lookup failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"symbol_id": symbolID,
		"count":     len(symbols),
		"symbols":   symbolsJSON(symbols),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSimilarCode handles the similar_code tool invocation
func (s *Server) handleSimilarCode(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	line := getIntDefault(args, "line", 0)
	if line < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "line must be a positive integer", map[string]interface{}{
			"param": "line",
			"value": line,
		})
	}

	limit := getIntDefault(args, "limit", 5)
	if limit < 1 || limit > 50 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 50", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	result, err := s.coordinator.FindSimilarCode(path, line, limit)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotFound, "no indexed chunk encloses that position", map[string]interface{}{
				"path": path,
				"line": line,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "similarity search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches := make([]map[string]interface{}, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, map[string]interface{}{
			"chunk_id":   m.Chunk.ID,
			"file":       m.Chunk.File,
			"start_line": m.Chunk.StartLine,
			"end_line":   m.Chunk.EndLine,
			"similarity": m.Similarity,
			"reason":     m.Reason,
		})
	}

	response := map[string]interface{}{
		"source_chunk": result.Source.ID,
		"count":        len(matches),
		"matches":      matches,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpdateFile handles the update_file tool invocation
func (s *Server) handleUpdateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := s.coordinator.UpdateDocument(ctx, path); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "update failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"updated": true,
		"path":    path,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleRemoveFile handles the remove_file tool invocation
func (s *Server) handleRemoveFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	path, ok := args["path"].(string)
	if !ok || path == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "path parameter is required", map[string]interface{}{
			"param":  "path",
			"reason": "missing or empty",
		})
	}

	if err := s.coordinator.RemoveDocument(ctx, path); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return nil, newMCPError(ErrorCodeNotFound, "file is not indexed", map[string]interface{}{
				"path": path,
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "remove failed", map[string]interface{}{
			"path":  path,
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"removed": true,
		"path":    path,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetStatus handles the get_status tool invocation
func (s *Server) handleGetStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := s.coordinator.Status()

	response := map[string]interface{}{
		"is_indexing":    status.IsIndexing,
		"needs_rebuild":  s.coordinator.NeedsRebuild(),
		"document_count": status.DocumentCount,
		"symbol_count":   status.SymbolCount,
		"chunk_count":    status.ChunkCount,
		"vector_count":   status.VectorCount,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// newMCPError creates an MCP protocol error with optional structured data
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// symbolsJSON converts symbols into response maps
func symbolsJSON(symbols []types.Symbol) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(symbols))
	for _, sym := range symbols {
		out = append(out, map[string]interface{}{
			"id":         sym.ID,
			"name":       sym.Name,
			"kind":       string(sym.Kind),
			"file":       sym.File,
			"start_line": sym.StartLine,
			"end_line":   sym.EndLine,
			"visibility": string(sym.Visibility),
		})
	}
	return out
}

// searchResultsJSON converts search results into response maps
func searchResultsJSON(results []types.SearchResult) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(results))
	for _, r := range results {
		entry := map[string]interface{}{
			"rank":       r.Rank,
			"score":      r.Score,
			"chunk_id":   r.ChunkID,
			"file":       r.FilePath,
			"start_line": r.StartLine,
			"end_line":   r.EndLine,
			"chunk_type": string(r.ChunkType),
			"snippet":    r.Snippet,
		}
		if len(r.MatchedTerms) > 0 {
			entry["matched_terms"] = r.MatchedTerms
		}
		out = append(out, entry)
	}
	return out
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	switch val := args[key].(type) {
	case float64:
		// JSON numbers arrive as float64
		return int(val)
	case int:
		return val
	}
	return defaultValue
}
