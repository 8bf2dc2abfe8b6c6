package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()

	src := `export function add(a: number, b: number): number {
  return a + b;
}
`
	require.NoError(t, os.MkdirAll(filepath.Join(root, "src"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "src", "math.ts"), []byte(src), 0644))

	s, err := NewServer(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.coordinator.Close() })
	return s
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

// decodeResult unmarshals a text tool result back into a map.
func decodeResult(t *testing.T, res *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)

	text, ok := mcp.AsTextContent(res.Content[0])
	require.True(t, ok)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func indexTestWorkspace(t *testing.T, s *Server) {
	t.Helper()
	res, err := s.handleIndexWorkspace(context.Background(), callRequest(nil))
	require.NoError(t, err)
	out := decodeResult(t, res)
	assert.Equal(t, true, out["indexed"])
}

func TestNewServer(t *testing.T) {
	s := newTestServer(t)
	assert.NotNil(t, s.mcp)
	assert.NotNil(t, s.coordinator)
}

func TestServe_HonorsCancellation(t *testing.T) {
	s := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Serve(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHandleIndexWorkspace(t *testing.T) {
	s := newTestServer(t)

	res, err := s.handleIndexWorkspace(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["indexed"])
	assert.EqualValues(t, 1, out["files_indexed"])
}

func TestHandleSemanticSearch(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	res, err := s.handleSemanticSearch(context.Background(), callRequest(map[string]interface{}{
		"query": "add two numbers",
		"limit": float64(5),
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, "add two numbers", out["query"])
	assert.NotZero(t, out["count"])
}

func TestHandleSemanticSearch_MissingQuery(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSemanticSearch(context.Background(), callRequest(map[string]interface{}{}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestHandleSemanticSearch_LimitOutOfRange(t *testing.T) {
	s := newTestServer(t)

	_, err := s.handleSemanticSearch(context.Background(), callRequest(map[string]interface{}{
		"query": "anything",
		"limit": float64(500),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestHandleFindSymbol(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	res, err := s.handleFindSymbol(context.Background(), callRequest(map[string]interface{}{
		"name": "add",
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.EqualValues(t, 1, out["count"])
}

func TestHandleFileSymbols_NotIndexed(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	_, err := s.handleFileSymbols(context.Background(), callRequest(map[string]interface{}{
		"path": "src/unknown.ts",
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeNotFound, mcpErr.Code)
}

func TestHandleRemoveFile(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	res, err := s.handleRemoveFile(context.Background(), callRequest(map[string]interface{}{
		"path": "src/math.ts",
	}))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, true, out["removed"])

	statusRes, err := s.handleGetStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)
	status := decodeResult(t, statusRes)
	assert.EqualValues(t, 0, status["document_count"])
	assert.EqualValues(t, 0, status["vector_count"])
}

func TestHandleGetStatus(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	res, err := s.handleGetStatus(context.Background(), callRequest(nil))
	require.NoError(t, err)

	out := decodeResult(t, res)
	assert.Equal(t, false, out["is_indexing"])
	assert.EqualValues(t, 1, out["document_count"])
	assert.EqualValues(t, 1, out["symbol_count"])
}

func TestHandleSimilarCode_InvalidLine(t *testing.T) {
	s := newTestServer(t)
	indexTestWorkspace(t, s)

	_, err := s.handleSimilarCode(context.Background(), callRequest(map[string]interface{}{
		"path": "src/math.ts",
		"line": float64(0),
	}))
	require.Error(t, err)

	var mcpErr *MCPError
	require.ErrorAs(t, err, &mcpErr)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}
