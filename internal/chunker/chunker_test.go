package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeatlas/internal/extractor"
	"codeatlas/pkg/types"
)

func TestNew(t *testing.T) {
	c := New()
	assert.NotNil(t, c)
}

func TestChunkFile_OneChunkPerFunction(t *testing.T) {
	content := `export function add(a: number, b: number): number {
  return a + b;
}

export function sub(a: number, b: number): number {
  return a - b;
}
`
	symbols, err := extractor.New().Extract("math.ts", "typescript", []byte(content))
	require.NoError(t, err)

	chunks := New().ChunkFile("math.ts", []byte(content), symbols)
	require.Len(t, chunks, 2)

	add := chunks[0]
	assert.Equal(t, types.ChunkID("math.ts", 1, 3), add.ID)
	assert.Equal(t, types.ChunkFunction, add.Type)
	assert.Contains(t, add.Content, "return a + b")
	assert.Equal(t, 1, add.StartLine)
	assert.Equal(t, 3, add.EndLine)

	sub := chunks[1]
	assert.Equal(t, 5, sub.StartLine)
	assert.Equal(t, 7, sub.EndLine)
	assert.Contains(t, sub.Content, "return a - b")
}

func TestChunkFile_ClassSubsumesMethods(t *testing.T) {
	content := `export class Stack {
  private items: number[] = [];

  push(n: number): void {
    this.items.push(n);
  }

  pop(): number {
    return this.items.pop();
  }
}
`
	symbols, err := extractor.New().Extract("stack.ts", "typescript", []byte(content))
	require.NoError(t, err)

	chunks := New().ChunkFile("stack.ts", []byte(content), symbols)
	require.Len(t, chunks, 1)

	cls := chunks[0]
	assert.Equal(t, types.ChunkClass, cls.Type)
	assert.Contains(t, cls.Content, "push")
	assert.Contains(t, cls.Content, "pop")

	// The class chunk records the methods it encloses.
	names := map[string]bool{}
	for _, id := range cls.SymbolIDs {
		names[id] = true
	}
	assert.True(t, names[types.SymbolID("stack.ts", "Stack", 1)])
	assert.True(t, names[types.SymbolID("stack.ts", "push", 4)])
	assert.True(t, names[types.SymbolID("stack.ts", "pop", 8)])
}

func TestChunkFile_WholeFileFallback(t *testing.T) {
	content := `const config = { retries: 3 };
const timeout = 500;
`
	symbols, err := extractor.New().Extract("config.ts", "typescript", []byte(content))
	require.NoError(t, err)

	chunks := New().ChunkFile("config.ts", []byte(content), symbols)
	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkFile, chunks[0].Type)
	assert.Equal(t, 1, chunks[0].StartLine)
	assert.Contains(t, chunks[0].Content, "retries")
	// Constants still attach to the whole-file chunk.
	assert.Len(t, chunks[0].SymbolIDs, 2)
}

func TestChunkFile_NoSymbolsAtAll(t *testing.T) {
	content := `// only a comment
// nothing declared
`
	chunks := New().ChunkFile("notes.ts", []byte(content), nil)
	require.Len(t, chunks, 1)
	assert.Equal(t, types.ChunkFile, chunks[0].Type)
	assert.Empty(t, chunks[0].SymbolIDs)
}

func TestChunkFile_EmptyContent(t *testing.T) {
	chunks := New().ChunkFile("empty.ts", []byte("   \n  \n"), nil)
	assert.Empty(t, chunks)
}

func TestChunkFile_LineRanges(t *testing.T) {
	// Every chunk's content is exactly its [StartLine, EndLine] slice.
	content := `function a() {
  return 1;
}
function b() {
  return 2;
}
`
	symbols, err := extractor.New().Extract("f.ts", "typescript", []byte(content))
	require.NoError(t, err)

	chunks := New().ChunkFile("f.ts", []byte(content), symbols)
	require.Len(t, chunks, 2)
	for _, ch := range chunks {
		assert.True(t, ch.ContainsLine(ch.StartLine))
		assert.True(t, ch.ContainsLine(ch.EndLine))
		assert.False(t, ch.ContainsLine(ch.EndLine+1))
	}
}
