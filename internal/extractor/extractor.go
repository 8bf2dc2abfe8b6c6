// Package extractor locates declarations in source files by lightweight
// lexical scanning. It is deliberately not a parser: a small set of
// per-language line patterns finds declaration sites, and a brace-balance
// scan finds where each declaration ends. The Extractor interface lets a
// real per-language parser be substituted without touching the graph
// builder or the vector index.
package extractor

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"codeatlas/pkg/types"
)

// Extractor locates symbol declarations in file content.
type Extractor interface {
	// Extract returns the ordered list of symbols declared in content.
	// file is the workspace-relative path used for symbol IDs; language
	// selects the pattern set.
	Extract(file, language string, content []byte) ([]types.Symbol, error)
}

// Lexical is the default Extractor implementation, built on per-language
// declaration patterns and brace-balance end detection.
type Lexical struct{}

// New creates a new lexical extractor.
func New() *Lexical {
	return &Lexical{}
}

// Extract scans content line by line applying the language's declaration
// patterns. Matches are de-duplicated by (name, start line): overlapping
// patterns never produce duplicate symbols. A file that cannot be decoded
// as text yields a parse error and no symbols; callers still index such
// files as a single whole-file chunk.
func (l *Lexical) Extract(file, language string, content []byte) ([]types.Symbol, error) {
	if !utf8.Valid(content) || hasNUL(content) {
		return nil, fmt.Errorf("%w: %s is not valid text", types.ErrParse, file)
	}

	patterns := patternsFor(language)
	if len(patterns) == 0 {
		return nil, nil
	}

	lines := strings.Split(string(content), "\n")

	var symbols []types.Symbol
	seen := make(map[dedupeKey]bool)

	for i, line := range lines {
		for _, p := range patterns {
			m := p.re.FindStringSubmatch(line)
			if m == nil {
				continue
			}

			name := m[p.nameGroup]
			if name == "" || reservedWords[name] {
				continue
			}

			startLine := i + 1
			key := dedupeKey{name: name, line: startLine}
			if seen[key] {
				continue
			}
			seen[key] = true

			endLine := scanEnd(lines, i)

			symbols = append(symbols, types.Symbol{
				ID:         types.SymbolID(file, name, startLine),
				Name:       name,
				Kind:       p.kind,
				File:       file,
				StartLine:  startLine,
				EndLine:    endLine,
				Visibility: p.visibility(line, name),
			})
		}
	}

	return symbols, nil
}

// dedupeKey identifies a declaration site. De-duplication by (name, start
// line) is an invariant of the extractor, not a side effect of pattern
// order.
type dedupeKey struct {
	name string
	line int
}

// scanEnd finds the 1-based end line of a declaration starting at line
// index start. It tracks a brace counter incremented on '{' and decremented
// on '}'; the declaration ends on the line where the counter returns to
// zero after having been incremented at least once. A declaration that
// never opens a brace ends on its own line.
func scanEnd(lines []string, start int) int {
	depth := 0
	opened := false

	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}

		if opened && depth <= 0 {
			return i + 1
		}

		// A statement terminator before any brace means a braceless
		// declaration (const x = 1;).
		if !opened && strings.Contains(lines[i], ";") {
			return start + 1
		}
	}

	if !opened {
		return start + 1
	}
	return len(lines)
}

func hasNUL(content []byte) bool {
	for _, b := range content {
		if b == 0 {
			return true
		}
	}
	return false
}
