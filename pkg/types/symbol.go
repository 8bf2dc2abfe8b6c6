package types

import (
	"errors"
	"fmt"
)

// SymbolKind represents the kind of declaration a symbol names.
type SymbolKind string

const (
	KindFunction  SymbolKind = "function"
	KindMethod    SymbolKind = "method"
	KindClass     SymbolKind = "class"
	KindInterface SymbolKind = "interface"
	KindConstant  SymbolKind = "constant"
	KindType      SymbolKind = "type"
	KindVariable  SymbolKind = "variable"
)

// Visibility represents whether a symbol is reachable from outside its file.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Symbol represents a named declaration located by the lexical extractor.
// A symbol is never patched in place: when its file changes, the whole
// set of symbols for that file is replaced.
type Symbol struct {
	// ID is derived from file, name and declaration line and is unique
	// across the index. See SymbolID.
	ID   string
	Name string
	Kind SymbolKind

	// File is the workspace-relative path of the owning file.
	File string

	// StartLine and EndLine are 1-based and inclusive.
	StartLine int
	EndLine   int

	Visibility Visibility
}

// SymbolID derives the canonical symbol identifier from its file, name and
// declaration line. Two declarations on the same line with the same name are
// the same symbol.
func SymbolID(file, name string, startLine int) string {
	return fmt.Sprintf("%s#%s#%d", file, name, startLine)
}

// ValidateKind checks if the symbol kind is one of the known kinds.
func (s *Symbol) ValidateKind() error {
	switch s.Kind {
	case KindFunction, KindMethod, KindClass, KindInterface, KindConstant, KindType, KindVariable:
		return nil
	default:
		return errors.New("invalid symbol kind")
	}
}

// Validate performs comprehensive validation of the symbol.
func (s *Symbol) Validate() error {
	if s.Name == "" {
		return errors.New("symbol name is required")
	}

	if s.File == "" {
		return errors.New("symbol file is required")
	}

	if err := s.ValidateKind(); err != nil {
		return err
	}

	if s.StartLine <= 0 || s.EndLine <= 0 {
		return errors.New("line numbers must be positive")
	}

	if s.StartLine > s.EndLine {
		return errors.New("start line must be before or equal to end line")
	}

	if s.ID != SymbolID(s.File, s.Name, s.StartLine) {
		return errors.New("symbol ID does not match file, name and start line")
	}

	return nil
}

// IsChunkable reports whether the symbol is large enough a unit to serve as
// the boundary of a semantic chunk.
func (s *Symbol) IsChunkable() bool {
	switch s.Kind {
	case KindFunction, KindMethod, KindClass:
		return true
	default:
		return false
	}
}
