package extractor

import (
	"regexp"
	"strings"
	"unicode"

	"codeatlas/pkg/types"
)

// pattern matches one declaration form on a single line. nameGroup is the
// submatch index holding the symbol name; visibility derives the symbol's
// visibility from the matched line.
type pattern struct {
	re         *regexp.Regexp
	kind       types.SymbolKind
	nameGroup  int
	visibility func(line, name string) types.Visibility
}

// reservedWords are identifiers the looser patterns (method calls, arrow
// assignments) can capture by accident. They never name a symbol.
var reservedWords = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "switch": true,
	"catch": true, "return": true, "new": true, "typeof": true, "await": true,
	"constructor": false, // constructors are legitimate method symbols
}

const ident = `([A-Za-z_$][A-Za-z0-9_$]*)`

var (
	tsPatterns = []pattern{
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*` + ident),
			kind:       types.KindFunction,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+` + ident),
			kind:       types.KindClass,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?interface\s+` + ident),
			kind:       types.KindInterface,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?(?:const|let|var)\s+` + ident + `\s*(?::[^=]+)?=\s*(?:async\s+)?(?:\([^)]*\)|[A-Za-z_$][A-Za-z0-9_$]*)\s*=>`),
			kind:       types.KindFunction,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?const\s+` + ident + `\s*(?::[^=]+)?=`),
			kind:       types.KindConstant,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?(?:let|var)\s+` + ident + `\s*(?::[^=]+)?=`),
			kind:       types.KindVariable,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*(?:export\s+)?(?:type|enum)\s+` + ident),
			kind:       types.KindType,
			nameGroup:  1,
			visibility: exportVisibility,
		},
		{
			// Class methods: indented, optional modifiers, name(args) {
			re:         regexp.MustCompile(`^\s+(?:(?:public|private|protected|static|readonly|async|override)\s+)*` + ident + `\s*\([^;]*\)\s*(?::[^;{]+)?\{`),
			kind:       types.KindMethod,
			nameGroup:  1,
			visibility: methodVisibility,
		},
	}

	goPatterns = []pattern{
		{
			re:         regexp.MustCompile(`^func\s+` + ident),
			kind:       types.KindFunction,
			nameGroup:  1,
			visibility: caseVisibility,
		},
		{
			re:         regexp.MustCompile(`^func\s+\([^)]+\)\s+` + ident),
			kind:       types.KindMethod,
			nameGroup:  1,
			visibility: caseVisibility,
		},
		{
			re:         regexp.MustCompile(`^type\s+` + ident + `\s+interface\b`),
			kind:       types.KindInterface,
			nameGroup:  1,
			visibility: caseVisibility,
		},
		{
			re:         regexp.MustCompile(`^type\s+` + ident),
			kind:       types.KindType,
			nameGroup:  1,
			visibility: caseVisibility,
		},
		{
			re:         regexp.MustCompile(`^const\s+` + ident),
			kind:       types.KindConstant,
			nameGroup:  1,
			visibility: caseVisibility,
		},
		{
			re:         regexp.MustCompile(`^var\s+` + ident),
			kind:       types.KindVariable,
			nameGroup:  1,
			visibility: caseVisibility,
		},
	}

	pyPatterns = []pattern{
		{
			re:         regexp.MustCompile(`^\s*(?:async\s+)?def\s+` + ident),
			kind:       types.KindFunction,
			nameGroup:  1,
			visibility: underscoreVisibility,
		},
		{
			re:         regexp.MustCompile(`^\s*class\s+` + ident),
			kind:       types.KindClass,
			nameGroup:  1,
			visibility: underscoreVisibility,
		},
	}
)

// patternsFor returns the declaration pattern set for a language.
// JavaScript shares the TypeScript patterns; the type and interface forms
// simply never match.
func patternsFor(language string) []pattern {
	switch language {
	case "typescript", "javascript":
		return tsPatterns
	case "go":
		return goPatterns
	case "python":
		return pyPatterns
	default:
		return nil
	}
}

func exportVisibility(line, _ string) types.Visibility {
	if strings.Contains(line, "export ") {
		return types.VisibilityPublic
	}
	return types.VisibilityPrivate
}

func methodVisibility(line, _ string) types.Visibility {
	if strings.Contains(line, "private ") || strings.Contains(line, "protected ") {
		return types.VisibilityPrivate
	}
	return types.VisibilityPublic
}

func caseVisibility(_, name string) types.Visibility {
	for _, r := range name {
		if unicode.IsUpper(r) {
			return types.VisibilityPublic
		}
		return types.VisibilityPrivate
	}
	return types.VisibilityPrivate
}

func underscoreVisibility(_, name string) types.Visibility {
	if strings.HasPrefix(name, "_") {
		return types.VisibilityPrivate
	}
	return types.VisibilityPublic
}
