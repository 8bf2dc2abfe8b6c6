// Package resolver extracts import statements from source files and
// resolves relative module specifiers to workspace file paths. Resolution
// failure is routine, not exceptional: a specifier that matches nothing on
// disk simply produces no edge in the code graph.
package resolver

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Import is one import statement found in a file.
type Import struct {
	// Specifier is the raw module string as written in the source.
	Specifier string

	// Resolved is the workspace-relative slash path of the imported file,
	// empty when the specifier did not resolve inside the workspace.
	Resolved string

	// External marks package-name specifiers (not starting with "." or
	// "/"). Externals are recorded as dependencies but never produce
	// in-graph edges.
	External bool
}

// importPatterns match the specifier in import/require-style statements.
// The single capture group is the module specifier.
var importPatterns = []*regexp.Regexp{
	// import defaultExport, { named } from 'spec'; import 'spec';
	regexp.MustCompile(`(?m)^\s*import\s+(?:[\w${},*\s]+from\s+)?['"]([^'"]+)['"]`),
	// export { x } from 'spec'; export * from 'spec';
	regexp.MustCompile(`(?m)^\s*export\s+[\w${},*\s]+from\s+['"]([^'"]+)['"]`),
	// const x = require('spec')
	regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`),
	// await import('spec')
	regexp.MustCompile(`import\(\s*['"]([^'"]+)['"]\s*\)`),
}

// extensionCandidates is the ordered list of suffixes tried when resolving
// a relative specifier: the exact path first, then each extension, then an
// index file inside the target directory.
var extensionCandidates = []string{".ts", ".tsx", ".js", ".jsx", ".mjs", ".cjs"}

// Resolver resolves import specifiers against a workspace root.
type Resolver struct {
	root string
}

// New creates a resolver for the workspace rooted at root.
func New(root string) *Resolver {
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	return &Resolver{root: abs}
}

// Resolve extracts all import statements from content and resolves the
// relative ones against the importing file's directory. filePath is the
// workspace-relative path of the importing file. Duplicate specifiers are
// collapsed to a single Import.
func (r *Resolver) Resolve(filePath string, content []byte) []Import {
	specs := extractSpecifiers(string(content))
	if len(specs) == 0 {
		return nil
	}

	fromDir := filepath.Dir(filepath.Join(r.root, filepath.FromSlash(filePath)))

	imports := make([]Import, 0, len(specs))
	for _, spec := range specs {
		imp := Import{Specifier: spec}

		if !strings.HasPrefix(spec, ".") && !strings.HasPrefix(spec, "/") {
			imp.External = true
			imports = append(imports, imp)
			continue
		}

		if target := r.resolveRelative(fromDir, spec); target != "" {
			imp.Resolved = target
		}
		imports = append(imports, imp)
	}

	return imports
}

// resolveRelative tries the fixed candidate list for a relative or absolute
// specifier and returns the workspace-relative path of the first candidate
// that exists on disk, or "".
func (r *Resolver) resolveRelative(fromDir, spec string) string {
	var base string
	if strings.HasPrefix(spec, "/") {
		base = filepath.Join(r.root, filepath.FromSlash(spec))
	} else {
		base = filepath.Join(fromDir, filepath.FromSlash(spec))
	}

	// Exact path as written (specifier already carries an extension).
	if isFile(base) {
		return r.relPath(base)
	}

	// Try each extension in order.
	for _, ext := range extensionCandidates {
		if isFile(base + ext) {
			return r.relPath(base + ext)
		}
	}

	// Directory import: fall back to index.<ext> inside the target.
	for _, ext := range extensionCandidates {
		candidate := filepath.Join(base, "index"+ext)
		if isFile(candidate) {
			return r.relPath(candidate)
		}
	}

	return ""
}

// relPath converts an absolute path to a workspace-relative slash path.
// Targets escaping the workspace root do not resolve.
func (r *Resolver) relPath(abs string) string {
	rel, err := filepath.Rel(r.root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel)
}

// extractSpecifiers applies all import patterns and returns specifiers in
// order of first appearance.
func extractSpecifiers(content string) []string {
	var specs []string
	seen := make(map[string]bool)

	for _, re := range importPatterns {
		for _, m := range re.FindAllStringSubmatch(content, -1) {
			spec := m[1]
			if spec == "" || seen[spec] {
				continue
			}
			seen[spec] = true
			specs = append(specs, spec)
		}
	}

	return specs
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
