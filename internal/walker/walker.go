// Package walker enumerates candidate source files under a workspace root.
// Traversal is read-only and lazy: files are sent on a channel as they are
// discovered, and a new call to Walk restarts from scratch.
package walker

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a discovered source file.
type FileInfo struct {
	Path     string // absolute path
	RelPath  string // slash-separated, relative to the root
	Language string
	Size     int64
}

// maxFileSize is the largest file considered for indexing (1 MB).
const maxFileSize = 1 << 20

// ignoredDirs are directory names never descended into: hidden directories
// are handled separately, these cover dependency and build output trees.
var ignoredDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	"target":       true,
	"coverage":     true,
	"__pycache__":  true,
}

// languageByExt maps supported file extensions (without dot) to language
// names. Only files with a supported extension are emitted.
var languageByExt = map[string]string{
	"ts":  "typescript",
	"tsx": "typescript",
	"js":  "javascript",
	"jsx": "javascript",
	"mjs": "javascript",
	"cjs": "javascript",
	"go":  "go",
	"py":  "python",
}

// Language returns the language name for a file path, or "" when the
// extension is not supported.
func Language(path string) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return languageByExt[ext]
}

// Supported reports whether the file's extension belongs to an indexed
// language.
func Supported(path string) bool {
	return Language(path) != ""
}

// Walk traverses the directory tree rooted at root and sends discovered
// source files on the returned channel. Hidden entries and dependency/build
// directories are skipped. A directory that cannot be read is skipped with a
// logged warning and traversal continues.
func Walk(root string) <-chan FileInfo {
	files := make(chan FileInfo, 64)

	go func() {
		defer close(files)

		absRoot, err := filepath.Abs(root)
		if err != nil {
			log.Printf("walker: cannot resolve root %s: %v", root, err)
			return
		}

		_ = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				log.Printf("walker: skipping %s: %v", path, err)
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if d.IsDir() {
				if path == absRoot {
					return nil
				}
				if skipDir(d.Name()) {
					return filepath.SkipDir
				}
				return nil
			}

			// Skip symlinks and hidden files.
			if d.Type()&fs.ModeSymlink != 0 || strings.HasPrefix(d.Name(), ".") {
				return nil
			}

			lang := Language(path)
			if lang == "" {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				log.Printf("walker: skipping %s: %v", path, err)
				return nil
			}

			// Skip large or empty files.
			if info.Size() > maxFileSize || info.Size() == 0 {
				return nil
			}

			relPath, _ := filepath.Rel(absRoot, path)
			files <- FileInfo{
				Path:     path,
				RelPath:  filepath.ToSlash(relPath),
				Language: lang,
				Size:     info.Size(),
			}
			return nil
		})
	}()

	return files
}

// Collect drains a Walk channel into a slice. Convenience for callers that
// need the full file list up front.
func Collect(root string) []FileInfo {
	var all []FileInfo
	for fi := range Walk(root) {
		all = append(all, fi)
	}
	return all
}

// Stat returns the file info for a single path if it is a supported,
// indexable source file under the given root.
func Stat(root, path string) (FileInfo, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return FileInfo{}, err
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return FileInfo{}, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return FileInfo{}, err
	}

	relPath, err := filepath.Rel(absRoot, absPath)
	if err != nil {
		return FileInfo{}, err
	}

	return FileInfo{
		Path:     absPath,
		RelPath:  filepath.ToSlash(relPath),
		Language: Language(absPath),
		Size:     info.Size(),
	}, nil
}

// skipDir reports whether a directory name should be pruned from traversal.
func skipDir(name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	return ignoredDirs[name]
}
