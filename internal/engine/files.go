package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mvvmshift/mvvmshift/internal/syntax"
)

// collectFiles walks root and returns every C# source file that passes
// the include/exclude filters, in walk order.
func (e *Engine) collectFiles(root string) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Skip hidden directories and build output
		if info.IsDir() {
			name := info.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "bin" || name == "obj" || name == "node_modules" || name == "packages") {
				return filepath.SkipDir
			}
			return nil
		}

		if !syntax.IsSourceFile(path) {
			return nil
		}

		rel, _ := filepath.Rel(root, path)
		if !matchAny(e.include, rel, true) || matchAny(e.exclude, rel, false) {
			return nil
		}

		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	return files, nil
}

// matchAny checks rel against the patterns, trying the relative path
// and the base name. An empty pattern list yields emptyResult.
func matchAny(patterns []string, rel string, emptyResult bool) bool {
	if len(patterns) == 0 {
		return emptyResult
	}
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, rel); matched {
			return true
		}
		if matched, _ := filepath.Match(pattern, filepath.Base(rel)); matched {
			return true
		}
	}
	return false
}
