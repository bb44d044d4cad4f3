package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
)

// compiledPattern holds both the pattern string and compiled glob. A pattern
// with **/ also matches with that segment empty, so "src/**/*.ts" covers
// "src/a.ts" as it does in tsconfig.
type compiledPattern struct {
	pattern string
	globs   []glob.Glob
}

func (cp compiledPattern) match(path string) bool {
	for _, g := range cp.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// collapsedForms returns pattern with every combination of its **/ segments
// removed, the original first.
func collapsedForms(pattern string) []string {
	forms := []string{pattern}
	seen := map[string]bool{pattern: true}
	for i := 0; i < len(forms); i++ {
		current := forms[i]
		for start := 0; ; {
			idx := strings.Index(current[start:], "**/")
			if idx < 0 {
				break
			}
			idx += start
			if idx == 0 || current[idx-1] == '/' {
				form := current[:idx] + current[idx+3:]
				if !seen[form] {
					seen[form] = true
					forms = append(forms, form)
				}
			}
			start = idx + 3
		}
	}
	return forms
}

// FileDiscovery resolves include and exclude globs under a project root into
// the list of root files handed to the generator.
type FileDiscovery struct {
	rootDir         string
	includePatterns []compiledPattern
	excludePatterns []compiledPattern
}

// New creates a new file discovery instance. Patterns are relative to rootDir
// and use / as separator.
func New(rootDir string, include, exclude []string) (*FileDiscovery, error) {
	fd := &FileDiscovery{
		rootDir: rootDir,
	}

	var err error
	if fd.includePatterns, err = compilePatterns(include); err != nil {
		return nil, err
	}
	if fd.excludePatterns, err = compilePatterns(exclude); err != nil {
		return nil, err
	}
	return fd, nil
}

func compilePatterns(patterns []string) ([]compiledPattern, error) {
	compiled := make([]compiledPattern, 0, len(patterns))
	for _, pattern := range patterns {
		cp := compiledPattern{pattern: pattern}
		for _, form := range collapsedForms(pattern) {
			g, err := glob.Compile(form, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
			}
			cp.globs = append(cp.globs, g)
		}
		compiled = append(compiled, cp)
	}
	return compiled, nil
}

// Discover walks the directory tree and returns the files matching an include
// pattern and no exclude pattern. Files are grouped by include pattern, in
// pattern order, and sorted within a group.
func (fd *FileDiscovery) Discover() ([]string, error) {
	groups := make([][]string, len(fd.includePatterns))

	err := filepath.Walk(fd.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		// Get relative path for pattern matching
		relPath, err := filepath.Rel(fd.rootDir, path)
		if err != nil {
			return err
		}

		// Normalize path separators for glob matching
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && fd.shouldIgnore(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if fd.shouldIgnore(relPath) {
			return nil
		}

		if i := fd.firstMatch(relPath, fd.includePatterns); i >= 0 {
			groups[i] = append(groups[i], path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to discover files in %s: %w", fd.rootDir, err)
	}

	files := []string{}
	for _, group := range groups {
		sort.Strings(group)
		files = append(files, group...)
	}
	return files, nil
}

// shouldIgnore checks if a path matches any exclude pattern.
func (fd *FileDiscovery) shouldIgnore(relPath string) bool {
	if fd.firstMatch(relPath, fd.excludePatterns) >= 0 {
		return true
	}

	// Also check if this is a directory that would match with /** suffix
	// For example, "node_modules" should match pattern "node_modules/**"
	return fd.firstMatch(relPath+"/**", fd.excludePatterns) >= 0
}

// firstMatch returns the index of the first pattern matching path, or -1.
func (fd *FileDiscovery) firstMatch(path string, patterns []compiledPattern) int {
	for i, cp := range patterns {
		if cp.match(path) {
			return i
		}
	}
	return -1
}
