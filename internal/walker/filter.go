package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// IgnoredNames are path elements never treated as site source: VCS and
// tool directories, the build output and cache, and OS metadata files.
var IgnoredNames = []string{
	".git",
	"node_modules",
	".folio",
	"_site",
	".idea",
	".vscode",
	".DS_Store",
	"Thumbs.db",
}

// ScratchPatterns match editor swap and backup files. They are skipped when
// copying passthrough directories and when watching for changes.
var ScratchPatterns = []string{
	"*~",
	"*.swp",
	"*.swx",
	".#*",
	"#*#",
	"*.tmp",
}

// IsIgnoredName reports whether a single path element is one of IgnoredNames.
// The comparison is case-insensitive.
func IsIgnoredName(name string) bool {
	for _, n := range IgnoredNames {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// IsScratch reports whether the base name of path matches ScratchPatterns.
func IsScratch(path string) bool {
	base := filepath.Base(path)
	for _, p := range ScratchPatterns {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}

// MatchAny reports whether relPath matches one of patterns. Patterns
// containing a slash are matched against the whole slash-separated path,
// others against the base name only, so "*.md" matches at any depth.
func MatchAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	base := baseName(normalized)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		target := normalized
		if !strings.Contains(pattern, "/") {
			target = base
		}
		if ok, err := doublestar.Match(pattern, target); err == nil && ok {
			return true
		}
	}
	return false
}

// baseName returns the last element of a slash-separated path.
func baseName(rel string) string {
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		return rel[i+1:]
	}
	return rel
}

// allowed applies a WalkerConfig's include and exclude patterns. An empty
// include list admits everything.
func (c WalkerConfig) allowed(relPath string) bool {
	if len(c.Include) > 0 && !MatchAny(relPath, c.Include) {
		return false
	}
	return !MatchAny(relPath, c.Exclude)
}
