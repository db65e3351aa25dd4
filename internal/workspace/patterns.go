package workspace

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"
)

// Patterns is a compiled list of member globs. Entries prefixed with "!" exclude.
type Patterns struct {
	include []string
	exclude []string
}

// Compile splits raw member patterns into include and exclude sets.
func Compile(patterns []string) Patterns {
	var p Patterns
	for _, raw := range patterns {
		if rest, ok := strings.CutPrefix(raw, "!"); ok {
			if rest = normalizePattern(rest); rest != "" {
				p.exclude = append(p.exclude, rest)
			}
			continue
		}
		if n := normalizePattern(raw); n != "" {
			p.include = append(p.include, n)
		}
	}
	return p
}

// Empty reports whether no include pattern is present.
func (p Patterns) Empty() bool {
	return len(p.include) == 0
}

// Matches reports whether rel, a path relative to the workspace root, is a
// member. A path is a member when it or one of its ancestors below the root
// matches an include pattern and neither it nor any such ancestor matches an
// exclude pattern.
func (p Patterns) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	if rel == "" || rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return false
	}

	included := false
	for _, prefix := range prefixes(rel) {
		if matchAny(p.exclude, prefix) {
			return false
		}
		if !included && matchAny(p.include, prefix) {
			included = true
		}
	}
	return included
}

// prefixes returns "a", "a/b", "a/b/c" for "a/b/c".
func prefixes(rel string) []string {
	parts := strings.Split(rel, "/")
	out := make([]string, 0, len(parts))
	for i := range parts {
		out = append(out, strings.Join(parts[:i+1], "/"))
	}
	return out
}

func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		if pattern == name {
			return true
		}
		if ok, err := zglob.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// normalizePattern turns "./packages/*/" into "packages/*".
func normalizePattern(p string) string {
	p = strings.TrimSpace(filepath.ToSlash(p))
	if p == "" {
		return ""
	}
	p = path.Clean(p)
	if p == "." {
		return ""
	}
	return p
}
