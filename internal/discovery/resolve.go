package discovery

import (
	"cmp"
	"path/filepath"
	"slices"
	"strings"

	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/workspace"
)

// compareProjects orders by ascending depth, then lexical path.
func compareProjects(a, b Project) int {
	return cmp.Or(cmp.Compare(a.Depth, b.Depth), strings.Compare(a.Path, b.Path))
}

// Resolve marks workspace members as suppressed. Workspace roots are visited
// in (depth, path) order and a project owned by an earlier root is never
// re-owned. Projects carrying any kind in alwaysSurface stay visible.
// projects is sorted in place. Resolve returns the number of suppressed projects.
func Resolve(projects []Project, alwaysSurface []marker.Kind) int {
	slices.SortFunc(projects, compareProjects)

	suppressed := 0
	for i := range projects {
		root := &projects[i]
		if !root.IsWorkspaceRoot || len(root.Members) == 0 {
			continue
		}

		patterns := workspace.Compile(root.Members)
		if patterns.Empty() {
			continue
		}

		for j := range projects {
			member := &projects[j]
			if j == i || member.OwnedBy != "" {
				continue
			}

			rel, ok := below(root.Path, member.Path)
			if !ok || !patterns.Matches(rel) {
				continue
			}
			if member.Kinds.ContainsAny(alwaysSurface) {
				continue
			}

			member.Suppressed = true
			member.OwnedBy = root.Path
			suppressed++
		}
	}
	return suppressed
}

// below returns path relative to dir when path lies strictly inside dir.
func below(dir, path string) (string, bool) {
	rel, err := filepath.Rel(dir, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}
