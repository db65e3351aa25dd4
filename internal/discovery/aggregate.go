package discovery

import (
	"slices"
	"strings"
)

// aggregate builds the final Result: suppressed projects are split off,
// visible ones are ordered and truncated to maxResults, errors are ordered
// by path.
func aggregate(projects []Project, errs []*PathError, maxResults int) *Result {
	slices.SortFunc(projects, compareProjects)

	result := &Result{
		Projects:   make([]Project, 0, len(projects)),
		Errors:     errs,
		Suppressed: make([]Project, 0),
	}
	for _, p := range projects {
		if p.Suppressed {
			result.Suppressed = append(result.Suppressed, p)
			continue
		}
		result.Projects = append(result.Projects, p)
	}

	if maxResults > 0 && len(result.Projects) > maxResults {
		result.Projects = result.Projects[:maxResults]
	}

	if result.Errors == nil {
		result.Errors = make([]*PathError, 0)
	}
	slices.SortFunc(result.Errors, func(a, b *PathError) int {
		return strings.Compare(a.Path, b.Path)
	})
	return result
}
