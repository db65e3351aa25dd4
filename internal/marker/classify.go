package marker

import (
	"io/fs"
	"slices"
	"strings"
)

// KindSet is a sorted, duplicate-free set of kinds.
type KindSet []Kind

// Add returns the set with k included.
func (s KindSet) Add(k Kind) KindSet {
	i, found := slices.BinarySearch(s, k)
	if found {
		return s
	}
	return slices.Insert(s, i, k)
}

// Contains reports whether k is in the set.
func (s KindSet) Contains(k Kind) bool {
	_, found := slices.BinarySearch(s, k)
	return found
}

// ContainsAny reports whether any of kinds is in the set.
func (s KindSet) ContainsAny(kinds []Kind) bool {
	return slices.ContainsFunc(kinds, s.Contains)
}

// Strings returns the kinds as plain strings.
func (s KindSet) Strings() []string {
	out := make([]string, len(s))
	for i, k := range s {
		out[i] = string(k)
	}
	return out
}

// String joins the kinds with commas.
func (s KindSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// Found is a marker present in a directory listing.
type Found struct {
	Rule Rule

	// Type is the entry's type bits as reported by the listing.
	Type fs.FileMode
}

// Match is the result of classifying one directory.
type Match struct {
	Kinds   KindSet
	Markers []Found
}

// Empty reports whether no marker matched.
func (m Match) Empty() bool {
	return len(m.Markers) == 0
}

// Descriptions returns the distinct descriptions of the matched markers in
// table order.
func (m Match) Descriptions() []string {
	out := make([]string, 0, len(m.Markers))
	for _, f := range m.Markers {
		if f.Rule.Description != "" && !slices.Contains(out, f.Rule.Description) {
			out = append(out, f.Rule.Description)
		}
	}
	return out
}

// Declaring returns the matched markers that may declare workspace members, in
// table order. Markers that are directories cannot hold a declaration and are skipped.
func (m Match) Declaring() []Found {
	var out []Found
	for _, f := range m.Markers {
		if f.Rule.DeclaresWorkspace && !f.Type.IsDir() {
			out = append(out, f)
		}
	}
	return out
}

// Classify matches a directory listing against the table. It performs no I/O
// and does not recurse; symlinked entries match like regular ones.
func (t *Table) Classify(entries []fs.DirEntry) Match {
	var m Match
	for _, e := range entries {
		r, ok := t.byName[e.Name()]
		if !ok {
			continue
		}
		m.Kinds = m.Kinds.Add(r.Kind)
		m.Markers = append(m.Markers, Found{Rule: r, Type: e.Type()})
	}

	slices.SortFunc(m.Markers, func(a, b Found) int {
		return t.position(a.Rule.Name) - t.position(b.Rule.Name)
	})
	return m
}
