// Package marker holds the static table of project markers and the classifier
// that matches directory listings against it.
package marker

import (
	"fmt"
	"slices"
	"sync"
)

// Kind identifies the ecosystem or toolchain a marker belongs to.
type Kind string

const (
	KindVCS    Kind = "vcs-generic"
	KindNode   Kind = "node"
	KindDeno   Kind = "deno"
	KindBun    Kind = "bun"
	KindRust   Kind = "rust"
	KindGo     Kind = "go"
	KindPython Kind = "python"
	KindDart   Kind = "dart"
	KindPHP    Kind = "php"
	KindJava   Kind = "java"
	KindCMake  Kind = "cmake"
	KindMake   Kind = "make"
	KindJust   Kind = "just"
)

// String returns the kind tag.
func (k Kind) String() string {
	return string(k)
}

// Rule maps one marker name to the kind it signals.
type Rule struct {
	// Name is the exact, case-sensitive entry name.
	Name string

	// Kind is the project kind signalled by the marker.
	Kind Kind

	// DeclaresWorkspace is true when the marker file may list workspace members.
	DeclaresWorkspace bool

	// Description is a human-readable label.
	Description string
}

// Table is an immutable marker lookup table. It is safe for concurrent use.
type Table struct {
	rules  []Rule
	byName map[string]Rule
	pos    map[string]int
}

// NewTable builds a Table. Marker names must be unique and non-empty.
func NewTable(rules []Rule) (*Table, error) {
	t := &Table{
		rules:  slices.Clone(rules),
		byName: make(map[string]Rule, len(rules)),
		pos:    make(map[string]int, len(rules)),
	}
	for i, r := range rules {
		if r.Name == "" {
			return nil, fmt.Errorf("marker rule %d: empty name", i+1)
		}
		if r.Kind == "" {
			return nil, fmt.Errorf("marker rule %q: empty kind", r.Name)
		}
		if _, dup := t.byName[r.Name]; dup {
			return nil, fmt.Errorf("marker rule %q: duplicate name", r.Name)
		}
		t.byName[r.Name] = r
		t.pos[r.Name] = i
	}
	return t, nil
}

// Lookup returns the rule for an exact entry name.
func (t *Table) Lookup(name string) (Rule, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Rules returns a copy of the rules in table order.
func (t *Table) Rules() []Rule {
	return slices.Clone(t.rules)
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}

// position returns the table index of a marker name.
func (t *Table) position(name string) int {
	return t.pos[name]
}

// DefaultRules returns the built-in marker rules.
// Workspace-declaring manifests come before plain markers of the same kind.
func DefaultRules() []Rule {
	return []Rule{
		{Name: ".git", Kind: KindVCS, Description: "Git repository"},
		{Name: ".hg", Kind: KindVCS, Description: "Mercurial repository"},
		{Name: ".svn", Kind: KindVCS, Description: "Subversion working copy"},
		{Name: ".jj", Kind: KindVCS, Description: "Jujutsu repository"},

		{Name: "package.json", Kind: KindNode, DeclaresWorkspace: true, Description: "Node.js (package.json)"},
		{Name: "pnpm-workspace.yaml", Kind: KindNode, DeclaresWorkspace: true, Description: "pnpm workspace"},
		{Name: "lerna.json", Kind: KindNode, DeclaresWorkspace: true, Description: "Lerna monorepo"},
		{Name: "rush.json", Kind: KindNode, DeclaresWorkspace: true, Description: "Rush monorepo"},
		{Name: "nx.json", Kind: KindNode, Description: "Nx workspace"},
		{Name: "turbo.json", Kind: KindNode, Description: "Turborepo"},

		{Name: "deno.json", Kind: KindDeno, DeclaresWorkspace: true, Description: "Deno (deno.json)"},
		{Name: "deno.jsonc", Kind: KindDeno, DeclaresWorkspace: true, Description: "Deno (deno.jsonc)"},
		{Name: "bunfig.toml", Kind: KindBun, Description: "Bun (bunfig.toml)"},

		{Name: "Cargo.toml", Kind: KindRust, DeclaresWorkspace: true, Description: "Rust (Cargo.toml)"},

		{Name: "go.work", Kind: KindGo, DeclaresWorkspace: true, Description: "Go workspace (go.work)"},
		{Name: "go.mod", Kind: KindGo, Description: "Go module (go.mod)"},

		{Name: "pyproject.toml", Kind: KindPython, DeclaresWorkspace: true, Description: "Python (pyproject.toml)"},
		{Name: "setup.py", Kind: KindPython, Description: "Python (setup.py)"},

		{Name: "pubspec.yaml", Kind: KindDart, DeclaresWorkspace: true, Description: "Dart/Flutter (pubspec.yaml)"},
		{Name: "composer.json", Kind: KindPHP, Description: "PHP (composer.json)"},

		{Name: "pom.xml", Kind: KindJava, Description: "Maven (pom.xml)"},
		{Name: "build.gradle", Kind: KindJava, Description: "Gradle (build.gradle)"},
		{Name: "build.gradle.kts", Kind: KindJava, Description: "Gradle (build.gradle.kts)"},

		{Name: "CMakeLists.txt", Kind: KindCMake, Description: "CMake"},
		{Name: "Makefile", Kind: KindMake, Description: "Make"},
		{Name: "justfile", Kind: KindJust, Description: "just"},
		{Name: "Justfile", Kind: KindJust, Description: "just"},
	}
}

// DefaultTable returns the process-wide table built from DefaultRules.
var DefaultTable = sync.OnceValue(func() *Table {
	t, err := NewTable(DefaultRules())
	if err != nil {
		panic(err)
	}
	return t
})

// DefaultAlwaysSurface lists the kinds that are never suppressed by workspace membership.
func DefaultAlwaysSurface() []Kind {
	return []Kind{KindVCS}
}
