package marker

import (
	"io/fs"
	"slices"
	"testing"
)

type entry struct {
	name string
	mode fs.FileMode
}

func (e entry) Name() string               { return e.name }
func (e entry) IsDir() bool                { return e.mode.IsDir() }
func (e entry) Type() fs.FileMode          { return e.mode.Type() }
func (e entry) Info() (fs.FileInfo, error) { return nil, nil }

func entries(es ...entry) []fs.DirEntry {
	out := make([]fs.DirEntry, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

func TestNewTable_Validation(t *testing.T) {
	tests := []struct {
		name    string
		rules   []Rule
		wantErr bool
	}{
		{"valid", []Rule{{Name: "a", Kind: "x"}}, false},
		{"empty name", []Rule{{Name: "", Kind: "x"}}, true},
		{"empty kind", []Rule{{Name: "a"}}, true},
		{"duplicate", []Rule{{Name: "a", Kind: "x"}, {Name: "a", Kind: "y"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTable(tt.rules)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTable() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultTable_Lookup(t *testing.T) {
	table := DefaultTable()
	if table.Len() != len(table.Rules()) {
		t.Fatalf("Len() = %d, want %d", table.Len(), len(table.Rules()))
	}

	tests := []struct {
		name      string
		wantKind  Kind
		declares  bool
		wantFound bool
	}{
		{"package.json", KindNode, true, true},
		{".git", KindVCS, false, true},
		{"Cargo.toml", KindRust, true, true},
		{"go.mod", KindGo, false, true},
		{"go.work", KindGo, true, true},
		{"Justfile", KindJust, false, true},
		{"PACKAGE.JSON", "", false, false},
		{"README.md", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, ok := table.Lookup(tt.name)
			if ok != tt.wantFound {
				t.Fatalf("Lookup(%q) found = %v, want %v", tt.name, ok, tt.wantFound)
			}
			if !ok {
				return
			}
			if r.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", r.Kind, tt.wantKind)
			}
			if r.DeclaresWorkspace != tt.declares {
				t.Errorf("DeclaresWorkspace = %v, want %v", r.DeclaresWorkspace, tt.declares)
			}
		})
	}
}

func TestDefaultTable_IsShared(t *testing.T) {
	if DefaultTable() != DefaultTable() {
		t.Error("DefaultTable should return the same instance")
	}
}

func TestClassify(t *testing.T) {
	table := DefaultTable()

	t.Run("no markers", func(t *testing.T) {
		m := table.Classify(entries(entry{name: "main.c"}, entry{name: "docs", mode: fs.ModeDir}))
		if !m.Empty() {
			t.Errorf("expected empty match, got %+v", m)
		}
	})

	t.Run("multiple kinds", func(t *testing.T) {
		m := table.Classify(entries(
			entry{name: ".git", mode: fs.ModeDir},
			entry{name: "Makefile"},
			entry{name: "package.json"},
			entry{name: "pnpm-workspace.yaml"},
		))

		want := KindSet{KindMake, KindNode, KindVCS}
		if !slices.Equal(m.Kinds, want) {
			t.Errorf("Kinds = %v, want %v", m.Kinds, want)
		}
		if len(m.Markers) != 4 {
			t.Fatalf("len(Markers) = %d, want 4", len(m.Markers))
		}

		declaring := m.Declaring()
		if len(declaring) != 2 {
			t.Fatalf("len(Declaring) = %d, want 2", len(declaring))
		}
		if declaring[0].Rule.Name != "package.json" || declaring[1].Rule.Name != "pnpm-workspace.yaml" {
			t.Errorf("Declaring order = %q, %q", declaring[0].Rule.Name, declaring[1].Rule.Name)
		}
	})

	t.Run("descriptions follow table order", func(t *testing.T) {
		m := table.Classify(entries(
			entry{name: "go.mod"},
			entry{name: "justfile"},
			entry{name: "Justfile"},
			entry{name: ".git", mode: fs.ModeDir},
		))
		want := []string{"Git repository", "Go module (go.mod)", "just"}
		if got := m.Descriptions(); !slices.Equal(got, want) {
			t.Errorf("Descriptions() = %v, want %v", got, want)
		}
	})

	t.Run("symlinked marker counts", func(t *testing.T) {
		m := table.Classify(entries(entry{name: "Cargo.toml", mode: fs.ModeSymlink}))
		if !m.Kinds.Contains(KindRust) {
			t.Fatalf("expected rust kind, got %v", m.Kinds)
		}
		if m.Markers[0].Type&fs.ModeSymlink == 0 {
			t.Error("marker should be reported as symlink")
		}
	})

	t.Run("directory named like a manifest is not declaring", func(t *testing.T) {
		m := table.Classify(entries(entry{name: "package.json", mode: fs.ModeDir}))
		if m.Empty() {
			t.Fatal("expected a match")
		}
		if len(m.Declaring()) != 0 {
			t.Error("a directory cannot hold a workspace declaration")
		}
	})
}

func TestKindSet(t *testing.T) {
	var s KindSet
	s = s.Add(KindRust).Add(KindNode).Add(KindRust)

	if !slices.Equal(s, KindSet{KindNode, KindRust}) {
		t.Errorf("set = %v", s)
	}
	if s.String() != "node,rust" {
		t.Errorf("String() = %q", s.String())
	}
	if !s.ContainsAny([]Kind{KindVCS, KindRust}) {
		t.Error("ContainsAny should find rust")
	}
	if s.ContainsAny([]Kind{KindVCS}) {
		t.Error("ContainsAny should not find vcs")
	}
}
