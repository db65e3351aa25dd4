package workspace

import (
	"context"
	"errors"
	"io/fs"
	"slices"
	"testing"

	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/parser"
)

func found(names ...string) []marker.Found {
	table := marker.DefaultTable()
	out := make([]marker.Found, 0, len(names))
	for _, n := range names {
		r, ok := table.Lookup(n)
		if !ok {
			panic("unknown marker " + n)
		}
		out = append(out, marker.Found{Rule: r})
	}
	return out
}

func TestReader_Read(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		markers  []string
		wantRoot bool
		want     []string
	}{
		{
			name:     "npm workspaces array",
			files:    map[string]string{"package.json": `{"workspaces": ["packages/*"]}`},
			markers:  []string{"package.json"},
			wantRoot: true,
			want:     []string{"packages/*"},
		},
		{
			name:    "plain package.json",
			files:   map[string]string{"package.json": `{"name": "x"}`},
			markers: []string{"package.json"},
		},
		{
			name: "pnpm and package.json merged without duplicates",
			files: map[string]string{
				"package.json":        `{"workspaces": {"packages": ["packages/*"]}}`,
				"pnpm-workspace.yaml": "packages:\n  - packages/*\n  - apps/*\n",
			},
			markers:  []string{"package.json", "pnpm-workspace.yaml"},
			wantRoot: true,
			want:     []string{"packages/*", "apps/*"},
		},
		{
			name:     "lerna default",
			files:    map[string]string{"lerna.json": `{"version": "1.0.0"}`},
			markers:  []string{"lerna.json"},
			wantRoot: true,
			want:     []string{"packages/*"},
		},
		{
			name:     "cargo exclude",
			files:    map[string]string{"Cargo.toml": "[workspace]\nmembers = [\"crates/*\"]\nexclude = [\"crates/old\"]\n"},
			markers:  []string{"Cargo.toml"},
			wantRoot: true,
			want:     []string{"crates/*", "!crates/old"},
		},
		{
			name:     "empty cargo workspace is still a root",
			files:    map[string]string{"Cargo.toml": "[workspace]\nmembers = []\n"},
			markers:  []string{"Cargo.toml"},
			wantRoot: true,
			want:     nil,
		},
		{
			name:     "bare cargo workspace table is a root",
			files:    map[string]string{"Cargo.toml": "[package]\nname = \"tool\"\n\n[workspace]\n"},
			markers:  []string{"Cargo.toml"},
			wantRoot: true,
			want:     nil,
		},
		{
			name:    "cargo package without workspace",
			files:   map[string]string{"Cargo.toml": "[package]\nname = \"tool\"\n"},
			markers: []string{"Cargo.toml"},
		},
		{
			name:     "bare uv workspace table is a root",
			files:    map[string]string{"pyproject.toml": "[project]\nname = \"x\"\n\n[tool.uv.workspace]\n"},
			markers:  []string{"pyproject.toml"},
			wantRoot: true,
			want:     nil,
		},
		{
			name:     "go.work",
			files:    map[string]string{"go.work": "go 1.22\n\nuse ./svc\n"},
			markers:  []string{"go.work"},
			wantRoot: true,
			want:     []string{"./svc"},
		},
		{
			name:     "uv workspace",
			files:    map[string]string{"pyproject.toml": "[tool.uv.workspace]\nmembers = [\"libs/*\"]\nexclude = [\"libs/skip\"]\n"},
			markers:  []string{"pyproject.toml"},
			wantRoot: true,
			want:     []string{"libs/*", "!libs/skip"},
		},
		{
			name:     "deno jsonc",
			files:    map[string]string{"deno.jsonc": "{\n  // members\n  \"workspace\": [\"./a\",],\n}"},
			markers:  []string{"deno.jsonc"},
			wantRoot: true,
			want:     []string{"./a"},
		},
		{
			name:     "dart pub workspace",
			files:    map[string]string{"pubspec.yaml": "name: root\nworkspace:\n  - pkgs/a\n"},
			markers:  []string{"pubspec.yaml"},
			wantRoot: true,
			want:     []string{"pkgs/a"},
		},
		{
			name:    "non-declaring markers ignored",
			files:   map[string]string{"go.mod": "module x\n"},
			markers: []string{".git", "go.mod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := core.NewMockFileSystem()
			for name, content := range tt.files {
				fsys.SetFile("/repo/"+name, []byte(content))
			}

			decl, errs := NewReader(fsys, nil).Read(context.Background(), "/repo", found(tt.markers...))
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if decl.IsRoot != tt.wantRoot {
				t.Errorf("IsRoot = %v, want %v", decl.IsRoot, tt.wantRoot)
			}
			if !slices.Equal(decl.Members, tt.want) {
				t.Errorf("Members = %v, want %v", decl.Members, tt.want)
			}
		})
	}
}

func TestReader_Read_Errors(t *testing.T) {
	ctx := context.Background()
	fsys := core.NewMockFileSystem()
	fsys.SetFile("/repo/package.json", []byte(`{"workspaces": [`))
	fsys.SetFile("/repo/pnpm-workspace.yaml", []byte("packages:\n  - apps/*\n"))
	fsys.SetFile("/locked/Cargo.toml", []byte("[workspace]\n"))
	fsys.SetError("/locked/Cargo.toml", fs.ErrPermission)

	reader := NewReader(fsys, nil)

	t.Run("malformed marker keeps others", func(t *testing.T) {
		decl, errs := reader.Read(ctx, "/repo", found("package.json", "pnpm-workspace.yaml"))
		if len(errs) != 1 {
			t.Fatalf("len(errs) = %d, want 1", len(errs))
		}

		var declErr *DeclarationError
		if !errors.As(errs[0], &declErr) {
			t.Fatalf("expected DeclarationError, got %T", errs[0])
		}
		if declErr.Path != "/repo/package.json" {
			t.Errorf("Path = %q", declErr.Path)
		}
		var parseErr *parser.ParseError
		if !errors.As(errs[0], &parseErr) {
			t.Errorf("expected wrapped ParseError, got %v", errs[0])
		}

		if !decl.IsRoot || !slices.Equal(decl.Members, []string{"apps/*"}) {
			t.Errorf("decl = %+v", decl)
		}
	})

	t.Run("unreadable marker", func(t *testing.T) {
		decl, errs := reader.Read(ctx, "/locked", found("Cargo.toml"))
		if len(errs) != 1 || !errors.Is(errs[0], fs.ErrPermission) {
			t.Fatalf("errs = %v, want one permission error", errs)
		}
		if decl.IsRoot {
			t.Error("unreadable marker should not declare a workspace")
		}
	})
}
