package config

import (
	"context"
	"errors"
	"os/exec"
	"slices"
	"testing"

	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/enumerate"
)

func stubLookPath(t *testing.T, found bool) {
	t.Helper()
	orig := enumerate.LookPath
	enumerate.LookPath = func(string) (string, error) {
		if found {
			return "/usr/bin/fd", nil
		}
		return "", exec.ErrNotFound
	}
	t.Cleanup(func() { enumerate.LookPath = orig })
}

func check(v *Validator) error {
	results, err := v.Validate(context.Background())
	if err != nil {
		return err
	}
	return FirstError(results)
}

func TestValidator_FirstError(t *testing.T) {
	fsys := core.NewMockFileSystem()
	fsys.SetDir("/src")
	fsys.SetFile("/src/file.txt", nil)

	tests := []struct {
		name      string
		cfg       *Config
		haveFd    bool
		wantField string
	}{
		{"valid", &Config{Paths: []string{"/src"}}, false, ""},
		{"missing path", &Config{Paths: []string{"/nope"}}, true, "path"},
		{"file path", &Config{Paths: []string{"/src/file.txt"}}, true, "path"},
		{"negative depth", &Config{Paths: []string{"/src"}, MaxDepth: intPtr(-1)}, true, "max_depth"},
		{"negative cap", &Config{Paths: []string{"/src"}, MaxResults: intPtr(-2)}, true, "max_results"},
		{"negative jobs", &Config{Paths: []string{"/src"}, Jobs: intPtr(-1)}, true, "jobs"},
		{"unknown enumerator", &Config{Paths: []string{"/src"}, Enumerator: "find"}, true, "enumerator"},
		{"fd missing", &Config{Paths: []string{"/src"}, Enumerator: "fd"}, false, "enumerator"},
		{"fd present", &Config{Paths: []string{"/src"}, Enumerator: "fd"}, true, ""},
		{"empty exclude", &Config{Paths: []string{"/src"}, Exclude: []string{""}}, true, "exclude"},
		{"unknown format", &Config{Paths: []string{"/src"}, Format: "xml"}, true, "format"},
		{"known theme", &Config{Paths: []string{"/src"}, Theme: "dracula"}, true, ""},
		{"unknown theme", &Config{Paths: []string{"/src"}, Theme: "neon"}, true, "theme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubLookPath(t, tt.haveFd)

			err := check(NewValidator(fsys, tt.cfg))
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidator_FdMissingWrapsCause(t *testing.T) {
	stubLookPath(t, false)
	fsys := core.NewMockFileSystem()
	fsys.SetDir("/src")

	err := check(NewValidator(fsys, &Config{Paths: []string{"/src"}, Enumerator: "fd"}))
	if !errors.Is(err, enumerate.ErrFdNotFound) {
		t.Errorf("expected ErrFdNotFound, got %v", err)
	}
}

func TestValidator_Warnings(t *testing.T) {
	stubLookPath(t, false)
	fsys := core.NewMockFileSystem()
	fsys.SetDir("/src")

	cfg := &Config{
		Paths:         []string{"/src"},
		AlwaysSurface: []string{"cobol"},
		Exclude:       []string{"**/**/**/x"},
	}
	results, err := NewValidator(fsys, cfg).Validate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := FirstError(results); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	var warnings []string
	for _, r := range results {
		if r.Warning {
			warnings = append(warnings, r.Field)
		}
	}
	want := []string{"exclude", "always_surface"}
	if !slices.Equal(warnings, want) {
		t.Errorf("warnings = %v, want %v: %+v", warnings, want, results)
	}
}

func TestValidator_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := NewValidator(core.NewMockFileSystem(), Default()).Validate(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
