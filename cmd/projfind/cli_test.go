package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/indaco/projfind/internal/config"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(origDir)
	})
}

// captureStdout redirects os.Stdout to a file for the duration of fn.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "stdout")
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = f
	defer func() { os.Stdout = orig }()

	fn()

	data, err := os.ReadFile(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRunCLI_FindsProjects(t *testing.T) {
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "svc", "api"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "svc", "api", "go.mod"), []byte("module api\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, tmp)

	var runErr error
	out := captureStdout(t, func() {
		runErr = runCLI([]string{"projfind", "--enumerator", "walk", "--no-color"})
	})
	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), filepath.Join("svc", "api")) {
		t.Errorf("stdout = %q", out)
	}
}

func TestRunCLI_ConfigFile(t *testing.T) {
	tmp := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tmp, "a", "b"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(tmp, "a", "b", "Makefile"), []byte("all:\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgYAML := "max_depth: 1\nenumerator: walk\nformat: json\n"
	if err := os.WriteFile(filepath.Join(tmp, config.DefaultConfigFile), []byte(cfgYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	chdir(t, tmp)

	var runErr error
	out := captureStdout(t, func() {
		runErr = runCLI([]string{"projfind"})
	})
	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}
	if !strings.Contains(out, `"projects": []`) {
		t.Errorf("depth 1 from config should hide a/b, got %s", out)
	}

	out = captureStdout(t, func() {
		runErr = runCLI([]string{"projfind", "--depth", "2"})
	})
	if runErr != nil {
		t.Fatalf("unexpected error: %v", runErr)
	}
	if !strings.Contains(out, `"make"`) {
		t.Errorf("--depth should override the config file, got %s", out)
	}
}

func TestRunCLI_Errors(t *testing.T) {
	tmp := t.TempDir()
	chdir(t, tmp)

	t.Run("missing explicit config", func(t *testing.T) {
		err := runCLI([]string{"projfind", "--config", filepath.Join(tmp, "missing.yaml")})
		var cfgErr *config.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
	})

	t.Run("unknown config key", func(t *testing.T) {
		path := filepath.Join(tmp, "bad.yaml")
		if err := os.WriteFile(path, []byte("depth: 3\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		err := runCLI([]string{"projfind", "--config=" + path})
		if err == nil {
			t.Fatal("expected error for unknown key")
		}
	})

	t.Run("missing start path", func(t *testing.T) {
		err := runCLI([]string{"projfind", "--enumerator", "walk", filepath.Join(tmp, "nope")})
		var cfgErr *config.ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if cfgErr.Field != "path" {
			t.Errorf("Field = %q, want path", cfgErr.Field)
		}
	})
}

func TestConfigPath(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"none", []string{"projfind", "."}, ""},
		{"separate value", []string{"projfind", "--config", "x.yaml", "."}, "x.yaml"},
		{"equals", []string{"projfind", "--config=y.yaml"}, "y.yaml"},
		{"after terminator", []string{"projfind", "--", "--config", "z.yaml"}, ""},
		{"missing value", []string{"projfind", "--config"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := configPath(tt.args); got != tt.want {
				t.Errorf("configPath(%v) = %q, want %q", tt.args, got, tt.want)
			}
		})
	}
}
