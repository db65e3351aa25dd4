package config

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/marker"
)

/* ------------------------------------------------------------------------- */
/* LOAD CONFIG                                                               */
/* ------------------------------------------------------------------------- */

func TestLoadConfig(t *testing.T) {
	t.Run("default file", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		dir := writeConfig(t, DefaultConfigFile, "max_depth: 3\nexclude:\n  - dist\nverbose: true\n")
		runInDir(t, dir, func() {
			cfg, err := LoadConfigFn("")
			checkError(t, err, false)
			if cfg == nil {
				t.Fatal("expected config")
			}
			if cfg.GetMaxDepth() != 3 {
				t.Errorf("MaxDepth = %d, want 3", cfg.GetMaxDepth())
			}
			if !slices.Equal(cfg.Exclude, []string{"dist"}) {
				t.Errorf("Exclude = %v", cfg.Exclude)
			}
			if !cfg.Verbose {
				t.Error("Verbose = false")
			}
		})
	})

	t.Run("missing default file", func(t *testing.T) {
		t.Setenv(EnvConfigPath, "")
		runInDir(t, t.TempDir(), func() {
			cfg, err := LoadConfigFn("")
			checkError(t, err, false)
			if cfg != nil {
				t.Errorf("expected nil config, got %+v", cfg)
			}
		})
	})

	t.Run("from env", func(t *testing.T) {
		dir := writeConfig(t, "custom.yaml", "max_results: 7\n")
		t.Setenv(EnvConfigPath, filepath.Join(dir, "custom.yaml"))

		cfg, err := LoadConfigFn("")
		checkError(t, err, false)
		if cfg.GetMaxResults() != 7 {
			t.Errorf("MaxResults = %d, want 7", cfg.GetMaxResults())
		}
	})

	t.Run("explicit path wins over env", func(t *testing.T) {
		envDir := writeConfig(t, "env.yaml", "jobs: 2\n")
		flagDir := writeConfig(t, "flag.yaml", "jobs: 4\n")
		t.Setenv(EnvConfigPath, filepath.Join(envDir, "env.yaml"))

		cfg, err := LoadConfigFn(filepath.Join(flagDir, "flag.yaml"))
		checkError(t, err, false)
		if cfg.GetJobs() != 4 {
			t.Errorf("Jobs = %d, want 4", cfg.GetJobs())
		}
	})

	t.Run("missing explicit file", func(t *testing.T) {
		_, err := LoadConfigFn(filepath.Join(t.TempDir(), "nope.yaml"))
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("expected ConfigError, got %v", err)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("expected not-exist cause, got %v", err)
		}
	})

	t.Run("unknown key rejected", func(t *testing.T) {
		dir := writeConfig(t, "bad.yaml", "max_dpeth: 3\n")
		_, err := LoadConfigFn(filepath.Join(dir, "bad.yaml"))
		checkError(t, err, true)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		dir := writeConfig(t, "bad.yaml", "exclude: [unclosed\n")
		_, err := LoadConfigFn(filepath.Join(dir, "bad.yaml"))
		checkError(t, err, true)
	})
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	checkError(t, err, false)
	if cfg.GetMaxDepth() != core.DefaultMaxDepth {
		t.Errorf("MaxDepth = %d, want default", cfg.GetMaxDepth())
	}
}

/* ------------------------------------------------------------------------- */
/* GETTERS                                                                   */
/* ------------------------------------------------------------------------- */

func TestConfig_Getters(t *testing.T) {
	var nilCfg *Config
	if nilCfg.GetMaxDepth() != core.DefaultMaxDepth || nilCfg.GetMaxResults() != 0 || nilCfg.GetJobs() != 0 {
		t.Error("nil config should yield defaults")
	}
	if !slices.Equal(nilCfg.GetPaths(), []string{"."}) {
		t.Errorf("GetPaths() = %v", nilCfg.GetPaths())
	}
	if nilCfg.GetEnumerator() != enumerate.ModeAuto {
		t.Errorf("GetEnumerator() = %q", nilCfg.GetEnumerator())
	}
	if nilCfg.GetExclude() != nil || nilCfg.GetAlwaysSurface() != nil {
		t.Error("nil config should leave excludes and always-surface to the defaults")
	}

	cfg := &Config{
		Paths:         []string{"a", "b"},
		MaxDepth:      intPtr(0),
		AlwaysSurface: []string{" node ", "vcs-generic"},
		Exclude:       []string{},
	}
	if cfg.GetMaxDepth() != 0 {
		t.Errorf("GetMaxDepth() = %d, want 0", cfg.GetMaxDepth())
	}
	if got := cfg.GetAlwaysSurface(); !slices.Equal(got, []marker.Kind{marker.KindNode, marker.KindVCS}) {
		t.Errorf("GetAlwaysSurface() = %v", got)
	}
	if cfg.GetExclude() == nil {
		t.Error("an explicit empty exclude list must be kept")
	}

	def := Default()
	if def.GetMaxDepth() != core.DefaultMaxDepth || def.Format != "text" {
		t.Errorf("Default() = %+v", def)
	}
}

func TestCanonicalPaths(t *testing.T) {
	dir := t.TempDir()
	realDir := filepath.Join(dir, "realDir")
	if err := os.Mkdir(realDir, 0o755); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link")
	if err := os.Symlink(realDir, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	got, err := CanonicalPaths([]string{realDir, link})
	checkError(t, err, false)
	if got[0] != got[1] {
		t.Errorf("symlink not resolved: %v", got)
	}

	_, err = CanonicalPaths([]string{filepath.Join(dir, "missing")})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}
