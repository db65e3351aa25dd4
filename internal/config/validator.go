package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/tui"
	"github.com/mattn/go-zglob"
)

// ValidationResult represents the result of a validation check.
type ValidationResult struct {
	// Category is the validation category (e.g., "Start Paths", "Limits").
	Category string

	// Field is the config key the check is about.
	Field string

	// Passed indicates if the check passed.
	Passed bool

	// Message provides details about the validation result.
	Message string

	// Warning indicates if this is a warning rather than an error.
	Warning bool

	// Err is the cause of a failed check.
	Err error
}

// Validator validates configuration settings.
type Validator struct {
	fs          core.FileSystem
	cfg         *Config
	validations []ValidationResult
}

// NewValidator creates a new configuration validator.
func NewValidator(fs core.FileSystem, cfg *Config) *Validator {
	return &Validator{
		fs:          fs,
		cfg:         cfg,
		validations: make([]ValidationResult, 0),
	}
}

// Validate runs all validation checks and returns the results.
func (v *Validator) Validate(ctx context.Context) ([]ValidationResult, error) {
	v.validations = make([]ValidationResult, 0)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v.validateStartPaths(ctx)
	v.validateLimits()
	v.validateEnumerator()
	v.validateExclude()
	v.validateAlwaysSurface()
	v.validateFormat()
	v.validateTheme()

	return v.validations, nil
}

// FirstError returns the first failed check in results as a *ConfigError.
// Warnings never fail.
func FirstError(results []ValidationResult) error {
	for _, r := range results {
		if !r.Passed && !r.Warning {
			cause := errors.New(r.Message)
			if r.Err != nil {
				cause = fmt.Errorf("%s: %w", r.Message, r.Err)
			}
			return &ConfigError{Field: r.Field, Err: cause}
		}
	}
	return nil
}

func (v *Validator) validateStartPaths(ctx context.Context) {
	for _, p := range v.cfg.GetPaths() {
		info, err := v.fs.Stat(ctx, p)
		switch {
		case err != nil && os.IsNotExist(err):
			v.addFailure("Start Paths", "path", fmt.Sprintf("start path %q does not exist", p), err)
		case err != nil:
			v.addFailure("Start Paths", "path", fmt.Sprintf("cannot access start path %q", p), err)
		case !info.IsDir():
			v.addFailure("Start Paths", "path", fmt.Sprintf("start path %q is not a directory", p), nil)
		default:
			v.addValidation("Start Paths", "path", true, fmt.Sprintf("start path %q is a directory", p), false)
		}
	}
}

func (v *Validator) validateLimits() {
	if d := v.cfg.GetMaxDepth(); d < 0 {
		v.addFailure("Limits", "max_depth", fmt.Sprintf("max_depth cannot be negative (got %d)", d), nil)
	}
	if n := v.cfg.GetMaxResults(); n < 0 {
		v.addFailure("Limits", "max_results", fmt.Sprintf("max_results cannot be negative (got %d)", n), nil)
	}
	if j := v.cfg.GetJobs(); j < 0 {
		v.addFailure("Limits", "jobs", fmt.Sprintf("jobs cannot be negative (got %d)", j), nil)
	}
}

func (v *Validator) validateEnumerator() {
	mode := v.cfg.GetEnumerator()
	if !mode.IsValid() {
		v.addFailure("Enumerator", "enumerator",
			fmt.Sprintf("unknown enumerator %q (expected one of %s)", mode, strings.Join(enumerate.Modes(), ", ")), nil)
		return
	}

	resolved, _, err := enumerate.Resolve(mode)
	if err != nil {
		v.addFailure("Enumerator", "enumerator", fmt.Sprintf("enumerator %q is unavailable", mode), err)
		return
	}
	if mode == enumerate.ModeAuto && resolved == enumerate.ModeWalk {
		v.addValidation("Enumerator", "enumerator", true, "fd not found, using the built-in walker", false)
	}
}

func (v *Validator) validateExclude() {
	for i, pattern := range v.cfg.GetExclude() {
		if strings.TrimSpace(pattern) == "" {
			v.addFailure("Exclude", "exclude", fmt.Sprintf("exclude pattern %d is empty", i+1), nil)
			continue
		}
		if _, err := zglob.Match(pattern, "x"); err != nil {
			v.addFailure("Exclude", "exclude", fmt.Sprintf("exclude pattern %d: %q is invalid", i+1, pattern), err)
			continue
		}
		if strings.Contains(pattern, "**/**/**") {
			v.addValidation("Exclude", "exclude", true,
				fmt.Sprintf("exclude pattern %d: %q may be overly broad", i+1, pattern), true)
		}
	}
}

func (v *Validator) validateAlwaysSurface() {
	known := make(map[marker.Kind]bool)
	for _, r := range marker.DefaultTable().Rules() {
		known[r.Kind] = true
	}
	for _, k := range v.cfg.GetAlwaysSurface() {
		if !known[k] {
			v.addValidation("Always Surface", "always_surface", true,
				fmt.Sprintf("kind %q matches no marker rule", k), true)
		}
	}
}

// Formats lists the accepted output formats.
func Formats() []string {
	return []string{"text", "table", "json"}
}

func (v *Validator) validateTheme() {
	if v.cfg.Theme == "" || tui.IsValidTheme(v.cfg.Theme) {
		return
	}
	v.addFailure("Output", "theme",
		fmt.Sprintf("unknown theme %q (expected one of %s)", v.cfg.Theme, strings.Join(tui.ValidThemes, ", ")), nil)
}

func (v *Validator) validateFormat() {
	if v.cfg.Format == "" || slices.Contains(Formats(), v.cfg.Format) {
		return
	}
	v.addFailure("Output", "format",
		fmt.Sprintf("unknown format %q (expected one of %s)", v.cfg.Format, strings.Join(Formats(), ", ")), nil)
}

// addValidation adds a validation result to the list.
func (v *Validator) addValidation(category, field string, passed bool, message string, warning bool) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Field:    field,
		Passed:   passed,
		Message:  message,
		Warning:  warning,
	})
}

func (v *Validator) addFailure(category, field, message string, err error) {
	v.validations = append(v.validations, ValidationResult{
		Category: category,
		Field:    field,
		Message:  message,
		Err:      err,
	})
}
