package parser

import "fmt"

// Format represents the supported manifest formats.
type Format string

const (
	// FormatJSON is for strict JSON files (package.json, lerna.json, etc.).
	FormatJSON Format = "json"

	// FormatJSONC is for JSON with comments and trailing commas (deno.jsonc, rush.json).
	FormatJSONC Format = "jsonc"

	// FormatYAML is for YAML files (pnpm-workspace.yaml, pubspec.yaml).
	FormatYAML Format = "yaml"

	// FormatTOML is for TOML files (Cargo.toml, pyproject.toml).
	FormatTOML Format = "toml"

	// FormatGoWork is for go.work files.
	FormatGoWork Format = "gowork"
)

// String returns the string representation of the format.
func (f Format) String() string {
	return string(f)
}

// IsValid returns true if the format is a known valid format.
func (f Format) IsValid() bool {
	switch f {
	case FormatJSON, FormatJSONC, FormatYAML, FormatTOML, FormatGoWork:
		return true
	default:
		return false
	}
}

// ListConfig describes which list to read from a file.
type ListConfig struct {
	// Path is the file path.
	Path string

	// Format specifies the file format.
	Format Format

	// Field is the path to the list. JSON formats use gjson path syntax
	// (e.g. "workspaces.packages", "projects.#.projectFolder"); YAML and TOML
	// use dot notation (e.g. "workspace.members"). Ignored for go.work.
	Field string
}

// ParseError reports malformed file content or a field of the wrong shape.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *ParseError) Unwrap() error {
	return e.Err
}
