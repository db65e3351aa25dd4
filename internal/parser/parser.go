package parser

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/indaco/projfind/internal/core"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/mod/modfile"
)

// Reader reads string lists from manifest files.
type Reader struct {
	fs core.FileSystem
}

// NewReader creates a new Reader with the given filesystem.
func NewReader(fs core.FileSystem) *Reader {
	return &Reader{fs: fs}
}

// Document is a loaded manifest file whose lists can be queried repeatedly.
type Document struct {
	cfg  ListConfig
	data []byte
}

// Load reads a manifest file once so that several fields can be extracted.
func (r *Reader) Load(ctx context.Context, path string, format Format) (*Document, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}

	if !format.IsValid() {
		return nil, fmt.Errorf("invalid format: %s", format)
	}

	data, err := r.fs.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}

	return &Document{cfg: ListConfig{Path: path, Format: format}, data: data}, nil
}

// List returns the list at the first of fields present in the document.
func (d *Document) List(fields ...string) ([]string, bool, error) {
	return ParseList(d.data, d.cfg, fields...)
}

// Has reports whether field is present in the document, whatever its value.
// go.work files have no fields and always report false.
func (d *Document) Has(field string) (bool, error) {
	switch d.cfg.Format {
	case FormatJSON, FormatJSONC:
		data := d.data
		if d.cfg.Format == FormatJSONC {
			data = StripJSONC(data)
		}
		if !gjson.ValidBytes(data) {
			return false, &ParseError{Path: d.cfg.Path, Err: errors.New("invalid JSON")}
		}
		return gjson.GetBytes(data, field).Exists(), nil
	case FormatYAML, FormatTOML:
		var obj map[string]any
		var err error
		if d.cfg.Format == FormatYAML {
			err = yaml.Unmarshal(d.data, &obj)
		} else {
			err = toml.Unmarshal(d.data, &obj)
		}
		if err != nil {
			return false, &ParseError{Path: d.cfg.Path, Err: err}
		}
		_, found, err := getNestedValue(obj, field)
		if err != nil {
			return false, &ParseError{Path: d.cfg.Path, Err: err}
		}
		return found, nil
	default:
		return false, nil
	}
}

// ReadList reads the list at the first of fields that exists in the file.
// found is false when none of the fields is present, which is not an error.
// Content that cannot be parsed, or a field that is not a list of strings,
// yields a *ParseError. Read failures are returned wrapped.
func (r *Reader) ReadList(ctx context.Context, path string, format Format, fields ...string) (values []string, found bool, err error) {
	doc, err := r.Load(ctx, path, format)
	if err != nil {
		return nil, false, err
	}
	return doc.List(fields...)
}

// ParseList extracts a list from already loaded content. See ReadList.
func ParseList(data []byte, cfg ListConfig, fields ...string) ([]string, bool, error) {
	if len(fields) == 0 && cfg.Field != "" {
		fields = []string{cfg.Field}
	}

	switch cfg.Format {
	case FormatJSON:
		return readJSON(data, cfg.Path, fields)
	case FormatJSONC:
		return readJSON(StripJSONC(data), cfg.Path, fields)
	case FormatYAML:
		var obj map[string]any
		if err := yaml.Unmarshal(data, &obj); err != nil {
			return nil, false, &ParseError{Path: cfg.Path, Err: err}
		}
		return readMap(obj, cfg.Path, fields)
	case FormatTOML:
		var obj map[string]any
		if err := toml.Unmarshal(data, &obj); err != nil {
			return nil, false, &ParseError{Path: cfg.Path, Err: err}
		}
		return readMap(obj, cfg.Path, fields)
	case FormatGoWork:
		return readGoWork(data, cfg.Path)
	default:
		return nil, false, fmt.Errorf("unsupported format: %s", cfg.Format)
	}
}

// readJSON extracts a list from JSON data using gjson paths.
func readJSON(data []byte, path string, fields []string) ([]string, bool, error) {
	if len(fields) == 0 {
		return nil, false, fmt.Errorf("field is required for JSON format")
	}

	if !gjson.ValidBytes(data) {
		return nil, false, &ParseError{Path: path, Err: errors.New("invalid JSON")}
	}

	for _, field := range fields {
		result := gjson.GetBytes(data, field)
		if !result.Exists() {
			continue
		}

		if !result.IsArray() {
			return nil, true, &ParseError{Path: path, Err: fmt.Errorf("field %q is not an array", field)}
		}

		items := result.Array()
		values := make([]string, 0, len(items))
		for i, item := range items {
			if item.Type != gjson.String {
				return nil, true, &ParseError{Path: path, Err: fmt.Errorf("field %q: element %d is not a string", field, i)}
			}
			values = append(values, item.Str)
		}
		return values, true, nil
	}

	return nil, false, nil
}

// readMap extracts a list from a decoded YAML or TOML document.
func readMap(obj map[string]any, path string, fields []string) ([]string, bool, error) {
	if len(fields) == 0 {
		return nil, false, fmt.Errorf("field is required for structured formats")
	}

	for _, field := range fields {
		value, found, err := getNestedValue(obj, field)
		if err != nil {
			return nil, false, &ParseError{Path: path, Err: err}
		}
		if !found {
			continue
		}

		list, err := toStringList(value)
		if err != nil {
			return nil, true, &ParseError{Path: path, Err: fmt.Errorf("field %q: %w", field, err)}
		}
		return list, true, nil
	}

	return nil, false, nil
}

// readGoWork returns the directories named by the use directives of a go.work file.
func readGoWork(data []byte, path string) ([]string, bool, error) {
	wf, err := modfile.ParseWork(path, data, nil)
	if err != nil {
		return nil, false, &ParseError{Path: path, Err: err}
	}

	if len(wf.Use) == 0 {
		return nil, false, nil
	}

	values := make([]string, 0, len(wf.Use))
	for _, use := range wf.Use {
		values = append(values, use.Path)
	}
	return values, true, nil
}

// getNestedValue retrieves a value from a nested map using dot notation.
// Example: "tool.uv.workspace.members" accesses obj["tool"]["uv"]["workspace"]["members"].
// A missing key is reported through found; a non-object on the way is an error.
func getNestedValue(obj map[string]any, field string) (any, bool, error) {
	if field == "" {
		return nil, false, fmt.Errorf("field path cannot be empty")
	}

	parts := strings.Split(field, ".")
	current := any(obj)

	for i, part := range parts {
		currentMap, ok := current.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("field %q is not an object", strings.Join(parts[:i], "."))
		}

		value, exists := currentMap[part]
		if !exists {
			return nil, false, nil
		}

		current = value
	}

	return current, true, nil
}

// toStringList converts a decoded array into strings.
func toStringList(value any) ([]string, error) {
	if value == nil {
		return nil, nil
	}

	items, ok := value.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", value)
	}

	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("element %d is not a string", i)
		}
		out = append(out, s)
	}
	return out, nil
}
