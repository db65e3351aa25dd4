// Package workspace reads workspace member declarations out of marker files and
// matches nested paths against the declared member patterns.
package workspace

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/parser"
)

// Source describes where a marker file declares its members.
type Source struct {
	// Format is the marker file format.
	Format parser.Format

	// Members are the fields holding member patterns, tried in order.
	Members []string

	// Exclude are fields whose entries are returned as "!pattern".
	Exclude []string

	// Default is used when the file exists but declares no members field.
	Default []string

	// Table names a field whose mere presence declares a workspace with no
	// members of its own.
	Table string
}

// DefaultSources returns the declaration sources keyed by marker name.
func DefaultSources() map[string]Source {
	return map[string]Source{
		"package.json":        {Format: parser.FormatJSON, Members: []string{"workspaces.packages", "workspaces"}},
		"pnpm-workspace.yaml": {Format: parser.FormatYAML, Members: []string{"packages"}},
		"lerna.json":          {Format: parser.FormatJSON, Members: []string{"packages"}, Default: []string{"packages/*"}},
		"rush.json":           {Format: parser.FormatJSONC, Members: []string{"projects.#.projectFolder"}},
		"deno.json":           {Format: parser.FormatJSONC, Members: []string{"workspace", "workspaces"}},
		"deno.jsonc":          {Format: parser.FormatJSONC, Members: []string{"workspace", "workspaces"}},
		"Cargo.toml":          {Format: parser.FormatTOML, Members: []string{"workspace.members"}, Exclude: []string{"workspace.exclude"}, Table: "workspace"},
		"go.work":             {Format: parser.FormatGoWork},
		"pyproject.toml":      {Format: parser.FormatTOML, Members: []string{"tool.uv.workspace.members"}, Exclude: []string{"tool.uv.workspace.exclude"}, Table: "tool.uv.workspace"},
		"pubspec.yaml":        {Format: parser.FormatYAML, Members: []string{"workspace"}},
	}
}

// Declaration is the combined member declaration of one directory.
type Declaration struct {
	// IsRoot is true when at least one marker declared a workspace, even an empty one.
	IsRoot bool

	// Members are the member patterns in marker table order, duplicates removed.
	Members []string
}

// DeclarationError is a marker file that could not be read or parsed.
type DeclarationError struct {
	Path string
	Err  error
}

func (e *DeclarationError) Error() string {
	return fmt.Sprintf("workspace declaration %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *DeclarationError) Unwrap() error {
	return e.Err
}

// Reader extracts workspace declarations.
type Reader struct {
	parser  *parser.Reader
	sources map[string]Source
	logger  *log.Logger
}

// NewReader creates a Reader using DefaultSources. A nil logger discards output.
func NewReader(fs core.FileSystem, logger *log.Logger) *Reader {
	return NewReaderWithSources(fs, DefaultSources(), logger)
}

// NewReaderWithSources creates a Reader with custom declaration sources.
func NewReaderWithSources(fs core.FileSystem, sources map[string]Source, logger *log.Logger) *Reader {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Reader{
		parser:  parser.NewReader(fs),
		sources: sources,
		logger:  logger,
	}
}

// Read inspects the declaring markers found in dir. A marker that cannot be
// read or parsed contributes no members and is reported in errs; it never
// stops the other markers from being read.
func (r *Reader) Read(ctx context.Context, dir string, markers []marker.Found) (Declaration, []error) {
	var (
		decl Declaration
		errs []error
	)

	for _, m := range markers {
		src, ok := r.sources[m.Rule.Name]
		if !ok || !m.Rule.DeclaresWorkspace {
			continue
		}

		file := filepath.Join(dir, m.Rule.Name)
		patterns, declared, err := r.readSource(ctx, file, src)
		if err != nil {
			if ctx.Err() != nil {
				errs = append(errs, err)
				break
			}
			r.logger.Warn("ignoring workspace declaration", "path", file, "err", err)
			errs = append(errs, &DeclarationError{Path: file, Err: err})
			continue
		}
		if !declared {
			continue
		}

		decl.IsRoot = true
		for _, p := range patterns {
			if !slices.Contains(decl.Members, p) {
				decl.Members = append(decl.Members, p)
			}
		}
	}

	if decl.IsRoot {
		r.logger.Debug("workspace root", "path", dir, "members", decl.Members)
	}
	return decl, errs
}

func (r *Reader) readSource(ctx context.Context, file string, src Source) ([]string, bool, error) {
	doc, err := r.parser.Load(ctx, file, src.Format)
	if err != nil {
		return nil, false, err
	}

	members, found, err := doc.List(src.Members...)
	if err != nil {
		return nil, false, err
	}
	if !found {
		switch {
		case src.Default != nil:
			members = slices.Clone(src.Default)
		case src.Table != "":
			present, err := doc.Has(src.Table)
			if err != nil {
				return nil, false, err
			}
			if !present {
				return nil, false, nil
			}
		default:
			return nil, false, nil
		}
	}

	for _, field := range src.Exclude {
		excluded, _, err := doc.List(field)
		if err != nil {
			return nil, false, err
		}
		for _, e := range excluded {
			members = append(members, "!"+e)
		}
	}

	return members, true, nil
}
