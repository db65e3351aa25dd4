package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/parser"
)

// Project is a directory recognised as a project root.
type Project struct {
	// Path is the absolute, cleaned path of the directory.
	Path string

	// Kinds are the matched project kinds, sorted.
	Kinds marker.KindSet

	// Markers describes the matched markers in table order.
	Markers []string

	// Depth is the smallest distance from any start path containing Path.
	Depth int

	// IsWorkspaceRoot is true when a marker declared a workspace.
	IsWorkspaceRoot bool

	// Members are the declared member patterns; "!" entries exclude.
	Members []string

	// Suppressed is set when the project is a member of a workspace above it.
	Suppressed bool

	// OwnedBy is the path of the workspace root that suppressed the project.
	OwnedBy string
}

// ErrorKind categorises a PathError.
type ErrorKind string

const (
	ErrPermissionDenied     ErrorKind = "permission-denied"
	ErrNotFound             ErrorKind = "not-found"
	ErrIO                   ErrorKind = "io"
	ErrMalformedDeclaration ErrorKind = "malformed-declaration"
)

// PathError is a non-fatal failure tied to one path.
type PathError struct {
	Path string
	Kind ErrorKind
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Path, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *PathError) Unwrap() error {
	return e.Err
}

// newPathError classifies err for path.
func newPathError(path string, err error) *PathError {
	var (
		parseErr *parser.ParseError
		tooLarge *core.FileTooLargeError
	)

	kind := ErrIO
	switch {
	case errors.As(err, &parseErr):
		kind = ErrMalformedDeclaration
	case errors.As(err, &tooLarge):
		kind = ErrIO
	case errors.Is(err, fs.ErrPermission):
		kind = ErrPermissionDenied
	case errors.Is(err, fs.ErrNotExist):
		kind = ErrNotFound
	}
	return &PathError{Path: path, Kind: kind, Err: err}
}

// StartPathError is a start path that does not exist or is not a directory.
type StartPathError struct {
	Path string
	Err  error
}

func (e *StartPathError) Error() string {
	return fmt.Sprintf("invalid start path %q: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartPathError) Unwrap() error {
	return e.Err
}

// ErrNotDirectory is wrapped by StartPathError when a start path is a file.
var ErrNotDirectory = errors.New("not a directory")

// Result is the outcome of one discovery run.
type Result struct {
	// Projects are the reported projects ordered by depth, then path.
	Projects []Project

	// Errors are the per-path failures ordered by path.
	Errors []*PathError

	// Suppressed are the workspace members hidden from Projects, in the same order.
	Suppressed []Project

	// Capped is true when the result cap stopped discovery early.
	Capped bool
}

// Summary returns the one-line run summary.
func (r *Result) Summary() string {
	return fmt.Sprintf("%d projects found, %d paths skipped due to errors", len(r.Projects), len(r.Errors))
}

// IsEmpty reports whether no project was found.
func (r *Result) IsEmpty() bool {
	return len(r.Projects) == 0
}

// isCancel reports whether err only reflects a cancelled run.
func isCancel(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
