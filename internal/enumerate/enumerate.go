// Package enumerate streams the filesystem entries below a start path.
//
// Two implementations exist: FdEnumerator runs the external fd binary and
// WalkEnumerator walks the tree in-process. Both yield entries with depth >= 1
// relative to the root, never descend into symlinked directories, and prune
// excluded names.
package enumerate

import (
	"context"
	"fmt"
	"io/fs"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"
)

// EntryType is the coarse type of an enumerated entry.
type EntryType int

const (
	TypeFile EntryType = iota
	TypeDir
	TypeSymlink
	TypeOther
)

func (t EntryType) String() string {
	switch t {
	case TypeFile:
		return "file"
	case TypeDir:
		return "dir"
	case TypeSymlink:
		return "symlink"
	default:
		return "other"
	}
}

// TypeOf maps file mode bits to an EntryType.
func TypeOf(mode fs.FileMode) EntryType {
	switch {
	case mode&fs.ModeSymlink != 0:
		return TypeSymlink
	case mode.IsDir():
		return TypeDir
	case mode.IsRegular():
		return TypeFile
	default:
		return TypeOther
	}
}

// Entry is one enumerated path. Err is set when the stream itself failed;
// such an entry carries no path information beyond what is known.
type Entry struct {
	Path  string
	Depth int
	Type  EntryType
	Err   error
}

// DefaultExcludes are pruned from every enumeration unless overridden.
var DefaultExcludes = []string{"node_modules", ".git", "__pycache__", "target", "vendor"}

// Options controls one enumeration.
type Options struct {
	// MaxDepth bounds the depth of yielded entries. Zero yields nothing.
	MaxDepth int

	// Exclude holds glob patterns matched against entry names and root-relative paths.
	Exclude []string
}

// Enumerator streams entries below root. The returned channel is closed when
// the enumeration ends, fails, or ctx is cancelled. Consumers may stop
// reading after cancelling ctx.
type Enumerator interface {
	Name() string
	Enumerate(ctx context.Context, root string, opts Options) <-chan Entry
}

// Mode selects an enumerator implementation.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeFd   Mode = "fd"
	ModeWalk Mode = "walk"
)

// Modes lists the accepted mode names.
func Modes() []string {
	return []string{string(ModeAuto), string(ModeFd), string(ModeWalk)}
}

// IsValid reports whether m names a known mode.
func (m Mode) IsValid() bool {
	switch m {
	case ModeAuto, ModeFd, ModeWalk:
		return true
	}
	return false
}

// ErrFdNotFound is returned by Resolve when fd is required but missing.
var ErrFdNotFound = fmt.Errorf("fd executable not found in PATH")

// LookPath is the hook used to locate fd.
var LookPath = exec.LookPath

// Resolve decides which implementation a mode stands for. Auto picks fd when
// it is on PATH and the walker otherwise; an explicit fd request without the
// binary fails.
func Resolve(mode Mode) (Mode, string, error) {
	switch mode {
	case ModeWalk:
		return ModeWalk, "", nil
	case ModeFd, ModeAuto, "":
		path, err := LookPath("fd")
		if err == nil {
			return ModeFd, path, nil
		}
		if mode == ModeFd {
			return "", "", ErrFdNotFound
		}
		return ModeWalk, "", nil
	default:
		return "", "", fmt.Errorf("unknown enumerator %q (expected one of %s)", mode, strings.Join(Modes(), ", "))
	}
}

// excluded reports whether an entry name or its root-relative path matches a pattern.
func excluded(patterns []string, name, rel string) bool {
	rel = filepath.ToSlash(rel)
	for _, p := range patterns {
		if p == name || p == rel {
			return true
		}
		if ok, err := zglob.Match(p, name); err == nil && ok {
			return true
		}
		if strings.Contains(p, "/") {
			if ok, err := zglob.Match(p, rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// depthOf returns the number of path elements in rel.
func depthOf(rel string) int {
	if rel == "." || rel == "" {
		return 0
	}
	return strings.Count(filepath.ToSlash(rel), "/") + 1
}

func send(ctx context.Context, out chan<- Entry, e Entry) bool {
	select {
	case out <- e:
		return true
	case <-ctx.Done():
		return false
	}
}
