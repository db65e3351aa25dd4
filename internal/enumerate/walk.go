package enumerate

import (
	"context"
	"path/filepath"

	"github.com/indaco/projfind/internal/core"
)

// WalkEnumerator walks the tree in-process through a core.FileSystem, one
// depth level at a time, so entries arrive in nondecreasing depth.
// Directories that cannot be listed are yielded but not descended into;
// reporting their error is left to whoever lists them next.
type WalkEnumerator struct {
	fs core.FileSystem
}

// NewWalkEnumerator creates a WalkEnumerator.
func NewWalkEnumerator(fs core.FileSystem) *WalkEnumerator {
	return &WalkEnumerator{fs: fs}
}

// Name returns "walk".
func (w *WalkEnumerator) Name() string { return string(ModeWalk) }

// LevelOrdered reports that entries never decrease in depth.
func (w *WalkEnumerator) LevelOrdered() bool { return true }

// Enumerate implements Enumerator.
func (w *WalkEnumerator) Enumerate(ctx context.Context, root string, opts Options) <-chan Entry {
	out := make(chan Entry, 64)
	go func() {
		defer close(out)
		w.walk(ctx, out, root, opts)
	}()
	return out
}

func (w *WalkEnumerator) walk(ctx context.Context, out chan<- Entry, root string, opts Options) {
	level := []string{root}
	for depth := 1; depth <= opts.MaxDepth && len(level) > 0; depth++ {
		var next []string
		for _, dir := range level {
			entries, err := w.fs.ReadDir(ctx, dir)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				continue
			}

			for _, e := range entries {
				path := filepath.Join(dir, e.Name())
				rel, _ := filepath.Rel(root, path)
				if excluded(opts.Exclude, e.Name(), rel) {
					continue
				}

				typ := TypeOf(e.Type())
				if !send(ctx, out, Entry{Path: path, Depth: depth, Type: typ}) {
					return
				}
				if typ == TypeDir {
					next = append(next, path)
				}
			}
		}
		level = next
	}
}
