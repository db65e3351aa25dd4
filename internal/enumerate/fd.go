package enumerate

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/indaco/projfind/internal/core"
)

// FdEnumerator streams entries from the fd binary. Entry types are taken
// from an Lstat of every reported path.
type FdEnumerator struct {
	bin         string
	fs          core.FileSystem
	logger      *log.Logger
	execCommand func(ctx context.Context, name string, arg ...string) *exec.Cmd
}

// NewFdEnumerator creates an FdEnumerator running bin, usually the path
// returned by Resolve.
func NewFdEnumerator(bin string, fs core.FileSystem, logger *log.Logger) *FdEnumerator {
	if bin == "" {
		bin = "fd"
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &FdEnumerator{
		bin:         bin,
		fs:          fs,
		logger:      logger,
		execCommand: exec.CommandContext,
	}
}

// Name returns "fd".
func (f *FdEnumerator) Name() string { return string(ModeFd) }

// Args returns the fd arguments used for one enumeration.
func Args(root string, opts Options) []string {
	args := []string{
		"--hidden",
		"--no-ignore",
		"--absolute-path",
		"--print0",
		"--max-depth", strconv.Itoa(opts.MaxDepth),
	}
	for _, e := range opts.Exclude {
		args = append(args, "--exclude", e)
	}
	return append(args, ".", root)
}

// Enumerate implements Enumerator. A failing fd process ends the stream with
// an Entry carrying Err; entries already streamed stay valid.
func (f *FdEnumerator) Enumerate(ctx context.Context, root string, opts Options) <-chan Entry {
	out := make(chan Entry, 64)
	go func() {
		defer close(out)
		if opts.MaxDepth <= 0 {
			return
		}
		if err := f.run(ctx, out, root, opts); err != nil && ctx.Err() == nil {
			send(ctx, out, Entry{Path: root, Err: err})
		}
	}()
	return out
}

func (f *FdEnumerator) run(ctx context.Context, out chan<- Entry, root string, opts Options) error {
	cmd := f.execCommand(ctx, f.bin, Args(root, opts)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("fd stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start fd: %w", err)
	}

	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	scanner.Split(splitNUL)

	stopped := false
	for scanner.Scan() {
		entry, ok := f.entry(ctx, root, scanner.Text())
		if !ok {
			continue
		}
		if !send(ctx, out, entry) {
			stopped = true
			break
		}
	}
	scanErr := scanner.Err()

	if stopped {
		// ctx is done, so the process is being killed.
		_ = cmd.Wait()
		return nil
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			f.logger.Warn("fd reported errors", "root", root, "stderr", msg)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// fd exits nonzero when some directories were unreadable; its output is still usable.
			return nil
		}
		return fmt.Errorf("fd failed: %w", err)
	}
	if scanErr != nil {
		return fmt.Errorf("reading fd output: %w", scanErr)
	}
	return nil
}

func (f *FdEnumerator) entry(ctx context.Context, root, line string) (Entry, bool) {
	if line == "" {
		return Entry{}, false
	}
	path := filepath.Clean(line)
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return Entry{}, false
	}

	info, err := f.fs.Lstat(ctx, path)
	if err != nil {
		f.logger.Debug("entry vanished", "path", path, "err", err)
		return Entry{}, false
	}
	return Entry{Path: path, Depth: depthOf(rel), Type: TypeOf(info.Mode())}, true
}

func splitNUL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, 0); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
