package discovery

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/indaco/projfind/internal/core"
	"github.com/indaco/projfind/internal/enumerate"
	"github.com/indaco/projfind/internal/marker"
	"github.com/indaco/projfind/internal/workspace"
	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"
)

// Options controls one discovery run.
type Options struct {
	// StartPaths are the directories to search. They must exist.
	StartPaths []string

	// MaxDepth bounds project depth relative to the start paths.
	MaxDepth int

	// MaxResults caps the number of reported projects; 0 means unlimited.
	MaxResults int

	// Jobs is the worker count; 0 uses GOMAXPROCS.
	Jobs int

	// Exclude prunes enumeration; nil uses enumerate.DefaultExcludes.
	Exclude []string

	// AlwaysSurface lists kinds never suppressed by workspace membership;
	// nil uses marker.DefaultAlwaysSurface.
	AlwaysSurface []marker.Kind
}

// Service runs project discovery.
type Service struct {
	fs         core.FileSystem
	table      *marker.Table
	reader     *workspace.Reader
	enumerator enumerate.Enumerator
	logger     *log.Logger
}

// NewService creates a discovery Service. A nil logger discards output.
func NewService(fs core.FileSystem, enumerator enumerate.Enumerator, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Service{
		fs:         fs,
		table:      marker.DefaultTable(),
		reader:     workspace.NewReader(fs, logger),
		enumerator: enumerator,
		logger:     logger,
	}
}

// unit is one directory candidate.
type unit struct {
	path    string
	symlink bool
}

// Discover runs discovery over opts.StartPaths. It returns an error only for
// an unusable start path or a cancelled parent context; everything else is
// reported through Result.Errors.
func (s *Service) Discover(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	roots, err := s.startPaths(ctx, opts.StartPaths)
	if err != nil {
		return nil, err
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	exclude := opts.Exclude
	if exclude == nil {
		exclude = enumerate.DefaultExcludes
	}
	alwaysSurface := opts.AlwaysSurface
	if alwaysSurface == nil {
		alwaysSurface = marker.DefaultAlwaysSurface()
	}

	s.logger.Debug("discovery started",
		"roots", roots,
		"enumerator", s.enumerator.Name(),
		"markers", s.table.Len(),
		"max_depth", opts.MaxDepth,
		"max_results", opts.MaxResults,
		"jobs", jobs,
	)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	r := &run{
		svc:           s,
		ctx:           runCtx,
		cancel:        cancel,
		roots:         roots,
		maxDepth:      opts.MaxDepth,
		limit:         opts.MaxResults,
		alwaysSurface: alwaysSurface,
		seen:          xsync.NewMapOf[string, struct{}](),
		set:           newResultSet(),
		units:         make(chan unit, jobs*4),
	}

	events := make(chan event, jobs*4)
	var producers errgroup.Group
	for i, root := range roots {
		producers.Go(func() error {
			s.produce(runCtx, i, root, enumerate.Options{MaxDepth: opts.MaxDepth, Exclude: exclude}, events)
			return nil
		})
	}
	go func() {
		_ = producers.Wait()
		close(events)
	}()

	var workers errgroup.Group
	for range jobs {
		workers.Go(func() error {
			r.work()
			return nil
		})
	}

	capped := r.dispatch(events, isLevelOrdered(s.enumerator))
	close(r.units)
	_ = workers.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	projects, errs := r.set.snapshot()
	Resolve(projects, alwaysSurface)
	result := aggregate(projects, errs, opts.MaxResults)
	result.Capped = capped

	s.logger.Debug("discovery finished",
		"projects", len(result.Projects),
		"suppressed", len(result.Suppressed),
		"errors", len(result.Errors),
		"capped", capped,
	)
	return result, nil
}

// startPaths resolves the start paths to absolute paths with symlinks
// evaluated, checks that they are directories and removes duplicates.
func (s *Service) startPaths(ctx context.Context, paths []string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	roots := make([]string, 0, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, &StartPathError{Path: p, Err: err}
		}
		info, err := s.fs.Stat(ctx, abs)
		if err != nil {
			return nil, &StartPathError{Path: p, Err: err}
		}
		if !info.IsDir() {
			return nil, &StartPathError{Path: p, Err: ErrNotDirectory}
		}
		canonical, err := s.fs.EvalSymlinks(ctx, abs)
		if err != nil {
			return nil, &StartPathError{Path: p, Err: err}
		}
		if !slices.Contains(roots, canonical) {
			roots = append(roots, canonical)
		}
	}
	slices.Sort(roots)
	return roots, nil
}

// produce reports the start path and its enumerated directories to the
// dispatcher, then a final done event. Every event is delivered; the
// dispatcher drains until all producers have finished.
func (s *Service) produce(ctx context.Context, idx int, root string, opts enumerate.Options, events chan<- event) {
	defer func() { events <- event{producer: idx, done: true} }()

	events <- event{producer: idx, unit: unit{path: root}}
	if opts.MaxDepth <= 0 {
		return
	}

	for entry := range s.enumerator.Enumerate(ctx, root, opts) {
		if ctx.Err() != nil {
			continue
		}
		if entry.Err != nil {
			s.logger.Warn("enumeration ended early", "root", root, "err", entry.Err)
			continue
		}

		var u unit
		switch entry.Type {
		case enumerate.TypeDir:
			u = unit{path: entry.Path}
		case enumerate.TypeSymlink:
			u = unit{path: entry.Path, symlink: true}
		default:
			continue
		}
		events <- event{producer: idx, unit: u, depth: entry.Depth}
	}
}

// process classifies one directory and records the outcome.
func (r *run) process(u unit) {
	s, ctx := r.svc, r.ctx
	path := u.path
	depth, _ := rootDepth(path, r.roots)

	if u.symlink {
		info, err := s.fs.Stat(ctx, path)
		if err != nil || !info.IsDir() {
			return
		}
		target, err := s.fs.EvalSymlinks(ctx, path)
		if err != nil {
			return
		}
		// Targets inside the searched area are reported under their real
		// path, once. Anything else keeps the link path.
		if d, ok := rootDepth(target, r.roots); ok && d <= r.maxDepth {
			if _, loaded := r.seen.LoadOrStore(target, struct{}{}); loaded {
				s.logger.Debug("skipping symlink to visited directory", "path", path, "target", target)
				return
			}
			path, depth = target, d
		}
	}

	entries, err := s.fs.ReadDir(ctx, path)
	if err != nil {
		if ctx.Err() != nil && isCancel(err) {
			return
		}
		s.logger.Debug("skipping unreadable directory", "path", path, "err", err)
		r.set.addError(newPathError(path, err))
		return
	}

	match := s.table.Classify(entries)
	if match.Empty() {
		return
	}

	decl, declErrs := s.reader.Read(ctx, path, match.Declaring())
	if ctx.Err() != nil {
		return
	}
	for _, err := range declErrs {
		var declErr *workspace.DeclarationError
		errPath := path
		if errors.As(err, &declErr) {
			errPath = declErr.Path
		}
		r.set.addError(newPathError(errPath, err))
	}

	r.set.add(Project{
		Path:            path,
		Kinds:           match.Kinds,
		Depth:           depth,
		Markers:         match.Descriptions(),
		IsWorkspaceRoot: decl.IsRoot,
		Members:         decl.Members,
	})
}

// rootDepth returns the smallest depth of path below any root containing it.
func rootDepth(path string, roots []string) (int, bool) {
	best := -1
	for _, root := range roots {
		rel, err := filepath.Rel(root, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		d := 0
		if rel != "." {
			d = strings.Count(rel, string(filepath.Separator)) + 1
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return max(best, 0), best >= 0
}

// resultSet is the shared accumulator.
type resultSet struct {
	mu       sync.Mutex
	projects []Project
	errors   []*PathError
	errPaths map[string]struct{}
}

func newResultSet() *resultSet {
	return &resultSet{errPaths: make(map[string]struct{})}
}

func (r *resultSet) add(p Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = append(r.projects, p)
}

// addError records at most one error per path.
func (r *resultSet) addError(e *PathError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.errPaths[e.Path]; dup {
		return
	}
	r.errPaths[e.Path] = struct{}{}
	r.errors = append(r.errors, e)
}

func (r *resultSet) snapshot() ([]Project, []*PathError) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.projects), slices.Clone(r.errors)
}
