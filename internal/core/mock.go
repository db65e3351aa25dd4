package core

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// MockFileSystem is an in-memory FileSystem for tests. Parent directories of
// every registered path are created implicitly.
type MockFileSystem struct {
	mu       sync.RWMutex
	files    map[string][]byte
	dirs     map[string]bool
	symlinks map[string]string
	errs     map[string]error
}

// NewMockFileSystem returns an empty MockFileSystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files:    make(map[string][]byte),
		dirs:     make(map[string]bool),
		symlinks: make(map[string]string),
		errs:     make(map[string]error),
	}
}

// Verify MockFileSystem implements FileSystem.
var _ FileSystem = (*MockFileSystem)(nil)

// SetFile registers a regular file.
func (m *MockFileSystem) SetFile(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.files[path] = data
	m.addParents(path)
}

// GetFile returns the content of a registered file.
func (m *MockFileSystem) GetFile(path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.files[filepath.Clean(path)]
	return data, ok
}

// SetDir registers an (empty) directory.
func (m *MockFileSystem) SetDir(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.dirs[path] = true
	m.addParents(path)
}

// SetSymlink registers a symlink. Relative targets resolve against the link's directory.
func (m *MockFileSystem) SetSymlink(path, target string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	path = filepath.Clean(path)
	m.symlinks[path] = target
	m.addParents(path)
}

// SetError makes every operation on path fail with err.
func (m *MockFileSystem) SetError(path string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[filepath.Clean(path)] = err
}

func (m *MockFileSystem) addParents(path string) {
	for dir := filepath.Dir(path); ; dir = filepath.Dir(dir) {
		m.dirs[dir] = true
		if dir == filepath.Dir(dir) {
			return
		}
	}
}

// resolve follows symlinks on the final path element.
func (m *MockFileSystem) resolve(path string) (string, error) {
	for range 16 {
		target, ok := m.symlinks[path]
		if !ok {
			return path, nil
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(path), target)
		}
		path = filepath.Clean(target)
	}
	return "", &fs.PathError{Op: "stat", Path: path, Err: fs.ErrInvalid}
}

func (m *MockFileSystem) ReadDir(ctx context.Context, path string) ([]fs.DirEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	if err := m.errs[path]; err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}

	resolved, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	if !m.dirs[resolved] {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}

	var entries []fs.DirEntry
	for name := range m.files {
		if filepath.Dir(name) == resolved {
			entries = append(entries, mockDirEntry{name: filepath.Base(name)})
		}
	}
	for name := range m.dirs {
		if name != resolved && filepath.Dir(name) == resolved {
			entries = append(entries, mockDirEntry{name: filepath.Base(name), mode: fs.ModeDir})
		}
	}
	for name := range m.symlinks {
		if filepath.Dir(name) == resolved {
			entries = append(entries, mockDirEntry{name: filepath.Base(name), mode: fs.ModeSymlink})
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

func (m *MockFileSystem) ReadFile(ctx context.Context, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	if err := m.errs[path]; err != nil {
		return nil, &fs.PathError{Op: "open", Path: path, Err: err}
	}

	resolved, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	data, ok := m.files[resolved]
	if !ok {
		return nil, &fs.PathError{Op: "open", Path: path, Err: fs.ErrNotExist}
	}
	return data, nil
}

func (m *MockFileSystem) Stat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	resolved, err := m.resolve(path)
	if err != nil {
		return nil, err
	}
	return m.info(path, resolved, false)
}

func (m *MockFileSystem) Lstat(ctx context.Context, path string) (fs.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	return m.info(path, path, true)
}

func (m *MockFileSystem) info(path, resolved string, lstat bool) (fs.FileInfo, error) {
	if err := m.errs[path]; err != nil {
		return nil, &fs.PathError{Op: "stat", Path: path, Err: err}
	}
	name := filepath.Base(path)
	if lstat {
		if _, ok := m.symlinks[resolved]; ok {
			return mockFileInfo{name: name, mode: fs.ModeSymlink}, nil
		}
	}
	if m.dirs[resolved] {
		return mockFileInfo{name: name, mode: fs.ModeDir | 0o755}, nil
	}
	if data, ok := m.files[resolved]; ok {
		return mockFileInfo{name: name, mode: 0o644, size: int64(len(data))}, nil
	}
	return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
}

// EvalSymlinks resolves symlinks in every component of path.
func (m *MockFileSystem) EvalSymlinks(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	path = filepath.Clean(path)
	if err := m.errs[path]; err != nil {
		return "", &fs.PathError{Op: "lstat", Path: path, Err: err}
	}

	resolved, err := m.evalComponents(path, 0)
	if err != nil {
		return "", err
	}
	if !m.dirs[resolved] {
		if _, ok := m.files[resolved]; !ok {
			return "", &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrNotExist}
		}
	}
	return resolved, nil
}

// evalComponents walks path one element at a time, replacing each symlink
// with its resolved target.
func (m *MockFileSystem) evalComponents(path string, hops int) (string, error) {
	dir := filepath.Dir(path)
	if dir == path {
		return path, nil
	}
	parent, err := m.evalComponents(dir, hops)
	if err != nil {
		return "", err
	}
	current := filepath.Join(parent, filepath.Base(path))
	for {
		target, ok := m.symlinks[current]
		if !ok {
			return current, nil
		}
		if hops++; hops > 16 {
			return "", &fs.PathError{Op: "lstat", Path: path, Err: fs.ErrInvalid}
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current, err = m.evalComponents(filepath.Clean(target), hops)
		if err != nil {
			return "", err
		}
	}
}

type mockDirEntry struct {
	name string
	mode fs.FileMode
}

func (e mockDirEntry) Name() string               { return e.name }
func (e mockDirEntry) IsDir() bool                { return e.mode.IsDir() }
func (e mockDirEntry) Type() fs.FileMode          { return e.mode.Type() }
func (e mockDirEntry) Info() (fs.FileInfo, error) { return mockFileInfo{name: e.name, mode: e.mode}, nil }

type mockFileInfo struct {
	name string
	mode fs.FileMode
	size int64
}

func (i mockFileInfo) Name() string       { return i.name }
func (i mockFileInfo) Size() int64        { return i.size }
func (i mockFileInfo) Mode() fs.FileMode  { return i.mode }
func (i mockFileInfo) ModTime() time.Time { return time.Time{} }
func (i mockFileInfo) IsDir() bool        { return i.mode.IsDir() }
func (i mockFileInfo) Sys() any           { return nil }
