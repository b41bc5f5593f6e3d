package fs

import (
	"os"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

type realFS struct {
	// Stores the file entries for directories we've listed before
	entriesMutex sync.RWMutex
	entries      map[string]entriesOrErr

	// Many files import the same few modules, so the same file is often read
	// several times during one build
	files *lru.Cache[string, fileOrErr]

	// For the current working directory
	cwd string
}

type entriesOrErr struct {
	entries DirEntries
	err     error
}

type fileOrErr struct {
	contents string
	err      error
}

type RealFSOptions struct {
	// The number of file contents kept in memory. Zero means the default.
	FileCacheSize int
}

const defaultFileCacheSize = 1024

func RealFS(options RealFSOptions) FS {
	size := options.FileCacheSize
	if size <= 0 {
		size = defaultFileCacheSize
	}

	// This only fails for a non-positive size
	files, err := lru.New[string, fileOrErr](size)
	if err != nil {
		panic("Internal error")
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = ""
	} else if real, err := filepath.EvalSymlinks(cwd); err == nil {
		// Resolve symlinks in the current working directory so that paths
		// computed relative to it match the paths of the input files
		cwd = real
	}

	return &realFS{
		entries: make(map[string]entriesOrErr),
		files:   files,
		cwd:     cwd,
	}
}

func (fs *realFS) ReadDirectory(dir string) (DirEntries, error) {
	// First, check the cache
	fs.entriesMutex.RLock()
	cached, ok := fs.entries[dir]
	fs.entriesMutex.RUnlock()

	// Cache hit: stop now
	if ok {
		return cached.entries, cached.err
	}

	// Cache miss: read the directory entries
	entries := DirEntries{dir: dir, data: make(map[string]EntryKind)}
	items, err := os.ReadDir(dir)
	if err == nil {
		for _, item := range items {
			// Follow symlinks so the cache contains the kind of the target
			info, statErr := os.Stat(filepath.Join(dir, item.Name()))
			if statErr != nil {
				continue // Skip over this entry
			}
			if info.IsDir() {
				entries.data[item.Name()] = DirEntry
			} else {
				entries.data[item.Name()] = FileEntry
			}
		}
	} else {
		entries = DirEntries{}
	}

	// Update the cache unconditionally. Even if the read failed, we don't want to
	// retry again later. The directory is inaccessible so trying again is wasted.
	fs.entriesMutex.Lock()
	fs.entries[dir] = entriesOrErr{entries: entries, err: err}
	fs.entriesMutex.Unlock()
	return entries, err
}

func (fs *realFS) ReadFile(path string) (string, error) {
	if cached, ok := fs.files.Get(path); ok {
		return cached.contents, cached.err
	}

	buffer, err := os.ReadFile(path)

	// Unwrap to get the underlying error
	if pathErr, ok := err.(*os.PathError); ok {
		err = pathErr.Unwrap()
	}

	fs.files.Add(path, fileOrErr{contents: string(buffer), err: err})
	return string(buffer), err
}

func (*realFS) Abs(p string) (string, bool) {
	abs, err := filepath.Abs(p)
	return abs, err == nil
}

func (*realFS) Ext(p string) string {
	return filepath.Ext(p)
}

func (*realFS) Join(parts ...string) string {
	return filepath.Clean(filepath.Join(parts...))
}

func (fs *realFS) Cwd() string {
	return fs.cwd
}

func (*realFS) Rel(base string, target string) (string, bool) {
	if rel, err := filepath.Rel(base, target); err == nil {
		return rel, true
	}
	return "", false
}
