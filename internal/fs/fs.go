package fs

import (
	"sort"
)

type EntryKind uint8

const (
	DirEntry  EntryKind = 1
	FileEntry EntryKind = 2
)

type DirEntries struct {
	dir  string
	data map[string]EntryKind
}

func (entries DirEntries) Get(base string) (EntryKind, bool) {
	kind, ok := entries.data[base]
	return kind, ok
}

// Directory listings are sorted so that anything built from them does not
// depend on the order the operating system happened to return
func (entries DirEntries) SortedKeys() []string {
	keys := make([]string, 0, len(entries.data))
	for key := range entries.data {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

type FS interface {
	// The returned entries are immutable and are cached across invocations. Do
	// not mutate them.
	ReadDirectory(path string) (DirEntries, error)
	ReadFile(path string) (string, error)

	// This is part of the interface because the mock interface used for tests
	// should not depend on file system behavior (i.e. different slashes for
	// Windows) while the real interface should.
	Abs(path string) (string, bool)
	Ext(path string) string
	Join(parts ...string) string
	Cwd() string
	Rel(base string, target string) (string, bool)
}
