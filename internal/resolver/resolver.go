package resolver

// Module addresses are "./"-prefixed, "/"-separated paths relative to the
// module root, such as "./lib/util.js". Every specifier that names the same
// file resolves to the same address. Mangled module names are derived from
// addresses, so this is what keeps them unique.

import (
	"errors"
	"fmt"
	"path"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/concatjs/concatjs/internal/fs"
)

var ErrLoadFailed = errors.New("failed to load module")

// Implementations must be safe to call from many goroutines at once
type Loader interface {
	// Resolves "specifier" relative to the module at the address "importer".
	// This does not check that anything exists at the resulting address.
	Locate(specifier string, importer string) (string, bool)

	// Returns an error wrapping "ErrLoadFailed" if nothing can be read at the
	// address
	Load(address string) error
}

func IsRelativeIdentifier(name string) bool {
	return strings.HasPrefix(name, "./") || strings.HasPrefix(name, "../")
}

// Specifiers are resolved like relative URLs. Absolute specifiers start at the
// module root. A ".js" extension is added when the last path segment has none.
func locate(specifier string, importer string) (string, bool) {
	if specifier == "" {
		return "", false
	}

	var p string
	if strings.HasPrefix(specifier, "/") {
		p = path.Clean(specifier[1:])
	} else {
		p = path.Join(path.Dir(strings.TrimPrefix(importer, "./")), specifier)
	}

	// Addresses can't leave the module root
	if p == "." || p == ".." || strings.HasPrefix(p, "../") {
		return "", false
	}

	if path.Ext(p) == "" {
		p += ".js"
	}
	return "./" + p, true
}

func addressFromRelativePath(rel string) (string, bool) {
	rel = path.Clean(strings.ReplaceAll(rel, "\\", "/"))
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") || strings.HasPrefix(rel, "/") {
		return "", false
	}
	return "./" + rel, true
}

////////////////////////////////////////////////////////////////////////////////

type FSLoader struct {
	fs   fs.FS
	root string

	// Remembers whether each address could be loaded. Failures are cached too
	// so a missing module imported by many files is only looked for once.
	loaded *lru.Cache[string, error]
}

const defaultLoadCacheSize = 4096

func NewFSLoader(fs fs.FS, root string, cacheSize int) *FSLoader {
	if cacheSize <= 0 {
		cacheSize = defaultLoadCacheSize
	}

	// This only fails for a non-positive size
	loaded, err := lru.New[string, error](cacheSize)
	if err != nil {
		panic("Internal error")
	}

	if abs, ok := fs.Abs(root); ok {
		root = abs
	}
	return &FSLoader{fs: fs, root: root, loaded: loaded}
}

func (l *FSLoader) Root() string {
	return l.root
}

// Returns the address of a file on disk, or false if the file is outside of
// the module root
func (l *FSLoader) LoadAddress(filePath string) (string, bool) {
	if abs, ok := l.fs.Abs(filePath); ok {
		filePath = abs
	}
	rel, ok := l.fs.Rel(l.root, filePath)
	if !ok {
		return "", false
	}
	return addressFromRelativePath(rel)
}

func (l *FSLoader) Locate(specifier string, importer string) (string, bool) {
	return locate(specifier, importer)
}

func (l *FSLoader) Load(address string) error {
	if err, ok := l.loaded.Get(address); ok {
		return err
	}
	_, err := l.Read(address)
	l.loaded.Add(address, err)
	return err
}

func (l *FSLoader) Read(address string) (string, error) {
	if !strings.HasPrefix(address, "./") {
		return "", fmt.Errorf("%w: %q is not a module address", ErrLoadFailed, address)
	}
	contents, err := l.fs.ReadFile(l.fs.Join(l.root, address[2:]))
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrLoadFailed, address, err)
	}
	return contents, nil
}

////////////////////////////////////////////////////////////////////////////////

// Serves a fixed set of addresses without reading anything. This is useful
// for tests and for callers that already have every file in memory.
type MapLoader struct {
	addresses map[string]bool
}

func NewMapLoader(addresses ...string) *MapLoader {
	l := &MapLoader{addresses: make(map[string]bool, len(addresses))}
	for _, address := range addresses {
		l.addresses[address] = true
	}
	return l
}

func (l *MapLoader) LoadAddress(filePath string) (string, bool) {
	return addressFromRelativePath(strings.TrimPrefix(filePath, "./"))
}

func (l *MapLoader) Locate(specifier string, importer string) (string, bool) {
	return locate(specifier, importer)
}

func (l *MapLoader) Load(address string) error {
	if l.addresses[address] {
		return nil
	}
	return fmt.Errorf("%w %q", ErrLoadFailed, address)
}
