package resolver

import (
	"errors"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/fs"
)

func TestIsRelativeIdentifier(t *testing.T) {
	assert.True(t, IsRelativeIdentifier("./a"))
	assert.True(t, IsRelativeIdentifier("../a"))
	assert.False(t, IsRelativeIdentifier("a"))
	assert.False(t, IsRelativeIdentifier("/a"))
	assert.False(t, IsRelativeIdentifier("."))
	assert.False(t, IsRelativeIdentifier(".a"))
	assert.False(t, IsRelativeIdentifier(""))
}

func TestLocate(t *testing.T) {
	expectLocate := func(specifier string, importer string, expected string) {
		t.Helper()
		address, ok := locate(specifier, importer)
		assert.True(t, ok, "%s from %s", specifier, importer)
		assert.Equal(t, expected, address, "%s from %s", specifier, importer)
	}
	expectLocateFail := func(specifier string, importer string) {
		t.Helper()
		_, ok := locate(specifier, importer)
		assert.False(t, ok, "%s from %s", specifier, importer)
	}

	expectLocate("./m", "./x.js", "./m.js")
	expectLocate("./m.js", "./x.js", "./m.js")
	expectLocate("./b/c", "./a/x.js", "./a/b/c.js")
	expectLocate("../m", "./a/x.js", "./m.js")
	expectLocate("../b/m", "./a/c/x.js", "./a/b/m.js")
	expectLocate("./lib.es6", "./x.js", "./lib.es6")
	expectLocate("/lib/m", "./a/b/x.js", "./lib/m.js")
	expectLocate("m", "./a/x.js", "./a/m.js")

	// Different specifiers for the same file give the same address
	a, _ := locate("./a/../b.js", "./x.js")
	b, _ := locate("./b", "./x.js")
	assert.Equal(t, a, b)

	expectLocateFail("", "./x.js")
	expectLocateFail("../m", "./x.js")
	expectLocateFail("../../m", "./a/x.js")
	expectLocateFail("/", "./x.js")
	expectLocateFail("/..", "./x.js")
}

func TestMapLoader(t *testing.T) {
	loader := NewMapLoader("./a.js", "./lib/b.js")

	assert.NoError(t, loader.Load("./a.js"))
	assert.NoError(t, loader.Load("./lib/b.js"))

	err := loader.Load("./c.js")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.Contains(t, err.Error(), `"./c.js"`)

	address, ok := loader.LoadAddress("lib/b.js")
	assert.True(t, ok)
	assert.Equal(t, "./lib/b.js", address)

	address, ok = loader.LoadAddress("./lib/../a.js")
	assert.True(t, ok)
	assert.Equal(t, "./a.js", address)

	_, ok = loader.LoadAddress("../a.js")
	assert.False(t, ok)
}

func TestFSLoader(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{
		"/proj/main.js":     "import {x} from './lib/x';",
		"/proj/lib/x.js":    "export var x = 1;",
		"/other/outside.js": "",
	})
	loader := NewFSLoader(mockFS, "/proj", 0)
	assert.Equal(t, "/proj", loader.Root())

	address, ok := loader.LoadAddress("/proj/lib/x.js")
	assert.True(t, ok)
	assert.Equal(t, "./lib/x.js", address)

	_, ok = loader.LoadAddress("/other/outside.js")
	assert.False(t, ok)

	address, ok = loader.Locate("./lib/x", "./main.js")
	require.True(t, ok)
	assert.NoError(t, loader.Load(address))

	contents, err := loader.Read(address)
	require.NoError(t, err)
	assert.Equal(t, "export var x = 1;", contents)

	err = loader.Load("./lib/missing.js")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrLoadFailed))
	assert.True(t, errors.Is(err, syscall.ENOENT))

	// The failure is cached
	assert.Equal(t, err, loader.Load("./lib/missing.js"))

	_, err = loader.Read("lib/x.js")
	assert.True(t, errors.Is(err, ErrLoadFailed))
}
