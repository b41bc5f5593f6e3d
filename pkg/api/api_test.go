package api_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/test"
	"github.com/concatjs/concatjs/pkg/api"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for path, contents := range files {
		absPath := filepath.Join(dir, filepath.FromSlash(path))
		require.NoError(t, os.MkdirAll(filepath.Dir(absPath), 0755))
		require.NoError(t, os.WriteFile(absPath, []byte(contents), 0644))
	}
	return dir
}

func TestRewrite(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"m.js": "export var a = 1;",
	})

	result := api.Rewrite("import {a} from './m';\nexport var b = a;", filepath.Join(dir, "x.js"), api.RewriteOptions{
		ModuleRoot: dir,
	})
	require.Empty(t, result.Errors)
	require.Empty(t, result.Warnings)
	test.AssertEqualWithDiff(t, string(result.JS), `goog.provide("module$x");
goog.require("module$m");
var b$$module$x = module$m.a;
var module$x = {
  b: b$$module$x
};
`)
	assert.Equal(t, "module$x", result.ModuleName)
	assert.True(t, result.IsES6Module)
	assert.False(t, result.IsLegacyModule)
	assert.Equal(t, []string{"module$m"}, result.Requires)
}

func TestRewriteConvention(t *testing.T) {
	dir := writeFiles(t, map[string]string{"m.js": ""})

	result := api.Rewrite("import './m';", filepath.Join(dir, "x.js"), api.RewriteOptions{
		ModuleRoot: dir,
		Convention: api.Convention{RequireFunc: "my.require"},
	})
	require.Empty(t, result.Errors)
	test.AssertEqualWithDiff(t, string(result.JS), "my.require(\"module$m\");\n")
}

func TestRewriteLegacyModule(t *testing.T) {
	dir := t.TempDir()
	result := api.Rewrite("goog.provide('a');", filepath.Join(dir, "a.js"), api.RewriteOptions{ModuleRoot: dir})
	require.Empty(t, result.Errors)
	assert.True(t, result.IsLegacyModule)
	assert.False(t, result.IsES6Module)
	test.AssertEqualWithDiff(t, string(result.JS), "goog.provide(\"a\");\n")
}

func TestRewriteLoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "x.js")

	result := api.Rewrite("import {a} from './missing';\na;", path, api.RewriteOptions{ModuleRoot: dir})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "load-error", result.Errors[0].ID)
	assert.Equal(t, "Failed to load module \"./missing\"", result.Errors[0].Text)
	require.NotNil(t, result.Errors[0].Location)
	assert.Equal(t, path, result.Errors[0].Location.File)
	assert.Equal(t, 1, result.Errors[0].Location.Line)
	assert.Nil(t, result.JS)

	// The error can be turned into a warning
	result = api.Rewrite("import {a} from './missing';\na;", path, api.RewriteOptions{
		ModuleRoot: dir,
		LogOptions: api.LogOptions{
			LogOverride: map[string]api.LogLevel{"load-error": api.LogLevelWarning},
		},
	})
	require.Empty(t, result.Errors)
	require.Len(t, result.Warnings, 1)
	test.AssertEqualWithDiff(t, string(result.JS), "goog.require(\"module$missing\");\nmodule$missing.a;\n")
}

func TestRewriteErrors(t *testing.T) {
	dir := t.TempDir()

	result := api.Rewrite("var a;", filepath.Join(filepath.Dir(dir), "a.js"), api.RewriteOptions{ModuleRoot: dir})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Text, "is outside of the module root")

	result = api.Rewrite("var a;", "", api.RewriteOptions{ModuleRoot: dir})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Must provide the path of the file being rewritten", result.Errors[0].Text)

	result = api.Rewrite("var a;", filepath.Join(dir, "a.js"), api.RewriteOptions{ModuleRoot: filepath.Join(dir, "missing")})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Text, "Invalid module root")

	result = api.Rewrite("var a;", filepath.Join(dir, "a.js"), api.RewriteOptions{
		ModuleRoot: dir,
		LogOptions: api.LogOptions{LogOverride: map[string]api.LogLevel{"not-an-id": api.LogLevelWarning}},
	})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "Invalid log override: \"not-an-id\" is not a message ID", result.Errors[0].Text)

	result = api.Rewrite("var a = ;", filepath.Join(dir, "a.js"), api.RewriteOptions{ModuleRoot: dir})
	require.NotEmpty(t, result.Errors)
	assert.Nil(t, result.JS)
}

func TestBundle(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"main.js":   "import {b} from './lib/b';\nconsole.log(b);",
		"lib/b.js":  "export var b = 1;",
		"lib/.x.js": "ignored",
	})

	result := api.Bundle([]string{dir}, api.BuildOptions{ModuleRoot: dir, Parallelism: 1})
	require.Empty(t, result.Errors)
	require.Len(t, result.OutputFiles, 1)
	assert.Empty(t, result.OutputFiles[0].Path)
	test.AssertEqualWithDiff(t, string(result.OutputFiles[0].Contents), "// "+filepath.Join(dir, "lib", "b.js")+`
goog.provide("module$lib$b");
var b$$module$lib$b = 1;
var module$lib$b = {
  b: b$$module$lib$b
};

// `+filepath.Join(dir, "main.js")+`
goog.require("module$lib$b");
console.log(module$lib$b.b);
`)
}

func TestBundleMissingProvide(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "goog.require('missing');",
	})

	result := api.Bundle([]string{filepath.Join(dir, "a.js")}, api.BuildOptions{ModuleRoot: dir})
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "missing-provide", result.Errors[0].ID)
	assert.Empty(t, result.OutputFiles)

	result = api.Bundle([]string{filepath.Join(dir, "a.js")}, api.BuildOptions{
		ModuleRoot: dir,
		LogOptions: api.LogOptions{LogOverride: map[string]api.LogLevel{"missing-provide": api.LogLevelSilent}},
	})
	require.Empty(t, result.Errors)
	require.Len(t, result.OutputFiles, 1)
}

func TestBuildWrite(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/a.js":     "export var a = 1;",
		"src/sub/b.js": "import {a} from '../a';\na;",
	})
	outdir := filepath.Join(dir, "out")

	result := api.Build(api.BuildOptions{
		ModuleRoot:  filepath.Join(dir, "src"),
		Outdir:      outdir,
		Write:       true,
		EntryPoints: []string{filepath.Join(dir, "src")},
	})
	require.Empty(t, result.Errors)
	require.Len(t, result.OutputFiles, 2)

	contents, err := os.ReadFile(filepath.Join(outdir, "sub", "b.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, string(contents), "goog.require(\"module$a\");\nmodule$a.a;\n")

	contents, err = os.ReadFile(filepath.Join(outdir, "a.js"))
	require.NoError(t, err)
	assert.Contains(t, string(contents), "goog.provide(\"module$a\");\n")
}

func TestBuildValidation(t *testing.T) {
	dir := t.TempDir()
	expectError := func(options api.BuildOptions, expected string) {
		t.Helper()
		result := api.Build(options)
		require.Len(t, result.Errors, 1)
		assert.Equal(t, expected, result.Errors[0].Text)
	}

	expectError(api.BuildOptions{ModuleRoot: dir}, "Must provide at least one input file")
	expectError(api.BuildOptions{ModuleRoot: dir, EntryPoints: []string{dir}, Outfile: "out.js"},
		"Cannot use \"outfile\" without \"bundle\"")
	expectError(api.BuildOptions{ModuleRoot: dir, EntryPoints: []string{dir}, Outdir: "out", Bundle: true},
		"Cannot use \"outdir\" when bundling")
	expectError(api.BuildOptions{ModuleRoot: dir, EntryPoints: []string{dir}, Parallelism: -1},
		"The parallelism must not be negative")
}

func TestModuleName(t *testing.T) {
	dir := t.TempDir()

	name, ok := api.ModuleName(filepath.Join(dir, "a", "b-c.js"), dir)
	require.True(t, ok)
	assert.Equal(t, "module$a$bc", name)

	_, ok = api.ModuleName(filepath.Join(filepath.Dir(dir), "x.js"), dir)
	assert.False(t, ok)
}
