package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/concatjs/concatjs/internal/config"
	"github.com/concatjs/concatjs/internal/exitcode"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/test"
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

func runForTest(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewCommand("test", stdout, stderr)
	err := cmd.Run(context.Background(), append([]string{"concatjs", "--log-level=silent"}, args...))
	return stdout.String(), err
}

func TestModname(t *testing.T) {
	dir := t.TempDir()
	stdout, err := runForTest(t, "--root", dir, "modname", filepath.Join(dir, "a", "b.js"), filepath.Join(dir, "c-d.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, stdout, "module$a$b\nmodule$cd\n")

	_, err = runForTest(t, "--root", dir, "modname", filepath.Join(filepath.Dir(dir), "x.js"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "is outside of the module root")
}

func TestBundleToStdout(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"b.js": "import {a} from './a';\nexport var b = a;",
		"a.js": "export var a = 1;",
	})

	stdout, err := runForTest(t, "--root", dir, "--parallelism=1", "bundle", filepath.Join(dir, "b.js"), filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, stdout, "// "+filepath.Join(dir, "a.js")+`
goog.provide("module$a");
var a$$module$a = 1;
var module$a = {
  a: a$$module$a
};

// `+filepath.Join(dir, "b.js")+`
goog.provide("module$b");
goog.require("module$a");
var b$$module$b = module$a.a;
var module$b = {
  b: b$$module$b
};
`)
}

func TestBundleToFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "var a = 1;",
	})
	outfile := filepath.Join(dir, "out", "bundle.js")

	stdout, err := runForTest(t, "--root", dir, "bundle", "--outfile", outfile, filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	assert.Empty(t, stdout)

	contents, err := os.ReadFile(outfile)
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, string(contents), "// "+filepath.Join(dir, "a.js")+"\nvar a = 1;\n")
}

func TestRewriteOutdir(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/lib/a.js": "export function f() {}",
	})
	outdir := filepath.Join(dir, "out")

	_, err := runForTest(t, "--root", filepath.Join(dir, "src"), "rewrite", "--outdir", outdir, filepath.Join(dir, "src"))
	require.NoError(t, err)

	contents, err := os.ReadFile(filepath.Join(outdir, "lib", "a.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, string(contents), `goog.provide("module$lib$a");
function f$$module$lib$a() {
}
var module$lib$a = {
  f: f$$module$lib$a
};
`)
}

func TestEnvironmentAndFlags(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "import './b';\nexport var a;",
		"b.js": "",
	})
	t.Setenv(config.EnvRequireFunc, "env.require")
	t.Setenv(config.EnvProvideFunc, "env.provide")

	stdout, err := runForTest(t, "--root", dir, "--provide-func", "flag.provide", "rewrite", filepath.Join(dir, "a.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, stdout, `flag.provide("module$a");
env.require("module$b");
var a$$module$a;
var module$a = {
  a: a$$module$a
};
`)
}

func TestEnvFile(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"src/a.js": "export var a;",
	})
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONCATJS_ROOT="+filepath.Join(dir, "src")+"\n"), 0644))

	stdout, err := runForTest(t, "--env-file", envFile, "modname", filepath.Join(dir, "src", "a.js"))
	require.NoError(t, err)
	test.AssertEqualWithDiff(t, stdout, "module$a\n")
}

func TestErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"a.js": "goog.require('missing');",
	})

	_, err := runForTest(t, "bundle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "usage: concatjs bundle")

	_, err = runForTest(t, "--log-level", "loud", "modname", "a.js")
	require.Error(t, err)
	assert.Equal(t, "Invalid log level: \"loud\"", err.Error())

	_, err = runForTest(t, "--error-limit=-1", "modname", "a.js")
	require.Error(t, err)
	assert.Equal(t, "Invalid error limit: -1", err.Error())
	assert.Equal(t, exitcode.Usage, exitcode.Get(err))

	// Build errors have already been reported by the log
	_, err = runForTest(t, "--root", dir, "bundle", filepath.Join(dir, "a.js"))
	require.ErrorIs(t, err, errBuildFailed)
	assert.Equal(t, exitcode.Failure, exitcode.Get(err))

	_, err = runForTest(t, "--root", dir, "--log-override", "missing-provide=warning", "bundle", filepath.Join(dir, "a.js"))
	require.NoError(t, err)
}

func TestParseOptionsDefaults(t *testing.T) {
	var parsed config.Options
	cmd := NewCommand("test", &bytes.Buffer{}, &bytes.Buffer{})
	for _, sub := range cmd.Commands {
		if sub.Name == "modname" {
			sub.Action = func(ctx context.Context, c *cli.Command) error {
				var err error
				parsed, err = parseOptions(c)
				return err
			}
		}
	}
	require.NoError(t, cmd.Run(context.Background(), []string{"concatjs", "--color=false", "--ascii-only", "modname", "x.js"}))

	assert.Equal(t, "goog.provide", parsed.ProvideFunc)
	assert.Equal(t, "goog.require", parsed.RequireFunc)
	assert.Equal(t, 10, parsed.Log.ErrorLimit)
	assert.Equal(t, logger.LevelInfo, parsed.Log.LogLevel)
	assert.Equal(t, logger.ColorNever, parsed.Log.Color)
	assert.True(t, parsed.ASCIIOnly)
	assert.Equal(t, 0, parsed.Parallelism)
}
