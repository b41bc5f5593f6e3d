package bundler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/config"
	"github.com/concatjs/concatjs/internal/fs"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/resolver"
	"github.com/concatjs/concatjs/internal/test"
)

type bundled struct {
	files              map[string]string
	entryPaths         []string
	expected           map[string]string
	expectedScanLog    string
	expectedCompileLog string
}

func logText(msgs []logger.Msg) string {
	text := ""
	for _, msg := range msgs {
		text += msg.String(logger.OutputOptions{}, logger.TerminalInfo{})
	}
	return text
}

func expectBundled(t *testing.T, args bundled, options config.Options) {
	t.Helper()
	t.Run("", func(t *testing.T) {
		t.Helper()
		mockFS := fs.MockFS(args.files)
		loader := resolver.NewFSLoader(mockFS, "/proj", 0)
		if options.ProvideFunc == "" {
			options.ProvideFunc = "goog.provide"
			options.RequireFunc = "goog.require"
		}

		log := logger.NewDeferLog(nil)
		bundle, err := ScanBundle(context.Background(), log, mockFS, loader, args.entryPaths, options)
		require.NoError(t, err)
		msgs := log.Done()
		test.AssertEqualWithDiff(t, logText(msgs), args.expectedScanLog)
		if args.expectedScanLog != "" {
			return
		}

		log = logger.NewDeferLog(nil)
		results := bundle.Compile(log, options)
		msgs = log.Done()
		test.AssertEqualWithDiff(t, logText(msgs), args.expectedCompileLog)
		if args.expectedCompileLog != "" {
			return
		}

		require.Equal(t, len(args.expected), len(results))
		for _, result := range results {
			expected, ok := args.expected[result.AbsPath]
			require.True(t, ok, "Unexpected output file %q", result.AbsPath)
			test.AssertEqualWithDiff(t, string(result.Contents), expected)
		}
	})
}

func TestRewriteEachFile(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/entry.js":   "import {fn} from './lib/fn';\nfn();",
			"/proj/lib/fn.js":  "export function fn() { return helper(); }\nfunction helper() {}",
			"/proj/lib/old.js": "goog.provide('old');\nold.x = 1;",
		},
		entryPaths: []string{"/proj"},
		expected: map[string]string{
			"/out/entry.js": `goog.require("module$lib$fn");
module$lib$fn.fn();
`,
			"/out/lib/fn.js": `goog.provide("module$lib$fn");
function fn$$module$lib$fn() {
  return helper$$module$lib$fn();
}
function helper$$module$lib$fn() {
}
var module$lib$fn = {
  fn: fn$$module$lib$fn
};
`,
			"/out/lib/old.js": `goog.provide("old");
old.x = 1;
`,
		},
	}, config.Options{
		AbsOutputDir: "/out",
		Parallelism:  2,
	})
}

func TestRewriteToStdout(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "export var a = 1;",
		},
		entryPaths: []string{"/proj/a.js"},
		expected: map[string]string{
			"": `goog.provide("module$a");
var a$$module$a = 1;
var module$a = {
  a: a$$module$a
};
`,
		},
	}, config.Options{WriteToStdout: true})
}

func TestRewriteCustomConvention(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "import {b} from './b';\nexport var a = b;",
			"/proj/b.js": "export var b = 1;",
		},
		entryPaths: []string{"/proj/a.js"},
		expected: map[string]string{
			"/out/a.js": `my.provide("module$a");
my.require("module$b");
var a$$module$a = module$b.b;
var module$a = {
  a: a$$module$a
};
`,
		},
	}, config.Options{
		AbsOutputDir: "/out",
		ProvideFunc:  "my.provide",
		RequireFunc:  "my.require",
	})
}

func TestBundleOrdersByDependencies(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/main.js":        "#!/usr/bin/env node\nimport {a} from './a';\nimport {b} from './util/b';\nconsole.log(a, b);",
			"/proj/a.js":           "import {b} from './util/b';\nexport var a = b + 1;",
			"/proj/util/b.js":      "import './legacy';\nexport var b = legacy.value;",
			"/proj/util/legacy.js": "goog.provide('module$util$legacy');\nvar legacy = {value: 1};",
		},
		entryPaths: []string{"/proj/main.js", "/proj/a.js", "/proj/util"},
		expected: map[string]string{
			"/out.js": `#!/usr/bin/env node
// proj/util/legacy.js
goog.provide("module$util$legacy");
var legacy = {
  value: 1
};

// proj/util/b.js
goog.provide("module$util$b");
goog.require("module$util$legacy");
var b$$module$util$b = legacy.value;
var module$util$b = {
  b: b$$module$util$b
};

// proj/a.js
goog.provide("module$a");
goog.require("module$util$b");
var a$$module$a = module$util$b.b + 1;
var module$a = {
  a: a$$module$a
};

// proj/main.js
goog.require("module$util$b");
goog.require("module$a");
console.log(module$a.a, module$util$b.b);
`,
		},
	}, config.Options{
		Mode:          config.ModeBundle,
		AbsOutputFile: "/out.js",
	})
}

func TestBundleSideEffectImports(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/entry.js":    "import './polyfill';\nimport './lib';\nwindow.bar;",
			"/proj/polyfill.js": "window.foo = 1;",
			"/proj/lib.js":      "import './polyfill';\nwindow.bar = window.foo;",
		},
		entryPaths: []string{"/proj/entry.js", "/proj/polyfill.js", "/proj/lib.js"},
		expected: map[string]string{
			"/out.js": `// proj/polyfill.js
window.foo = 1;

// proj/lib.js
goog.require("module$polyfill");
window.bar = window.foo;

// proj/entry.js
goog.require("module$lib");
goog.require("module$polyfill");
window.bar;
`,
		},
	}, config.Options{
		Mode:          config.ModeBundle,
		AbsOutputFile: "/out.js",
	})
}

func TestBundleMissingProvide(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "goog.require('missing');",
		},
		entryPaths:         []string{"/proj/a.js"},
		expectedCompileLog: "error: proj/a.js requires \"missing\" but no input file provides it\n",
	}, config.Options{Mode: config.ModeBundle})
}

func TestBundleDuplicateProvide(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "goog.provide('x');",
			"/proj/b.js": "goog.provide('x');",
		},
		entryPaths:         []string{"/proj/a.js", "/proj/b.js"},
		expectedCompileLog: "error: The namespace \"x\" is provided by both proj/a.js and proj/b.js\n",
	}, config.Options{Mode: config.ModeBundle})
}

func TestBundleDependencyCycle(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "import './b';\nexport var a;",
			"/proj/b.js": "import './a';\nexport var b;",
		},
		entryPaths:         []string{"/proj/a.js", "/proj/b.js"},
		expectedCompileLog: "error: Dependency cycle: proj/a.js -> proj/b.js -> proj/a.js\n",
	}, config.Options{Mode: config.ModeBundle})
}

func TestScanErrors(t *testing.T) {
	expectBundled(t, bundled{
		files: map[string]string{
			"/proj/a.js": "var a;",
			"/other.js":  "var b;",
		},
		entryPaths:      []string{"/other.js", "/proj/missing.js"},
		expectedScanLog: "error: The file \"other.js\" is outside of the module root \"proj\"\nerror: Could not read from file \"proj/missing.js\": no such file or directory\n",
	}, config.Options{Parallelism: 1})
}

func TestScanCanceled(t *testing.T) {
	mockFS := fs.MockFS(map[string]string{"/proj/a.js": "var a;"})
	loader := resolver.NewFSLoader(mockFS, "/proj", 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ScanBundle(ctx, logger.NewDeferLog(nil), mockFS, loader, []string{"/proj/a.js"}, config.Options{})
	require.ErrorIs(t, err, context.Canceled)
}
