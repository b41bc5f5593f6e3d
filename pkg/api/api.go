package api

type Location struct {
	File     string
	Line     int // 1-based
	Column   int // 0-based, in bytes
	Length   int // in bytes
	LineText string
}

type Message struct {
	// The message ID such as "load-error". This is empty for messages that
	// can't be overridden.
	ID string

	Text     string
	Location *Location
}

type StderrColor uint8

const (
	ColorIfTerminal StderrColor = iota
	ColorNever
	ColorAlways
)

type LogLevel uint8

const (
	LogLevelSilent LogLevel = iota
	LogLevelVerbose
	LogLevelDebug
	LogLevelInfo
	LogLevelWarning
	LogLevelError
)

type LogOptions struct {
	Color      StderrColor
	ErrorLimit int
	LogLevel   LogLevel

	// Maps message IDs such as "load-error" to the level they are reported at
	LogOverride map[string]LogLevel
}

type Convention struct {
	// These default to "goog.provide" and "goog.require"
	ProvideFunc string
	RequireFunc string
}

////////////////////////////////////////////////////////////////////////////////
// Rewrite API

type RewriteOptions struct {
	LogOptions
	Convention

	// Imports are resolved relative to this directory. This defaults to the
	// current working directory.
	ModuleRoot string

	ASCIIOnly bool
}

type RewriteResult struct {
	Errors   []Message
	Warnings []Message

	JS []byte

	// The namespace this file provides if it was an ES6 module
	ModuleName string

	IsES6Module    bool
	IsLegacyModule bool

	// The namespaces of the imported modules, in the order they were imported
	Requires []string
}

// Rewrites a single file. The path is where the file lives on disk and must
// be inside of the module root. Imported modules are looked for on disk but
// the file itself is not read.
func Rewrite(contents string, path string, options RewriteOptions) RewriteResult {
	return rewriteImpl(contents, path, options)
}

////////////////////////////////////////////////////////////////////////////////
// Build API

type BuildOptions struct {
	LogOptions
	Convention

	ModuleRoot string

	// When bundling, all files are ordered by their dependencies and
	// concatenated into one output file. Otherwise each file is rewritten
	// into its own output file.
	Bundle bool

	Outfile string
	Outdir  string

	// Writes the output files to the file system instead of only returning
	// them. Output goes to stdout when there is no output path.
	Write bool

	ASCIIOnly bool

	// The number of files processed at once. Zero means one per CPU.
	Parallelism int

	// Entry points can be files or directories. Every ".js" file inside of a
	// directory is included.
	EntryPoints []string
}

type BuildResult struct {
	Errors   []Message
	Warnings []Message

	OutputFiles []OutputFile
}

type OutputFile struct {
	// This is empty when the output is meant for stdout
	Path     string
	Contents []byte
}

func Build(options BuildOptions) BuildResult {
	return buildImpl(options)
}

// Orders the given files by their dependencies and concatenates them
func Bundle(paths []string, options BuildOptions) BuildResult {
	options.EntryPoints = paths
	options.Bundle = true
	return buildImpl(options)
}

////////////////////////////////////////////////////////////////////////////////
// Module names

// Returns the namespace that the file at the given path provides once it has
// been rewritten, or false if the path is outside of the module root
func ModuleName(path string, moduleRoot string) (string, bool) {
	return moduleNameImpl(path, moduleRoot)
}
