package bundler

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/concatjs/concatjs/internal/config"
	"github.com/concatjs/concatjs/internal/es6_modules"
	"github.com/concatjs/concatjs/internal/fs"
	"github.com/concatjs/concatjs/internal/helpers"
	"github.com/concatjs/concatjs/internal/js_ast"
	"github.com/concatjs/concatjs/internal/js_parser"
	"github.com/concatjs/concatjs/internal/js_printer"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/resolver"
)

type file struct {
	source  logger.Source
	ast     js_ast.AST
	address string
	result  es6_modules.Result

	// The namespaces this file provides and requires after it was rewritten.
	// This covers legacy files and rewritten files the same way.
	namespaces es6_modules.Namespaces

	ok bool
}

type Bundle struct {
	fs    fs.FS
	files []file
}

type scanner struct {
	log     logger.Log
	fs      fs.FS
	loader  *resolver.FSLoader
	options config.Options
}

// Parses and rewrites every input file. An entry path may also be a directory,
// in which case every ".js" file inside of it is included. Each file gets its
// own module rewriting pass and files are processed in parallel.
func ScanBundle(ctx context.Context, log logger.Log, fs fs.FS, loader *resolver.FSLoader, entryPaths []string, options config.Options) (Bundle, error) {
	s := scanner{log: log, fs: fs, loader: loader, options: options}
	absPaths := s.expandEntryPaths(entryPaths)
	files := make([]file, len(absPaths))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(options.EffectiveParallelism())
	for i, absPath := range absPaths {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			files[i] = s.parseFile(uint32(i), absPath)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Bundle{}, err
	}

	return Bundle{fs: fs, files: files}, nil
}

func (s *scanner) expandEntryPaths(entryPaths []string) []string {
	var absPaths []string
	visited := make(map[string]bool)

	var visit func(absPath string)
	visit = func(absPath string) {
		if visited[absPath] {
			return
		}
		visited[absPath] = true

		// Anything that can't be listed is treated as a file. Reading it will
		// report the error if it doesn't exist.
		entries, err := s.fs.ReadDirectory(absPath)
		if err != nil {
			absPaths = append(absPaths, absPath)
			return
		}

		for _, base := range entries.SortedKeys() {
			if strings.HasPrefix(base, ".") || base == "node_modules" {
				continue
			}
			childPath := s.fs.Join(absPath, base)
			if kind, _ := entries.Get(base); kind == fs.DirEntry || s.fs.Ext(base) == ".js" {
				visit(childPath)
			}
		}
	}

	for _, entryPath := range entryPaths {
		absPath := entryPath
		if abs, ok := s.fs.Abs(entryPath); ok {
			absPath = abs
		}
		visit(absPath)
	}
	return absPaths
}

func (s *scanner) prettyPath(absPath string) string {
	if rel, ok := s.fs.Rel(s.fs.Cwd(), absPath); ok && !strings.HasPrefix(rel, "..") {
		return strings.ReplaceAll(rel, "\\", "/")
	}
	return absPath
}

func (s *scanner) parseFile(sourceIndex uint32, absPath string) file {
	prettyPath := s.prettyPath(absPath)

	address, ok := s.loader.LoadAddress(absPath)
	if !ok {
		s.log.AddError(nil, logger.Range{}, fmt.Sprintf("The file %q is outside of the module root %q",
			prettyPath, s.prettyPath(s.loader.Root())))
		return file{}
	}

	contents, err := s.fs.ReadFile(absPath)
	if err != nil {
		s.log.AddError(nil, logger.Range{}, fmt.Sprintf("Could not read from file %q: %s", prettyPath, err.Error()))
		return file{}
	}

	source := logger.Source{
		Index:      sourceIndex,
		KeyPath:    logger.Path{Text: absPath},
		PrettyPath: prettyPath,
		Contents:   contents,
	}

	tree, ok := js_parser.Parse(s.log, source, js_parser.Options{
		OmitJSDocWarnings: s.options.OmitJSDocWarnings,
	})
	if !ok {
		return file{}
	}

	passOptions := es6_modules.Options{
		ProvideFunc: s.options.ProvideFunc,
		RequireFunc: s.options.RequireFunc,
	}
	result := es6_modules.NewPass(s.log, s.loader, passOptions).ProcessFile(&source, &tree, address)

	return file{
		source:     source,
		ast:        tree,
		address:    address,
		result:     result,
		namespaces: es6_modules.ScanNamespaces(tree, passOptions),
		ok:         true,
	}
}

type OutputFile struct {
	// This is empty when writing to stdout
	AbsPath  string
	Contents []byte
}

func (b *Bundle) Compile(log logger.Log, options config.Options) []OutputFile {
	printOptions := js_printer.Options{ASCIIOnly: options.ASCIIOnly}

	if options.Mode != config.ModeBundle {
		var outputFiles []OutputFile
		for _, f := range b.files {
			if !f.ok {
				continue
			}
			outputFile := OutputFile{Contents: js_printer.Print(f.ast, printOptions).JS}
			if options.AbsOutputDir != "" {
				outputFile.AbsPath = b.fs.Join(options.AbsOutputDir, strings.TrimPrefix(f.address, "./"))
			}
			outputFiles = append(outputFiles, outputFile)
		}
		return outputFiles
	}

	order := b.sortFilesByDependencies(log)
	if log.HasErrors() {
		return nil
	}

	j := helpers.Joiner{}

	// Only one hashbang can be kept, and it must come first
	for _, sourceIndex := range order {
		f := &b.files[sourceIndex]
		if f.ast.Hashbang != "" {
			if j.Length() == 0 {
				j.AddString(f.ast.Hashbang)
				j.AddString("\n")
			}
			f.ast.Hashbang = ""
		}
	}

	for i, sourceIndex := range order {
		f := &b.files[sourceIndex]
		if i > 0 {
			j.EnsureNewlineAtEnd()
			j.AddString("\n")
		}
		j.AddString("// ")
		j.AddString(f.source.PrettyPath)
		j.AddString("\n")
		j.AddBytes(js_printer.Print(f.ast, printOptions).JS)
	}

	return []OutputFile{{AbsPath: options.AbsOutputFile, Contents: j.Done()}}
}

// Orders files so that every file comes after the files providing the
// namespaces it requires. Files that don't depend on each other keep their
// input order.
func (b *Bundle) sortFilesByDependencies(log logger.Log) []uint32 {
	providers := make(map[string]uint32)
	for i, f := range b.files {
		if !f.ok {
			continue
		}
		for _, namespace := range f.namespaces.Provides {
			if other, ok := providers[namespace]; ok {
				log.AddID(logger.MsgID_Bundler_DuplicateProvide, logger.Error, nil, logger.Range{},
					fmt.Sprintf("The namespace %q is provided by both %s and %s",
						namespace, b.files[other].source.PrettyPath, f.source.PrettyPath))
				continue
			}
			providers[namespace] = uint32(i)
		}
	}

	// A side-effect import requires the module name of a file that may not
	// provide anything, such as a plain script or a module without exports
	for i, f := range b.files {
		if !f.ok {
			continue
		}
		namespace := es6_modules.ModuleName(f.address)
		if _, ok := providers[namespace]; !ok {
			providers[namespace] = uint32(i)
		}
	}

	const (
		unvisited uint8 = iota
		visiting
		visited
	)
	state := make([]uint8, len(b.files))
	order := make([]uint32, 0, len(b.files))
	var stack []uint32

	var visit func(sourceIndex uint32)
	visit = func(sourceIndex uint32) {
		switch state[sourceIndex] {
		case visited:
			return

		case visiting:
			var sb strings.Builder
			sb.WriteString("Dependency cycle: ")
			start := len(stack) - 1
			for start > 0 && stack[start] != sourceIndex {
				start--
			}
			for _, other := range stack[start:] {
				sb.WriteString(b.files[other].source.PrettyPath)
				sb.WriteString(" -> ")
			}
			sb.WriteString(b.files[sourceIndex].source.PrettyPath)
			log.AddID(logger.MsgID_Bundler_DependencyCycle, logger.Error, nil, logger.Range{}, sb.String())
			return
		}

		state[sourceIndex] = visiting
		stack = append(stack, sourceIndex)
		f := &b.files[sourceIndex]
		for _, namespace := range f.namespaces.Requires {
			other, ok := providers[namespace]
			if !ok {
				log.AddID(logger.MsgID_Bundler_MissingProvide, logger.Error, nil, logger.Range{},
					fmt.Sprintf("%s requires %q but no input file provides it", f.source.PrettyPath, namespace))
				continue
			}
			if other != sourceIndex {
				visit(other)
			}
		}
		stack = stack[:len(stack)-1]
		state[sourceIndex] = visited
		order = append(order, sourceIndex)
	}

	for i, f := range b.files {
		if f.ok {
			visit(uint32(i))
		}
	}
	return order
}
