package api

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/concatjs/concatjs/internal/bundler"
	"github.com/concatjs/concatjs/internal/config"
	"github.com/concatjs/concatjs/internal/es6_modules"
	"github.com/concatjs/concatjs/internal/fs"
	"github.com/concatjs/concatjs/internal/js_parser"
	"github.com/concatjs/concatjs/internal/js_printer"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/internal/resolver"
)

func validateColor(value StderrColor) logger.StderrColor {
	switch value {
	case ColorIfTerminal:
		return logger.ColorIfTerminal
	case ColorNever:
		return logger.ColorNever
	case ColorAlways:
		return logger.ColorAlways
	default:
		panic("Invalid color")
	}
}

func validateLogLevel(value LogLevel) logger.LogLevel {
	switch value {
	case LogLevelSilent:
		return logger.LevelSilent
	case LogLevelVerbose:
		return logger.LevelVerbose
	case LogLevelDebug:
		return logger.LevelDebug
	case LogLevelInfo:
		return logger.LevelInfo
	case LogLevelWarning:
		return logger.LevelWarning
	case LogLevelError:
		return logger.LevelError
	default:
		panic("Invalid log level")
	}
}

func validateLogOverrides(log logger.Log, value map[string]LogLevel) map[logger.MsgID]logger.LogLevel {
	if len(value) == 0 {
		return nil
	}
	overrides := make(map[logger.MsgID]logger.LogLevel)
	for id, level := range value {
		ids := make(map[logger.MsgID]logger.LogLevel)
		logger.StringToMsgIDs(id, validateLogLevel(level), ids)
		if len(ids) == 0 {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid log override: %q is not a message ID", id))
		}
		for msgID, msgLevel := range ids {
			overrides[msgID] = msgLevel
		}
	}
	return overrides
}

func validatePath(log logger.Log, fs fs.FS, relPath string) string {
	if relPath == "" {
		return ""
	}
	absPath, ok := fs.Abs(relPath)
	if !ok {
		log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid path: %s", relPath))
	}
	return absPath
}

func validateModuleRoot(log logger.Log, fs fs.FS, moduleRoot string) string {
	if moduleRoot == "" {
		return fs.Cwd()
	}
	absPath := validatePath(log, fs, moduleRoot)
	if absPath != "" {
		if _, err := fs.ReadDirectory(absPath); err != nil {
			log.AddError(nil, logger.Range{}, fmt.Sprintf("Invalid module root %q: %s", moduleRoot, err.Error()))
		}
	}
	return absPath
}

func messagesOfKind(kind logger.MsgKind, msgs []logger.Msg) []Message {
	var filtered []Message
	for _, msg := range msgs {
		if msg.Kind == kind {
			var location *Location

			if loc := msg.Data.Location; loc != nil {
				location = &Location{
					File:     loc.File,
					Line:     loc.Line,
					Column:   loc.Column,
					Length:   loc.Length,
					LineText: loc.LineText,
				}
			}

			filtered = append(filtered, Message{
				ID:       logger.MsgIDToString(msg.ID),
				Text:     msg.Data.Text,
				Location: location,
			})
		}
	}
	return filtered
}

func newLogFunc(options LogOptions, overrides map[logger.MsgID]logger.LogLevel) func() logger.Log {
	return func() logger.Log {
		if options.LogLevel == LogLevelSilent {
			return logger.NewDeferLog(overrides)
		}
		return logger.NewStderrLog(logger.OutputOptions{
			IncludeSource: true,
			ErrorLimit:    options.ErrorLimit,
			Color:         validateColor(options.Color),
			LogLevel:      validateLogLevel(options.LogLevel),
			Overrides:     overrides,
		})
	}
}

////////////////////////////////////////////////////////////////////////////////
// Rewrite API

func rewriteImpl(contents string, path string, options RewriteOptions) RewriteResult {
	// Convert and validate the options
	validateLog := logger.NewDeferLog(nil)
	newLog := newLogFunc(options.LogOptions, validateLogOverrides(validateLog, options.LogOverride))
	realFS := fs.RealFS(fs.RealFSOptions{})
	moduleRoot := validateModuleRoot(validateLog, realFS, options.ModuleRoot)
	absPath := validatePath(validateLog, realFS, path)
	if absPath == "" {
		validateLog.AddError(nil, logger.Range{}, "Must provide the path of the file being rewritten")
	}

	// Stop now if there were errors
	validateMsgs := validateLog.Done()
	validateErrors := messagesOfKind(logger.Error, validateMsgs)
	if len(validateErrors) > 0 {
		return RewriteResult{Errors: validateErrors}
	}

	log := newLog()
	loader := resolver.NewFSLoader(realFS, moduleRoot, 0)
	address, ok := loader.LoadAddress(absPath)
	if !ok {
		log.AddError(nil, logger.Range{}, fmt.Sprintf("The file %q is outside of the module root %q", path, moduleRoot))
		msgs := log.Done()
		return RewriteResult{Errors: messagesOfKind(logger.Error, msgs)}
	}

	source := logger.Source{
		KeyPath:    logger.Path{Text: absPath},
		PrettyPath: path,
		Contents:   contents,
	}
	var result RewriteResult
	if tree, ok := js_parser.Parse(log, source, js_parser.Options{}); ok {
		pass := es6_modules.NewPass(log, loader, es6_modules.Options{
			ProvideFunc: options.ProvideFunc,
			RequireFunc: options.RequireFunc,
		})
		passResult := pass.ProcessFile(&source, &tree, address)
		result = RewriteResult{
			JS:             js_printer.Print(tree, js_printer.Options{ASCIIOnly: options.ASCIIOnly}).JS,
			ModuleName:     passResult.ModuleName,
			IsES6Module:    passResult.IsES6Module,
			IsLegacyModule: passResult.IsLegacyModule,
			Requires:       passResult.Requires,
		}
	}

	msgs := log.Done()
	result.Errors = messagesOfKind(logger.Error, msgs)
	result.Warnings = messagesOfKind(logger.Warning, msgs)
	if len(result.Errors) > 0 {
		result.JS = nil
	}
	return result
}

////////////////////////////////////////////////////////////////////////////////
// Build API

func buildImpl(options BuildOptions) BuildResult {
	// Convert and validate the options
	validateLog := logger.NewDeferLog(nil)
	newLog := newLogFunc(options.LogOptions, validateLogOverrides(validateLog, options.LogOverride))
	realFS := fs.RealFS(fs.RealFSOptions{})
	configOptions := config.DefaultOptions()
	configOptions.ModuleRoot = validateModuleRoot(validateLog, realFS, options.ModuleRoot)
	configOptions.AbsOutputFile = validatePath(validateLog, realFS, options.Outfile)
	configOptions.AbsOutputDir = validatePath(validateLog, realFS, options.Outdir)
	configOptions.ASCIIOnly = options.ASCIIOnly
	configOptions.Parallelism = options.Parallelism
	if options.ProvideFunc != "" {
		configOptions.ProvideFunc = options.ProvideFunc
	}
	if options.RequireFunc != "" {
		configOptions.RequireFunc = options.RequireFunc
	}
	if options.Parallelism < 0 {
		validateLog.AddError(nil, logger.Range{}, "The parallelism must not be negative")
	}

	entryPaths := make([]string, len(options.EntryPoints))
	for i, entryPoint := range options.EntryPoints {
		entryPaths[i] = validatePath(validateLog, realFS, entryPoint)
	}
	if len(entryPaths) == 0 {
		validateLog.AddError(nil, logger.Range{}, "Must provide at least one input file")
	}

	if options.Bundle {
		configOptions.Mode = config.ModeBundle
		if configOptions.AbsOutputDir != "" {
			validateLog.AddError(nil, logger.Range{}, "Cannot use \"outdir\" when bundling")
		}
		configOptions.WriteToStdout = configOptions.AbsOutputFile == ""
	} else {
		configOptions.Mode = config.ModeRewrite
		if configOptions.AbsOutputFile != "" {
			validateLog.AddError(nil, logger.Range{}, "Cannot use \"outfile\" without \"bundle\"")
		}
		configOptions.WriteToStdout = configOptions.AbsOutputDir == ""
	}

	// Stop now if there were errors
	validateMsgs := validateLog.Done()
	validateErrors := messagesOfKind(logger.Error, validateMsgs)
	if len(validateErrors) > 0 {
		return BuildResult{
			Errors:   validateErrors,
			Warnings: messagesOfKind(logger.Warning, validateMsgs),
		}
	}

	// Scan over the bundle
	scanLog := newLog()
	loader := resolver.NewFSLoader(realFS, configOptions.ModuleRoot, configOptions.FileCacheSize)
	bundle, err := bundler.ScanBundle(context.Background(), scanLog, realFS, loader, entryPaths, configOptions)
	if err != nil {
		scanLog.AddError(nil, logger.Range{}, err.Error())
	}

	// Stop now if there were errors
	scanMsgs := scanLog.Done()
	scanErrors := messagesOfKind(logger.Error, scanMsgs)
	if len(scanErrors) > 0 {
		return BuildResult{
			Errors:   scanErrors,
			Warnings: messagesOfKind(logger.Warning, scanMsgs),
		}
	}

	// Compile the bundle
	compileLog := newLog()
	results := bundle.Compile(compileLog, configOptions)

	// Return the results
	compileMsgs := compileLog.Done()
	outputFiles := make([]OutputFile, len(results))
	for i, result := range results {
		outputFiles[i] = OutputFile{
			Path:     result.AbsPath,
			Contents: result.Contents,
		}
	}
	buildResult := BuildResult{
		Errors: messagesOfKind(logger.Error, compileMsgs),
		Warnings: append(
			messagesOfKind(logger.Warning, scanMsgs),
			messagesOfKind(logger.Warning, compileMsgs)...),
		OutputFiles: outputFiles,
	}

	if options.Write && len(buildResult.Errors) == 0 {
		buildResult.Errors = writeOutputFiles(buildResult.OutputFiles)
	}
	return buildResult
}

func writeOutputFiles(outputFiles []OutputFile) (errors []Message) {
	for _, outputFile := range outputFiles {
		// Special-case writing to stdout
		if outputFile.Path == "" {
			if _, err := os.Stdout.Write(outputFile.Contents); err != nil {
				errors = append(errors, Message{Text: fmt.Sprintf(
					"Failed to write to stdout: %s", err.Error())})
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(outputFile.Path), 0755); err != nil {
			errors = append(errors, Message{Text: fmt.Sprintf(
				"Failed to create output directory: %s", err.Error())})
		} else if err := os.WriteFile(outputFile.Path, outputFile.Contents, 0644); err != nil {
			errors = append(errors, Message{Text: fmt.Sprintf(
				"Failed to write to output file: %s", err.Error())})
		}
	}
	return
}

////////////////////////////////////////////////////////////////////////////////
// Module names

func moduleNameImpl(path string, moduleRoot string) (string, bool) {
	realFS := fs.RealFS(fs.RealFSOptions{})
	if moduleRoot == "" {
		moduleRoot = realFS.Cwd()
	}
	loader := resolver.NewFSLoader(realFS, moduleRoot, 0)
	address, ok := loader.LoadAddress(path)
	if !ok {
		return "", false
	}
	return es6_modules.ModuleName(address), true
}
