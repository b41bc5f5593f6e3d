package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/concatjs/concatjs/internal/config"
	"github.com/concatjs/concatjs/internal/exitcode"
	"github.com/concatjs/concatjs/internal/logger"
	"github.com/concatjs/concatjs/pkg/api"
)

const (
	flagEnvFile     = "env-file"
	flagRoot        = "root"
	flagProvideFunc = "provide-func"
	flagRequireFunc = "require-func"
	flagLogLevel    = "log-level"
	flagLogOverride = "log-override"
	flagColor       = "color"
	flagErrorLimit  = "error-limit"
	flagParallelism = "parallelism"
	flagASCIIOnly   = "ascii-only"
	flagOutdir      = "outdir"
	flagOutfile     = "outfile"
)

// Settings are layered: built-in defaults, then the ".env" file, then the
// process environment, then command-line flags
func parseOptions(cmd *cli.Command) (config.Options, error) {
	options := config.DefaultOptions()

	env, err := config.LoadEnv(cmd.String(flagEnvFile))
	if err != nil {
		return config.Options{}, err
	}
	if err := config.ApplyEnv(&options, env); err != nil {
		return config.Options{}, exitcode.Set(err, exitcode.Usage)
	}

	if cmd.IsSet(flagRoot) {
		options.ModuleRoot = cmd.String(flagRoot)
	}
	if cmd.IsSet(flagProvideFunc) {
		options.ProvideFunc = cmd.String(flagProvideFunc)
	}
	if cmd.IsSet(flagRequireFunc) {
		options.RequireFunc = cmd.String(flagRequireFunc)
	}
	if cmd.IsSet(flagLogLevel) {
		level, ok := config.ParseLogLevel(cmd.String(flagLogLevel))
		if !ok {
			return config.Options{}, exitcode.Usagef("Invalid log level: %q", cmd.String(flagLogLevel))
		}
		options.Log.LogLevel = level
	}
	if cmd.IsSet(flagLogOverride) {
		if err := config.ParseLogOverrides(cmd.String(flagLogOverride), &options.Log); err != nil {
			return config.Options{}, exitcode.Usagef("Invalid log override: %s", err.Error())
		}
	}
	if cmd.IsSet(flagColor) {
		if cmd.Bool(flagColor) {
			options.Log.Color = logger.ColorAlways
		} else {
			options.Log.Color = logger.ColorNever
		}
	}
	if cmd.IsSet(flagErrorLimit) {
		if limit := cmd.Int(flagErrorLimit); limit >= 0 {
			options.Log.ErrorLimit = limit
		} else {
			return config.Options{}, exitcode.Usagef("Invalid error limit: %d", limit)
		}
	}
	if cmd.IsSet(flagParallelism) {
		options.Parallelism = cmd.Int(flagParallelism)
	}
	if cmd.IsSet(flagASCIIOnly) {
		options.ASCIIOnly = cmd.Bool(flagASCIIOnly)
	}

	return options, nil
}

func detectColor(color logger.StderrColor) api.StderrColor {
	switch color {
	case logger.ColorNever:
		return api.ColorNever
	case logger.ColorAlways:
		return api.ColorAlways
	}

	// https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !term.IsTerminal(int(os.Stderr.Fd())) {
		return api.ColorNever
	}
	return api.ColorAlways
}

func apiLogLevel(level logger.LogLevel) api.LogLevel {
	switch level {
	case logger.LevelSilent:
		return api.LogLevelSilent
	case logger.LevelVerbose:
		return api.LogLevelVerbose
	case logger.LevelDebug:
		return api.LogLevelDebug
	case logger.LevelError:
		return api.LogLevelError
	case logger.LevelWarning:
		return api.LogLevelWarning
	default:
		return api.LogLevelInfo
	}
}

func buildOptions(options config.Options, entryPoints []string) api.BuildOptions {
	var logOverride map[string]api.LogLevel
	if len(options.Log.Overrides) > 0 {
		logOverride = make(map[string]api.LogLevel)
		for id, level := range options.Log.Overrides {
			logOverride[logger.MsgIDToString(id)] = apiLogLevel(level)
		}
	}

	return api.BuildOptions{
		LogOptions: api.LogOptions{
			Color:       detectColor(options.Log.Color),
			ErrorLimit:  options.Log.ErrorLimit,
			LogLevel:    apiLogLevel(options.Log.LogLevel),
			LogOverride: logOverride,
		},
		Convention: api.Convention{
			ProvideFunc: options.ProvideFunc,
			RequireFunc: options.RequireFunc,
		},
		ModuleRoot:  options.ModuleRoot,
		ASCIIOnly:   options.ASCIIOnly,
		Parallelism: options.Parallelism,
		EntryPoints: entryPoints,
	}
}

func rewriteAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return exitcode.Usagef("usage: concatjs rewrite [--outdir=dir] <file or directory>...")
	}
	options, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	buildOpts := buildOptions(options, cmd.Args().Slice())
	buildOpts.Outdir = cmd.String(flagOutdir)
	return runBuild(cmd, buildOpts)
}

func bundleAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return exitcode.Usagef("usage: concatjs bundle [--outfile=file] <file or directory>...")
	}
	options, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	buildOpts := buildOptions(options, cmd.Args().Slice())
	buildOpts.Bundle = true
	buildOpts.Outfile = cmd.String(flagOutfile)
	return runBuild(cmd, buildOpts)
}

func runBuild(cmd *cli.Command, buildOpts api.BuildOptions) error {
	// Run the build and stop if there were errors
	result := api.Build(buildOpts)
	if len(result.Errors) > 0 {
		return errBuildFailed
	}

	stdout := cmd.Root().Writer
	for _, outputFile := range result.OutputFiles {
		// Special-case writing to stdout
		if outputFile.Path == "" {
			if _, err := stdout.Write(outputFile.Contents); err != nil {
				return fmt.Errorf("Failed to write to stdout: %w", err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(outputFile.Path), 0755); err != nil {
			return fmt.Errorf("Failed to create output directory: %w", err)
		}
		if err := os.WriteFile(outputFile.Path, outputFile.Contents, 0644); err != nil {
			return fmt.Errorf("Failed to write to output file: %w", err)
		}
	}
	return nil
}

func modnameAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 1 {
		return exitcode.Usagef("usage: concatjs modname <file>...")
	}
	options, err := parseOptions(cmd)
	if err != nil {
		return err
	}

	stdout := cmd.Root().Writer
	for _, path := range cmd.Args().Slice() {
		name, ok := api.ModuleName(path, options.ModuleRoot)
		if !ok {
			return fmt.Errorf("The file %q is outside of the module root", path)
		}
		fmt.Fprintln(stdout, name)
	}
	return nil
}
