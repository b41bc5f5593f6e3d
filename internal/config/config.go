package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/concatjs/concatjs/internal/logger"
)

type Mode uint8

const (
	// Each input file is rewritten into its own output file
	ModeRewrite Mode = iota

	// All input files are rewritten, ordered by their dependencies, and
	// concatenated into one output file
	ModeBundle
)

type Options struct {
	Mode Mode

	// Module addresses are relative to this directory. Input files must be
	// inside of it.
	ModuleRoot string

	// The names of the functions that declare and consume namespaces
	ProvideFunc string
	RequireFunc string

	AbsOutputFile string
	AbsOutputDir  string
	WriteToStdout bool

	ASCIIOnly         bool
	OmitJSDocWarnings bool

	// The number of files processed at once. Zero means one per CPU.
	Parallelism int

	// The number of file contents kept in memory. Zero means the default.
	FileCacheSize int

	Log logger.OutputOptions
}

func (options *Options) EffectiveParallelism() int {
	if options.Parallelism > 0 {
		return options.Parallelism
	}
	return runtime.NumCPU()
}

const envPrefix = "CONCATJS_"

const (
	EnvModuleRoot   = envPrefix + "ROOT"
	EnvProvideFunc  = envPrefix + "PROVIDE_FUNC"
	EnvRequireFunc  = envPrefix + "REQUIRE_FUNC"
	EnvLogLevel     = envPrefix + "LOG_LEVEL"
	EnvLogOverride  = envPrefix + "LOG_OVERRIDE"
	EnvColor        = envPrefix + "COLOR"
	EnvErrorLimit   = envPrefix + "ERROR_LIMIT"
	EnvParallelism  = envPrefix + "PARALLELISM"
	EnvCacheSize    = envPrefix + "CACHE_SIZE"
	EnvCharsetASCII = envPrefix + "ASCII_ONLY"
)

func DefaultOptions() Options {
	return Options{
		ProvideFunc: "goog.provide",
		RequireFunc: "goog.require",
		Log: logger.OutputOptions{
			IncludeSource: true,
			ErrorLimit:    10,
			LogLevel:      logger.LevelInfo,
		},
	}
}

// Returns the "CONCATJS_*" settings from the process environment layered on
// top of the given ".env" files. Files that don't exist are skipped. Variables
// set in the process environment win over the files.
func LoadEnv(envFiles ...string) (map[string]string, error) {
	env := make(map[string]string)

	var existing []string
	for _, file := range envFiles {
		if _, err := os.Stat(file); err == nil {
			existing = append(existing, file)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}
	if len(existing) > 0 {
		values, err := godotenv.Read(existing...)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", strings.Join(existing, ", "), err)
		}
		for key, value := range values {
			if strings.HasPrefix(key, envPrefix) {
				env[key] = value
			}
		}
	}

	for _, pair := range os.Environ() {
		if key, value, ok := strings.Cut(pair, "="); ok && strings.HasPrefix(key, envPrefix) {
			env[key] = value
		}
	}
	return env, nil
}

// Applies environment settings to "options". Unknown "CONCATJS_*" variables
// are ignored.
func ApplyEnv(options *Options, env map[string]string) error {
	if value := strings.TrimSpace(env[EnvModuleRoot]); value != "" {
		options.ModuleRoot = value
	}
	if value := strings.TrimSpace(env[EnvProvideFunc]); value != "" {
		options.ProvideFunc = value
	}
	if value := strings.TrimSpace(env[EnvRequireFunc]); value != "" {
		options.RequireFunc = value
	}

	if value := strings.TrimSpace(env[EnvLogLevel]); value != "" {
		level, ok := ParseLogLevel(value)
		if !ok {
			return fmt.Errorf("invalid %s %q", EnvLogLevel, value)
		}
		options.Log.LogLevel = level
	}

	if value := strings.TrimSpace(env[EnvLogOverride]); value != "" {
		if err := ParseLogOverrides(value, &options.Log); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvLogOverride, err)
		}
	}

	if value := strings.TrimSpace(env[EnvColor]); value != "" {
		color, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q", EnvColor, value)
		}
		if color {
			options.Log.Color = logger.ColorAlways
		} else {
			options.Log.Color = logger.ColorNever
		}
	}

	if value := strings.TrimSpace(env[EnvCharsetASCII]); value != "" {
		asciiOnly, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid %s %q", EnvCharsetASCII, value)
		}
		options.ASCIIOnly = asciiOnly
	}

	ints := []struct {
		name  string
		value *int
	}{
		{EnvErrorLimit, &options.Log.ErrorLimit},
		{EnvParallelism, &options.Parallelism},
		{EnvCacheSize, &options.FileCacheSize},
	}
	for _, item := range ints {
		if value := strings.TrimSpace(env[item.name]); value != "" {
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("invalid %s %q", item.name, value)
			}
			*item.value = n
		}
	}

	return nil
}

func ParseLogLevel(text string) (logger.LogLevel, bool) {
	switch text {
	case "verbose":
		return logger.LevelVerbose, true
	case "debug":
		return logger.LevelDebug, true
	case "info":
		return logger.LevelInfo, true
	case "warning":
		return logger.LevelWarning, true
	case "error":
		return logger.LevelError, true
	case "silent":
		return logger.LevelSilent, true
	}
	return logger.LevelNone, false
}

// Parses comma-separated "id=level" pairs such as "load-error=warning"
func ParseLogOverrides(text string, options *logger.OutputOptions) error {
	for _, item := range strings.Split(text, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		id, value, ok := strings.Cut(item, "=")
		if !ok {
			return fmt.Errorf("expected \"id=level\" but found %q", item)
		}
		level, ok := ParseLogLevel(value)
		if !ok {
			return fmt.Errorf("invalid log level %q", value)
		}
		if options.Overrides == nil {
			options.Overrides = make(map[logger.MsgID]logger.LogLevel)
		}
		logger.StringToMsgIDs(id, level, options.Overrides)
	}
	return nil
}
