// This API exposes the command-line interface. It's used by the "concatjs"
// command and is exported so other programs can embed the same behavior.
package cli

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/concatjs/concatjs/internal/exitcode"
	"github.com/concatjs/concatjs/internal/logger"
)

const concatjsVersion = "0.1.0"

// The build already reported its errors to stderr
var errBuildFailed = exitcode.Set(errors.New("build failed"), exitcode.Failure)

// Runs the command line with the given arguments (including the program name)
// and returns the process exit code
func Run(osArgs []string) int {
	cmd := NewCommand(concatjsVersion, os.Stdout, os.Stderr)
	err := cmd.Run(context.Background(), osArgs)
	if err != nil && !errors.Is(err, errBuildFailed) {
		logger.PrintErrorToStderr(osArgs, err.Error())
	}
	return exitcode.Get(err)
}

func NewCommand(version string, stdout io.Writer, stderr io.Writer) *cli.Command {
	return &cli.Command{
		Name:      "concatjs",
		Usage:     "Rewrite ES6 modules into provide/require namespaces for concatenation",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  flagEnvFile,
				Usage: "Read CONCATJS_* settings from this file if it exists",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  flagRoot,
				Usage: "The directory that module addresses are relative to (default: current directory)",
			},
			&cli.StringFlag{
				Name:  flagProvideFunc,
				Usage: "The function that declares a namespace",
			},
			&cli.StringFlag{
				Name:  flagRequireFunc,
				Usage: "The function that consumes a namespace",
			},
			&cli.StringFlag{
				Name:  flagLogLevel,
				Usage: "The amount of logging (verbose, debug, info, warning, error, silent)",
			},
			&cli.StringFlag{
				Name:  flagLogOverride,
				Usage: "Comma-separated ID=LEVEL pairs such as load-error=warning",
			},
			&cli.BoolFlag{
				Name:  flagColor,
				Usage: "Force use of color terminal escapes",
			},
			&cli.IntFlag{
				Name:  flagErrorLimit,
				Usage: "Maximum error count or 0 to disable",
			},
			&cli.IntFlag{
				Name:    flagParallelism,
				Aliases: []string{"j"},
				Usage:   "The number of files processed at once or 0 for one per CPU",
			},
			&cli.BoolFlag{
				Name:  flagASCIIOnly,
				Usage: "Escape non-ASCII characters in the output",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "rewrite",
				Usage:     "Rewrite each file into its own output file",
				ArgsUsage: "<file or directory>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagOutdir,
						Usage: "Write the output files into this directory instead of stdout",
					},
				},
				Action: rewriteAction,
			},
			{
				Name:      "bundle",
				Usage:     "Order files by their dependencies and concatenate them",
				ArgsUsage: "<file or directory>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    flagOutfile,
						Aliases: []string{"o"},
						Usage:   "Write the bundle to this file instead of stdout",
					},
				},
				Action: bundleAction,
			},
			{
				Name:      "modname",
				Usage:     "Print the namespace each file provides once rewritten",
				ArgsUsage: "<file>...",
				Action:    modnameAction,
			},
		},

		// Errors are reported by Run, which also picks the exit code
		ExitErrHandler: func(ctx context.Context, cmd *cli.Command, err error) {},
	}
}
