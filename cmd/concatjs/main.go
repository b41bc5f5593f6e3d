package main

import (
	"os"

	"github.com/concatjs/concatjs/pkg/cli"
)

func main() {
	os.Exit(cli.Run(os.Args))
}
