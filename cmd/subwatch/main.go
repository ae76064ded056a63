// Command subwatch is the SubstanceWatch CLI entry point.
package main

import (
	"os"

	"github.com/turtacn/SubstanceWatch/internal/interfaces/cli"
)

// Build-time variables injected via ldflags:
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse --short HEAD)"
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func init() {
	cli.Version = version
	cli.GitCommit = commit
	cli.BuildDate = buildDate
}

func main() {
	// Execute prints the error itself.
	if err := cli.Execute(); err != nil {
		os.Exit(cli.ExitCode(err))
	}
}

//Personal.AI order the ending
