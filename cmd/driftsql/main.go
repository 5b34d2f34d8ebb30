// Package main is the entry point for the driftsql CLI.
package main

import (
	"fmt"
	"os"

	"github.com/driftsql/driftsql/cmd/driftsql/commands"
)

var (
	// Version information (set by build)
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := commands.Execute(fmt.Sprintf("%s (commit: %s)", Version, Commit)); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
