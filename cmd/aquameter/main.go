// Package main is the entry point for the aquameter CLI.
package main

import (
	"os"

	"github.com/aquameter-labs/aquameter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
