// Package main is the entry point for the confpack CLI tool.
package main

import (
	"fmt"
	"os"

	"github.com/confpack/confpack/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
