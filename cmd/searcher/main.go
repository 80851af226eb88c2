// Package main provides the entry point for the searcher CLI.
package main

import (
	"os"

	"github.com/newscope/searcher/cmd/searcher/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
