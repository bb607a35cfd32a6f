// Package main is the entry point for the founder platform.
package main

import (
	"os"

	"github.com/verly-ai/founder-platform/cmd/founder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
