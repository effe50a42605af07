// Package main is the entry point for the storefront operator CLI.
package main

import (
	"os"

	"github.com/example/storefront/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
