// Package main is the entry point for the oiltrading CLI.
package main

import (
	"os"

	"oiltrading/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
