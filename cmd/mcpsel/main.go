// Package main is the entry point for the mcpsel CLI.
package main

import (
	"os"

	"github.com/thoreinstein/mcpsel/cmd/mcpsel/commands"
)

func main() {
	os.Exit(commands.Main(os.Stderr))
}
