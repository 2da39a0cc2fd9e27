package main

import (
	"os"

	"github.com/wonny/swingscan/cmd/swingscan/commands"
)

// main is the entry point for the swingscan CLI
// ⭐ single CLI entry point: go run ./cmd/swingscan [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
