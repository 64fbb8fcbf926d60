package main

import (
	"os"

	"github.com/hanzobot/skills/stock-analysis/cmd/stockanalysis/commands"
)

// main is the entry point for the stock-analysis CLI
// ⭐ single CLI entry point: go run ./cmd/stockanalysis [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(commands.ExitCode(err))
	}
}
