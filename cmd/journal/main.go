package main

import (
	"os"

	"github.com/wonny/tradejournal/backend/cmd/journal/commands"
)

// main is the entry point for the journal CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/journal [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
