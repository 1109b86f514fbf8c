package main

import (
	"os"

	"github.com/wonny/leadscan/cmd/leadscan/commands"
)

// main is the entry point for the leadscan CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/leadscan [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
