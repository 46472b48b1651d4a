package main

import (
	"os"

	"github.com/wonny/optrisk/cmd/optrisk/commands"
)

// main is the entry point for the optrisk CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/optrisk [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
