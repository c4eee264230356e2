// Command copilot is the entry point for the Campus Copilot assistant.
// It provides a CLI interface (via Cobra) and an optional HTTP server for
// portal integrations.
package main

import (
	"fmt"
	"os"

	"github.com/campuscopilot/copilot-go/cmd/copilot/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
