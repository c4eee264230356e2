// Package commands defines all Cobra CLI commands for the copilot binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/campuscopilot/copilot-go/internal/audit"
	"github.com/campuscopilot/copilot-go/internal/config"
	"github.com/campuscopilot/copilot-go/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "copilot",
		Short: "Campus Copilot — the campus knowledge assistant",
		Long: `Campus Copilot is a local-first assistant for student queries.

It answers campus questions through a layered pipeline: instant FAQ rules,
retrieval over ingested campus documents, and an optional LLM backend for
everything else. Attendance queries are answered directly from the
student's portal data.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.copilot/config.yaml).
See 'copilot --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.copilot/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewContextCmd(),
		NewVersionCmd(),
	)

	return root
}
