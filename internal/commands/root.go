// Package commands implements the bookkeeping command line: the HTTP server and
// one-off report commands that run against the same storage backends.
package commands

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../internal/commands.Version=...".
var Version = "dev"

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:     "bookkeeping",
		Short:   "Double-entry bookkeeping balances and statement sections",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")

	rootCmd.AddCommand(newServeCommand(&configPath))
	rootCmd.AddCommand(newSectionsCommand(&configPath))
	rootCmd.AddCommand(newTypesCommand(&configPath))

	return rootCmd
}
