package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge/cmd/bibmerge/cmd/makekey"
	"github.com/agentstation/bibmerge/cmd/bibmerge/cmd/merge"
	"github.com/agentstation/bibmerge/cmd/bibmerge/cmd/union"
	"github.com/agentstation/bibmerge/cmd/bibmerge/cmd/validate"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(makekey.NewCommand(a))
	rootCmd.AddCommand(validate.NewCommand(a))
	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(union.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.NewVersionCommand())
}

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("bibmerge %s\n", a.version)
			if a.config.Verbose {
				cmd.Printf("  commit:   %s\n", a.commit)
				cmd.Printf("  built:    %s\n", a.date)
				cmd.Printf("  built by: %s\n", a.builtBy)
			}
		},
	}
}
