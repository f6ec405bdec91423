package app

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/bibmerge/internal/cmd/emoji"
	"github.com/agentstation/bibmerge/internal/cmd/output"
	"github.com/agentstation/bibmerge/pkg/errors"
)

// rootFlags holds the persistent flags before they are folded into Config.
type rootFlags struct {
	configFile string
	verbose    bool
	quiet      bool
	noColor    bool
	format     string
	logLevel   string
}

// Execute runs the bibmerge CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:     "bibmerge",
		Short:   "Combine and convert bibliographic data",
		Version: a.version,
		Long: `Bibmerge reconciles bibliographies that describe the same publications
with different spellings, such as exports from MathSciNet and zbMATH.

It derives a join key for every record from normalized author, year and
title text, reports records that share a key, and merges datasets
directionally: each record of the left file pairs with at most one record
of the right file, and nothing is dropped silently.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupCommand(flags)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.PersistentFlags().StringVar(&flags.configFile, "config", "", "config file (default is $HOME/.bibmerge.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&flags.quiet, "quiet", "q", false, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&flags.format, "format", "", "report format: table, wide, json, yaml (default: table on a terminal, json otherwise)")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides -v/-q)")

	rootCmd.SetVersionTemplate("bibmerge {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs. It reloads the
// configuration when --config is given, then applies the global flags.
func (a *App) setupCommand(flags *rootFlags) error {
	if flags.configFile != "" {
		config, err := LoadConfig(flags.configFile)
		if err != nil {
			return err
		}
		a.config = config

		a.mu.Lock()
		a.client = nil
		a.mu.Unlock()
	}

	a.config.UpdateFromFlags(flags.verbose, flags.quiet, flags.noColor, flags.format, flags.logLevel)
	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return errors.NewValidationError("format", a.config.Format, err.Error())
	}
	a.config.Format = string(output.DetectFormat(string(format)))

	logger := NewLogger(a.config)
	a.logger = &logger

	return nil
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(errorLine(err))
		os.Exit(1)
	}
}

func errorLine(err error) string {
	return emoji.Error + " Error: " + err.Error() + "\n"
}
