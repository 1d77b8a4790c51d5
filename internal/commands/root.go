package commands

import (
	"github.com/spf13/cobra"

	"github.com/stmtlens/stmtlens/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "stmtlens",
		Short:   "Bank statement normalization and counterparty analytics",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringP("dir", "C", ".", "project directory")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newNormalizeCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newTemplatesCommand())
	rootCmd.AddCommand(newHistoryCommand())

	return rootCmd
}
