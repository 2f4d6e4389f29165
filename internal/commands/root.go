package commands

import (
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tally",
		Short:   "Import bank statements into a personal ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().String("book", ".", "book directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(),
		newAccountsCommand(),
		newCategoriesCommand(),
		newImportCommand(),
		newReconcileCommand(),
	)

	return rootCmd
}
