package commands

import (
	"github.com/spf13/cobra"

	"github.com/pfo-dev/pfo/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var dir string

	rootCmd := &cobra.Command{
		Use:     "pfo",
		Short:   "Personal finance organizer: normalize bank exports into one ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dir, "dir", ".", "project directory")

	rootCmd.AddCommand(
		newInitCommand(),
		newIngestCommand(&dir),
		newImportCommand(&dir),
		newListCommand(&dir),
		newAddCommand(&dir),
		newEditCommand(&dir),
		newRemoveCommand(&dir),
		newReportCommand(&dir),
	)

	return rootCmd
}
