package commands

import (
	"github.com/spf13/cobra"

	"github.com/tabsplit/tabsplit/pkg/logging"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tabsplit",
	Short: "tabsplit - shared expense ledger",
	Long: `tabsplit records shared bills, splits item costs among assignees and
tracks who owes whom until debts are settled. It exposes a JSON REST API
backed by SQLite.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Setup()
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return rootCmd.Execute()
}
