package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the session and restore the default settings",
	Long: `Clear the scan results, summary, progress and view state of the document
and restore the default settings. The scan scope and the audit trail are kept.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		if err := services.Session.Reset("cli"); err != nil {
			return MapError(fmt.Errorf("reset session: %w", err))
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Session cleared and settings restored to defaults.")
		return nil
	},
}

func init() {
	RootCmd.AddCommand(resetCmd)
}
