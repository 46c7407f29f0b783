package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var locateNode string

var locateCmd = &cobra.Command{
	Use:   "locate <component-id>",
	Short: "Show where a component or one of its nodes lives",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		loc, err := services.Navigation.Locate(commandContext(cmd), args[0], locateNode)
		if err != nil {
			return MapError(err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), loc.Message)
		return nil
	},
}

func init() {
	locateCmd.Flags().StringVar(&locateNode, "node", "", "A node inside the component (wins over the component id)")
	RootCmd.AddCommand(locateCmd)
}
