package cli

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rerun the last scan whenever the document export changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "watch")
		if err != nil {
			return err
		}
		if watchDebounce > 0 {
			services.Workspace.Config.WatchDebounce = watchDebounce
		}

		out := cmd.OutOrStdout()
		rescan := services.NewRescan()
		rescan.OnResult = func(res *application.ScanResult, err error) {
			fmt.Fprintf(out, "\nDocument change detected at %s\n", time.Now().Format("15:04:05"))
			if err != nil {
				fmt.Fprintf(out, "  %v\n", MapError(err))
				return
			}
			renderProgress(out, res.Progress)
		}

		fmt.Fprintf(out, "Watching %s for changes...\n", services.Workspace.Export.Path)
		return rescan.Run(commandContext(cmd))
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "Wait this long after the last change before rescanning")
	RootCmd.AddCommand(watchCmd)
}
