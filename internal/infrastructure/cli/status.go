package cli

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/spf13/cobra"
)

var statusJSON bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the scan state and progress of the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		st, err := services.Session.Status()
		if err != nil {
			return MapError(err)
		}
		if statusJSON {
			return writeJSON(cmd.OutOrStdout(), st)
		}
		printStatus(cmd.OutOrStdout(), st)
		return nil
	},
}

func printStatus(w io.Writer, st *application.Status) {
	fmt.Fprintln(w, headerStyle.Render("Document "+st.Document))

	last := st.Info.LastScanTime
	if last == "" {
		last = "never"
	}
	scope := "current page"
	if !st.Info.CurrentPageOnly {
		scope = "all pages"
	}
	state := st.Info.State
	if state == "" {
		state = "idle"
	}
	fmt.Fprintf(w, "State: %s\n", state)
	fmt.Fprintf(w, "Last scan: %s", last)
	if st.Info.LastKind != "" {
		fmt.Fprintf(w, " (%s)", st.Info.LastKind)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Scope: %s\n", scope)
	fmt.Fprintf(w, "Components: %d  Hardcoded values: %d", st.Records, st.Findings)
	if st.ScanErrors > 0 {
		fmt.Fprint(w, errStyle.Render(fmt.Sprintf("  Failed: %d", st.ScanErrors)))
	}
	fmt.Fprintln(w)

	if st.Summary != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, boxStyle.Render(st.Summary.Text()))
	}
	if st.Progress.Message != "" || len(st.Progress.Pages) > 0 {
		fmt.Fprintln(w)
		renderProgress(w, st.Progress)
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(statusCmd)
}
