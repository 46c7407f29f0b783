package cli

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/spf13/cobra"
)

var (
	scanScope string
	scanJSON  bool
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the document export",
	Long: `Scan the document export.

  quick   count components, variants and missing metadata across every page
  deep    audit each component for missing metadata and hardcoded values
  all     quick scan, then deep scan every page

Examples:
  compaudit scan quick
  compaudit scan deep --scope all-pages
  compaudit scan all --json`,
}

var scanQuickCmd = &cobra.Command{
	Use:   "quick",
	Short: "Count components and missing metadata across the document",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, func(svc *application.ScanService) (*application.ScanResult, error) {
			return svc.QuickScan(commandContext(cmd))
		})
	},
}

var scanDeepCmd = &cobra.Command{
	Use:   "deep",
	Short: "Audit components of the current page or all pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		raw := scanScope
		if raw == "" {
			raw = string(services.Workspace.Config.DefaultScope)
		}
		scope, err := scan.ParseScope(raw)
		if err != nil {
			return NewCLIError(err.Error(), "Use --scope current-page or --scope all-pages", nil)
		}
		res, err := services.Scan.DeepScan(commandContext(cmd), scope)
		return printScan(cmd.OutOrStdout(), res, err)
	},
}

var scanAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Quick scan, then deep scan every page",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, func(svc *application.ScanService) (*application.ScanResult, error) {
			return svc.ScanAllPages(commandContext(cmd))
		})
	},
}

var scanScopeCmd = &cobra.Command{
	Use:   "scope",
	Short: "Switch rescans between the current page and all pages",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		scope, err := services.Scan.ToggleScope()
		if err != nil {
			return MapError(fmt.Errorf("toggle scope: %w", err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scan scope: %s\n", scope)
		return nil
	},
}

var rescanCmd = &cobra.Command{
	Use:   "rescan",
	Short: "Repeat the last scan",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runScan(cmd, func(svc *application.ScanService) (*application.ScanResult, error) {
			return svc.Rescan(commandContext(cmd))
		})
	},
}

func runScan(cmd *cobra.Command, run func(*application.ScanService) (*application.ScanResult, error)) error {
	services, err := loadServices(cmd, "cli")
	if err != nil {
		return err
	}
	res, err := run(services.Scan)
	return printScan(cmd.OutOrStdout(), res, err)
}

func printScan(w io.Writer, res *application.ScanResult, err error) error {
	if res != nil && scanJSON {
		if jsonErr := writeJSON(w, res); jsonErr != nil {
			return jsonErr
		}
	} else if res != nil {
		renderProgress(w, res.Progress)
		if res.Summary != nil {
			fmt.Fprintln(w)
			fmt.Fprintln(w, boxStyle.Render(res.Summary.Text()))
		}
		if res.Kind == scan.KindDeep {
			fmt.Fprintln(w, mutedStyle.Render("Run 'compaudit results' to browse the findings."))
		}
	}
	if err != nil {
		return MapError(err)
	}
	return nil
}

func init() {
	scanDeepCmd.Flags().StringVar(&scanScope, "scope", "", "current-page or all-pages (defaults to the configured scope)")
	for _, c := range []*cobra.Command{scanQuickCmd, scanDeepCmd, scanAllCmd, rescanCmd} {
		c.Flags().BoolVar(&scanJSON, "json", false, "Output the scan result as JSON")
	}
	scanCmd.AddCommand(scanQuickCmd, scanDeepCmd, scanAllCmd, scanScopeCmd)
	RootCmd.AddCommand(scanCmd, rescanCmd)
}
