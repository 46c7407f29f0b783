package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/spf13/cobra"
)

var (
	reportMarkdown bool
	reportWrite    bool
	reportJSON     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the last scans",
	Long: `Summarize the last quick and deep scans.

By default the report is rendered for the terminal. Use --markdown to print
it as markdown, or --write to store it as summary.md in the session directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		switch {
		case reportWrite:
			path, err := services.Report.WriteMarkdown()
			if err != nil {
				return MapError(fmt.Errorf("write report: %w", err))
			}
			fmt.Fprintf(out, "Report written to %s\n", path)
			return nil
		case reportMarkdown:
			md, err := services.Report.Markdown()
			if err != nil {
				return MapError(err)
			}
			fmt.Fprint(out, md)
			return nil
		}

		r, err := services.Report.Build()
		if err != nil {
			return MapError(err)
		}
		if reportJSON {
			return writeJSON(out, r)
		}
		renderReport(out, r)
		return nil
	},
}

func renderReport(w io.Writer, r *application.Report) {
	fmt.Fprintln(w, headerStyle.Render("Component audit"))
	if r.LastScanTime != "" {
		fmt.Fprintln(w, mutedStyle.Render("Last scan: "+r.LastScanTime))
	}
	fmt.Fprintln(w)

	if r.SummaryText != "" {
		fmt.Fprintln(w, boxStyle.Render(r.SummaryText))
		fmt.Fprintln(w)
	}

	stats := lipgloss.JoinHorizontal(lipgloss.Top,
		statBox("Components", r.Stats.Visible),
		statBox("No description", r.Stats.MissingDesc),
		statBox("No docs", r.Stats.MissingDocs),
		statBox("Hardcoded", r.Stats.VisibleFindings),
	)
	fmt.Fprintln(w, stats)

	for _, p := range r.Pages {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "%s %s\n", titleStyle.Render(p.PageName), mutedStyle.Render(fmt.Sprintf("(%d)", p.Total())))
		for _, rec := range p.Displayed() {
			variant := ""
			if rec.IsVariant {
				variant = mutedStyle.Render(" " + audit.Display(rec.VariantLabel()))
			}
			fmt.Fprintf(w, "  %s%s  desc %s  docs %s", rec.Name, variant, check(rec.HasDescription), check(rec.HasDocumentationLink))
			if n := len(rec.VisibleFindings); n > 0 {
				fmt.Fprint(w, warnStyle.Render(fmt.Sprintf("  %d hardcoded", n)))
			}
			fmt.Fprintln(w)
		}
	}
}

func statBox(label string, n int) string {
	return boxStyle.Render(fmt.Sprintf("%s\n%s", titleStyle.Render(fmt.Sprint(n)), mutedStyle.Render(label)))
}

func init() {
	reportCmd.Flags().BoolVar(&reportMarkdown, "markdown", false, "Print the report as markdown")
	reportCmd.Flags().BoolVar(&reportWrite, "write", false, "Write the markdown report to the session directory")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(reportCmd)
}
