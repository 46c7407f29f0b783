package cli

import (
	"fmt"
	"io"

	"github.com/felixgeelhaar/compaudit/pkg/application"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
	"github.com/spf13/cobra"
)

var (
	resultsPage      string
	resultsMore      bool
	resultsAll       bool
	resultsReset     bool
	resultsToggle    bool
	resultsComponent string
	resultsExpand    bool
	resultsCollapse  bool
	resultsJSON      bool
)

var resultsCmd = &cobra.Command{
	Use:   "results",
	Short: "Browse the deep scan results",
	Long: `Browse the deep scan results grouped by page.

The view remembers which pages and components are expanded and how many
components of each page are shown.

Examples:
  compaudit results
  compaudit results --page Icons --more
  compaudit results --page Icons --all
  compaudit results --component 12:34
  compaudit results --expand-all`,
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		if err := applyViewFlags(services.View); err != nil {
			return MapError(err)
		}
		v, err := services.View.Current()
		if err != nil {
			return MapError(fmt.Errorf("load results: %w", err))
		}
		if resultsJSON {
			return writeJSON(cmd.OutOrStdout(), v)
		}
		renderResults(cmd.OutOrStdout(), v)
		return nil
	},
}

func applyViewFlags(svc *application.ViewService) error {
	switch {
	case resultsExpand:
		return svc.ExpandAll()
	case resultsCollapse:
		return svc.CollapseAll()
	case resultsComponent != "":
		return svc.ToggleComponent(resultsComponent)
	case resultsPage == "":
		if resultsMore || resultsAll || resultsReset || resultsToggle {
			return NewCLIError("--more, --all, --reset and --toggle need --page", "Pass the page name shown in the results", nil)
		}
		return nil
	case resultsMore:
		return svc.LoadMore(resultsPage)
	case resultsAll:
		return svc.LoadAll(resultsPage)
	case resultsReset:
		return svc.ResetPage(resultsPage)
	}
	return svc.TogglePage(resultsPage)
}

func renderResults(w io.Writer, v *application.ResultView) {
	st := v.Stats
	if st.Visible == 0 {
		fmt.Fprintln(w, "No components match the current filters.")
		return
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%d components across %d pages", st.Visible, st.PagesWithResults)))
	fmt.Fprintf(w, "Missing description: %d  Missing docs: %d  Hardcoded values: %d\n\n",
		st.MissingDesc, st.MissingDocs, st.VisibleFindings)

	for _, p := range v.Pages {
		marker := "▸"
		if p.IsExpanded {
			marker = "▾"
		}
		fmt.Fprintf(w, "%s %s %s\n", marker, titleStyle.Render(p.PageName), mutedStyle.Render(fmt.Sprintf("(%d)", p.Total())))
		if !p.IsExpanded {
			continue
		}
		for _, r := range p.Displayed() {
			renderRecord(w, r)
		}
		if p.HasMore() {
			fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("    … %d more (--page %q --more)", p.Total()-p.DisplayedCount, p.PageName)))
		}
	}
}

func renderRecord(w io.Writer, r view.RecordView) {
	name := r.Name
	if r.IsVariant && r.ComponentSetName != "" {
		name = r.ComponentSetName + " / " + audit.Display(r.VariantLabel())
	}
	fmt.Fprintf(w, "    %s  desc %s  docs %s", name, check(r.HasDescription), check(r.HasDocumentationLink))
	if n := len(r.VisibleFindings); n > 0 {
		fmt.Fprint(w, warnStyle.Render(fmt.Sprintf("  %d hardcoded", n)))
	}
	if r.ScanError != "" {
		fmt.Fprint(w, errStyle.Render("  scan failed"))
	}
	fmt.Fprintln(w, mutedStyle.Render("  "+r.ID))

	if !r.IsExpanded {
		return
	}
	for _, f := range r.VisibleFindings {
		fmt.Fprintf(w, "      %s: %s %s\n", f.Property, f.Value, mutedStyle.Render(f.Path))
	}
	if r.ScanError != "" {
		fmt.Fprintf(w, "      %s\n", errStyle.Render(r.ScanError))
	}
}

func init() {
	f := resultsCmd.Flags()
	f.StringVarP(&resultsPage, "page", "p", "", "Page to act on (toggles it when no other action is given)")
	f.BoolVar(&resultsMore, "more", false, "Show more components of --page")
	f.BoolVar(&resultsAll, "all", false, "Show every component of --page")
	f.BoolVar(&resultsReset, "reset", false, "Show the first components of --page only")
	f.BoolVar(&resultsToggle, "toggle", false, "Expand or collapse --page")
	f.StringVar(&resultsComponent, "component", "", "Expand or collapse the findings of a component")
	f.BoolVar(&resultsExpand, "expand-all", false, "Expand every page")
	f.BoolVar(&resultsCollapse, "collapse-all", false, "Collapse every page")
	f.BoolVar(&resultsJSON, "json", false, "Output in JSON format")
	RootCmd.AddCommand(resultsCmd)
}
