package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(1).
			PaddingRight(1)

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

func check(ok bool) string {
	if ok {
		return okStyle.Render("✓")
	}
	return errStyle.Render("✗")
}

func pageStatusIcon(st scan.PageStatus) string {
	switch st {
	case scan.PageComplete:
		return okStyle.Render("✓")
	case scan.PageLoading:
		return warnStyle.Render("…")
	case scan.PageError:
		return errStyle.Render("✗")
	}
	return mutedStyle.Render("·")
}

func renderProgress(w io.Writer, p scan.Progress) {
	if p.Message != "" {
		fmt.Fprintln(w, p.Message)
	}
	for _, page := range p.Pages {
		line := fmt.Sprintf("  %s %s", pageStatusIcon(page.Status), page.PageName)
		switch {
		case page.Status == scan.PageError && page.Err != "":
			line += errStyle.Render(" " + page.Err)
		case page.Status == scan.PageComplete:
			line += mutedStyle.Render(fmt.Sprintf(" (%d)", page.ComponentCount))
		}
		fmt.Fprintln(w, line)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
