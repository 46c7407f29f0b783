package application

import (
	"fmt"
	"strings"

	"github.com/felixgeelhaar/compaudit/pkg/domain"
	"github.com/felixgeelhaar/compaudit/pkg/domain/audit"
	"github.com/felixgeelhaar/compaudit/pkg/domain/view"
)

// ReportFile is the name of the markdown report in the session directory.
const ReportFile = "summary.md"

// ArtifactWriter stores generated files next to the session.
type ArtifactWriter interface {
	WriteFile(name string, data []byte) (string, error)
}

// Report is everything a summary report shows.
type Report struct {
	LastScanTime string                  `json:"lastScanTime,omitempty"`
	Summary      *audit.QuickScanSummary `json:"summary,omitempty"`
	SummaryText  string                  `json:"summaryText,omitempty"`
	Stats        view.Stats              `json:"stats"`
	Pages        []view.PageView         `json:"pages"`
}

type ReportService struct {
	repo   domain.SessionRepository
	writer ArtifactWriter
}

func NewReportService(repo domain.SessionRepository, writer ArtifactWriter) *ReportService {
	return &ReportService{repo: repo, writer: writer}
}

// SummaryText is the one-paragraph summary of the last quick scan, or empty
// when there is none.
func (s *ReportService) SummaryText() (string, error) {
	summary, err := s.repo.LoadSummary()
	if err != nil {
		return "", fmt.Errorf("load summary: %w", err)
	}
	if summary == nil {
		return "", nil
	}
	return summary.Text(), nil
}

// Build collects the report with every visible record of every page.
func (s *ReportService) Build() (*Report, error) {
	summary, err := s.repo.LoadSummary()
	if err != nil {
		return nil, fmt.Errorf("load summary: %w", err)
	}
	info, err := s.repo.LoadScanInfo()
	if err != nil {
		return nil, fmt.Errorf("load scan info: %w", err)
	}
	records, err := s.repo.LoadRecords()
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	current, err := s.repo.LoadSettings()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	// Reports are not paged.
	st := view.State{}
	pages := view.ComputeView(records, current, st)
	for i := range pages {
		pages[i].DisplayedCount = pages[i].Total()
	}

	r := &Report{
		LastScanTime: info.LastScanTime,
		Summary:      summary,
		Stats:        view.Summarize(pages),
		Pages:        pages,
	}
	if summary != nil {
		r.SummaryText = summary.Text()
	}
	return r, nil
}

// Markdown renders the report as markdown.
func (s *ReportService) Markdown() (string, error) {
	r, err := s.Build()
	if err != nil {
		return "", err
	}
	return RenderMarkdown(r), nil
}

// WriteMarkdown writes the markdown report into the session directory and
// returns its path.
func (s *ReportService) WriteMarkdown() (string, error) {
	md, err := s.Markdown()
	if err != nil {
		return "", err
	}
	return s.writer.WriteFile(ReportFile, []byte(md))
}

func RenderMarkdown(r *Report) string {
	var b strings.Builder
	b.WriteString("# Component audit\n\n")
	if r.LastScanTime != "" {
		fmt.Fprintf(&b, "Last scan: %s\n\n", r.LastScanTime)
	}
	if r.SummaryText != "" {
		b.WriteString("## Summary\n\n")
		b.WriteString(r.SummaryText)
		b.WriteString("\n\n")
	}

	fmt.Fprintf(&b, "## Results\n\n%d components across %d pages, %d hardcoded values.\n\n",
		r.Stats.Visible, r.Stats.PagesWithResults, r.Stats.VisibleFindings)

	for _, p := range r.Pages {
		fmt.Fprintf(&b, "### %s (%d)\n\n", p.PageName, p.Total())
		b.WriteString("| Component | Variant | Description | Docs | Hardcoded |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, rec := range p.Displayed() {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %d |\n",
				escapeCell(rec.Name),
				escapeCell(audit.Display(rec.VariantLabel())),
				yesNo(rec.HasDescription),
				yesNo(rec.HasDocumentationLink),
				len(rec.VisibleFindings))
		}
		b.WriteString("\n")

		for _, rec := range p.Displayed() {
			if len(rec.VisibleFindings) == 0 {
				continue
			}
			fmt.Fprintf(&b, "#### %s\n\n", rec.Name)
			for _, f := range rec.VisibleFindings {
				fmt.Fprintf(&b, "- %s: `%s` at %s\n", f.Property, f.Value, f.Path)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
