package watch

import (
	"path/filepath"
)

// editorNoise are files written next to an export by editors and sync tools.
var editorNoise = []string{"*.tmp", "*.swp", "*~", ".#*", ".DS_Store"}

// ExportFilter accepts events for a single export file.
type ExportFilter struct {
	target  string
	Exclude []string
}

func NewExportFilter(target string) *ExportFilter {
	return &ExportFilter{
		target:  filepath.Clean(target),
		Exclude: editorNoise,
	}
}

// Matches reports whether path is the export file and not editor noise.
func (f *ExportFilter) Matches(path string) bool {
	path = filepath.Clean(path)
	base := filepath.Base(path)

	for _, pattern := range f.Exclude {
		if matched, _ := filepath.Match(pattern, base); matched {
			return false
		}
	}
	return path == f.target
}
