package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/config"
)

const kitExport = `{
  "id": "kit",
  "name": "Kit",
  "currentPage": "p1",
  "pages": [
    {"id": "p1", "name": "Icons", "children": [
      {"id": "c1", "name": "Star", "type": "COMPONENT",
       "fills": [{"type": "SOLID", "color": {"r": 1, "g": 0, "b": 0}}],
       "children": [{"id": "t1", "name": "Label", "type": "TEXT"}]}
    ]},
    {"id": "p2", "name": "Forms", "children": [
      {"id": "c2", "name": "Input", "type": "COMPONENT", "description": "Text input",
       "documentationLinks": [{"uri": "https://docs.example.com/input"}]}
    ]}
  ]
}`

// newWorkspace writes the kit export into a temp root.
func newWorkspace(t *testing.T) string {
	t.Helper()
	t.Setenv(config.DocumentEnv, "")
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "kit.json"), []byte(kitExport), 0600); err != nil {
		t.Fatalf("write export: %v", err)
	}
	return root
}

// resetFlags restores every package-level flag between runs.
func resetFlags() {
	projectPath, documentPath, logLevel = "", "", "error"
	scanScope, scanJSON = "", false
	resultsPage, resultsComponent = "", ""
	resultsMore, resultsAll, resultsReset, resultsToggle = false, false, false, false
	resultsExpand, resultsCollapse, resultsJSON = false, false, false
	settingsJSON, statusJSON = false, false
	reportMarkdown, reportWrite, reportJSON = false, false, false
	locateNode = ""
	initScope = "current-page"
}

// runCLI executes the root command against root and returns its output.
func runCLI(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	defer resetFlags()

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(append([]string{"--root", root, "--log-level", "error"}, args...))
	defer RootCmd.SetArgs(nil)

	err := RootCmd.ExecuteContext(context.Background())
	return out.String(), err
}
