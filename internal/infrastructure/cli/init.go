package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/compaudit/internal/infrastructure/config"
	"github.com/felixgeelhaar/compaudit/pkg/domain/scan"
	"github.com/spf13/cobra"
)

var initScope string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write .compaudit/config.yaml for a document export",
	Long: `Write .compaudit/config.yaml for a document export.

Examples:
  compaudit init --document exports/design-system.json
  compaudit init --document kit.json --scope all-pages`,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := getProjectRoot()
		if err != nil {
			return err
		}
		if documentPath == "" {
			return NewCLIError("no document export given", "Pass --document <export.json>", nil)
		}
		if _, err := os.Stat(resolveAgainst(root, documentPath)); err != nil {
			return NewCLIError("document export not found", "Check the path passed to --document", err)
		}
		scope, err := scan.ParseScope(initScope)
		if err != nil {
			return NewCLIError(err.Error(), "Use --scope current-page or --scope all-pages", nil)
		}

		cfg, err := config.Load(root)
		if err != nil {
			return err
		}
		cfg.Document = documentPath
		cfg.DefaultScope = scope
		if err := config.Save(root, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", config.Path(root))
		return nil
	},
}

func resolveAgainst(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

func init() {
	initCmd.Flags().StringVar(&initScope, "scope", string(scan.ScopeCurrentPage), "Default deep scan scope")
	RootCmd.AddCommand(initCmd)
}
