package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "compaudit",
	Version: Version,
	Short:   "Audit design system components for missing metadata and hardcoded values",
	Long: `compaudit audits the components of a design document export.
It answers:
1. Which components have no description or documentation link?
2. Which properties use hardcoded values instead of variables or styles?
3. Where in the document do they live?`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command until it returns or the process is
// interrupted. This is called by main.main().
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := RootCmd.ExecuteContext(ctx)
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}

	err = MapError(err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
	}
	return err
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&projectPath, "root", "C", "", "Workspace root (defaults to the current directory)")
	RootCmd.PersistentFlags().StringVarP(&documentPath, "document", "d", "", "Document export to audit (overrides the config)")
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
}
