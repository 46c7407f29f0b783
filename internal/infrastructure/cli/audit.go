package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Inspect and verify the session history",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify the integrity of the session audit trail",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		fmt.Fprintln(out, "Verifying audit trail integrity...")
		violations, err := services.Audit.VerifyIntegrity()
		if err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
		if len(violations) == 0 {
			fmt.Fprintln(out, "Audit trail is intact and verified.")
			return nil
		}

		fmt.Fprintf(out, "Found %d integrity violations:\n", len(violations))
		for _, v := range violations {
			fmt.Fprintf(out, "  - %s\n", v)
		}
		return &CLIError{Message: "audit trail has been tampered with", ExitCode: 1}
	},
}

var auditTimelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show scans and settings changes, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServices(cmd, "cli")
		if err != nil {
			return err
		}
		events, err := services.Audit.GetTimeline()
		if err != nil {
			return fmt.Errorf("failed to load timeline: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Session Timeline")
		fmt.Fprintln(out, "------------------")
		for i := len(events) - 1; i >= 0; i-- {
			e := events[i]
			fmt.Fprintf(out, "[%s] %-6s | %-18s", e.Timestamp.Format(time.RFC822), e.Actor, e.Action)
			if len(e.Metadata) > 0 {
				fmt.Fprintf(out, " (%v)", e.Metadata)
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}

func init() {
	auditCmd.AddCommand(auditVerifyCmd, auditTimelineCmd)
	RootCmd.AddCommand(auditCmd)
}
