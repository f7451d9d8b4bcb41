package cli

import (
	"fmt"
	"time"

	"github.com/hourglasshq/hourglass/internal/report"
	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running time entry",
	RunE:  runStop,
}

func runStop(cmd *cobra.Command, args []string) error {
	cc, err := openContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cc.Close()
	ctx := cmd.Context()

	running, err := cc.Store.RunningEntries(ctx, cc.Organization.ID, cc.Member.ID)
	if err != nil {
		return fmt.Errorf("failed to list running entries: %w", err)
	}
	if len(running) == 0 {
		fmt.Println("No running time entry.")
		return nil
	}

	now := time.Now().UTC()
	for _, entry := range running {
		if err := cc.Store.StopTimeEntry(ctx, cc.Organization.ID, entry.ID, now); err != nil {
			return fmt.Errorf("failed to stop entry %s: %w", entry.ID, err)
		}
		desc := entry.Description
		if desc == "" {
			desc = "(no description)"
		}
		fmt.Printf("Stopped %s after %s\n", desc, report.FormatDuration(entry.DurationSeconds(now)))
	}
	return nil
}
