package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/hourglasshq/hourglass/internal/report"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	reportGroup    string
	reportSubGroup string
	reportStart    string
	reportEnd      string
	reportFillGaps bool
	reportMine     bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show a grouped time report",
	Long: `Aggregate the organization's time entries, optionally grouped by up to
two dimensions (day, week, month, year, user, project, task, client,
billable).

Examples:
  hourglass report --group project
  hourglass report --group day --sub-group project --start 2024-01-01 --end 2024-02-01
  hourglass report --group week --fill-gaps --start 2024-01-01 --end 2024-02-01`,
	RunE: runReport,
}

var (
	reportTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	reportGroupStyle = lipgloss.NewStyle().Bold(true)
	reportSubStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	reportTotalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#95E1A3"))
)

func init() {
	reportCmd.Flags().StringVarP(&reportGroup, "group", "g", "", "Primary grouping dimension")
	reportCmd.Flags().StringVar(&reportSubGroup, "sub-group", "", "Secondary grouping dimension")
	reportCmd.Flags().StringVar(&reportStart, "start", "", "Range start (YYYY-MM-DD, inclusive)")
	reportCmd.Flags().StringVar(&reportEnd, "end", "", "Range end (YYYY-MM-DD, exclusive)")
	reportCmd.Flags().BoolVar(&reportFillGaps, "fill-gaps", false, "Insert empty time buckets across the range")
	reportCmd.Flags().BoolVar(&reportMine, "mine", false, "Only include the acting user's entries")
}

func runReport(cmd *cobra.Command, args []string) error {
	cc, err := openContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cc.Close()

	loc := time.UTC
	if l, err := time.LoadLocation(cc.User.Timezone); err == nil {
		loc = l
	}

	opts := report.Options{
		FillGaps:  reportFillGaps,
		Location:  loc,
		WeekStart: report.ParseWeekStart(cc.User.WeekStart),
		Now:       time.Now().UTC(),
	}
	if reportGroup != "" {
		g, err := report.ParseGroup(reportGroup)
		if err != nil {
			return err
		}
		opts.Group = g
	}
	if reportSubGroup != "" {
		g, err := report.ParseGroup(reportSubGroup)
		if err != nil {
			return err
		}
		opts.SubGroup = g
	}

	filter := store.EntryFilter{OrganizationID: cc.Organization.ID}
	if reportMine {
		filter.MemberIDs = []string{cc.Member.ID}
	}
	for _, bound := range []struct {
		raw  string
		name string
		opt  *time.Time
		dest **time.Time
	}{
		{reportStart, "start", &opts.Start, &filter.Start},
		{reportEnd, "end", &opts.End, &filter.End},
	} {
		if bound.raw == "" {
			continue
		}
		t, err := time.ParseInLocation("2006-01-02", bound.raw, loc)
		if err != nil {
			return fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", bound.name, bound.raw)
		}
		utc := t.UTC()
		*bound.opt = utc
		*bound.dest = &utc
	}

	if err := opts.Validate(); err != nil {
		return err
	}

	entries, err := cc.Store.ListTimeEntries(cmd.Context(), filter)
	if err != nil {
		return fmt.Errorf("failed to list time entries: %w", err)
	}
	labels, err := report.LoadLabels(cmd.Context(), cc.Store, cc.Organization.ID)
	if err != nil {
		return fmt.Errorf("failed to load labels: %w", err)
	}
	result, err := report.Aggregate(entries, opts, labels)
	if err != nil {
		return err
	}

	printReport(cc.Organization.Name, cc.Organization.Currency, result)
	return nil
}

func printReport(orgName, currency string, res *report.Result) {
	// Plain output when piped, styled when on a terminal
	styled := term.IsTerminal(int(os.Stdout.Fd()))
	render := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	fmt.Println(render(reportTitleStyle, orgName))
	fmt.Println(strings.Repeat("─", 60))

	for _, b := range res.GroupedData {
		fmt.Printf("%-38s  %10s  %s\n",
			render(reportGroupStyle, reportBucketLabel(b)),
			report.FormatDuration(b.Seconds),
			report.FormatCost(b.Cost, currency))
		for _, sub := range b.GroupedData {
			fmt.Printf("  %-36s  %10s  %s\n",
				render(reportSubStyle, reportBucketLabel(sub)),
				report.FormatDuration(sub.Seconds),
				report.FormatCost(sub.Cost, currency))
		}
	}

	fmt.Println(strings.Repeat("─", 60))
	fmt.Printf("%-38s  %10s  %s\n",
		render(reportTotalStyle, "Total"),
		report.FormatDuration(res.Seconds),
		report.FormatCost(res.Cost, currency))
}

func reportBucketLabel(b *report.Bucket) string {
	if b.Description != nil {
		return *b.Description
	}
	if b.Key != nil {
		return *b.Key
	}
	return ""
}
