package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/billing"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
	"github.com/spf13/cobra"
)

var (
	startProject  string
	startTask     string
	startBillable bool
	startTags     []string
)

var startCmd = &cobra.Command{
	Use:   "start [description]",
	Short: "Start tracking time",
	Long: `Start a running time entry. A previous running entry is left running;
stop it first with 'hourglass stop' if that is not what you want.

Examples:
  hourglass start "Writing docs"
  hourglass start "Code review" --project Website --billable`,
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVarP(&startProject, "project", "P", "", "Project name")
	startCmd.Flags().StringVar(&startTask, "task", "", "Task name (requires --project)")
	startCmd.Flags().BoolVarP(&startBillable, "billable", "b", false, "Mark the entry billable")
	startCmd.Flags().StringSliceVar(&startTags, "tags", nil, "Tag names, comma separated")
}

func runStart(cmd *cobra.Command, args []string) error {
	cc, err := openContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cc.Close()
	ctx := cmd.Context()

	var projectID, clientID *string
	if startProject != "" {
		project, err := cc.Store.FindProjectByName(ctx, cc.Organization.ID, startProject)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no project named %q", startProject)
		}
		if err != nil {
			return fmt.Errorf("failed to look up project: %w", err)
		}
		projectID = &project.ID
		clientID = project.ClientID
	}

	var taskID *string
	if startTask != "" {
		if projectID == nil {
			return fmt.Errorf("--task requires --project")
		}
		task, err := cc.Store.FindTaskByName(ctx, cc.Organization.ID, *projectID, startTask)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no task named %q in project %q", startTask, startProject)
		}
		if err != nil {
			return fmt.Errorf("failed to look up task: %w", err)
		}
		taskID = &task.ID
	}

	var tagIDs []string
	for _, name := range startTags {
		tag, err := cc.Store.FindTagByName(ctx, cc.Organization.ID, name)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no tag named %q", name)
		}
		if err != nil {
			return fmt.Errorf("failed to look up tag: %w", err)
		}
		tagIDs = append(tagIDs, tag.ID)
	}

	var rate *int
	if startBillable {
		rate, err = billing.ResolveForEntry(ctx, cc.Store, cc.Organization, cc.Member, projectID)
		if err != nil {
			return fmt.Errorf("failed to resolve billable rate: %w", err)
		}
	}

	if running, err := cc.Store.RunningEntries(ctx, cc.Organization.ID, cc.Member.ID); err == nil && len(running) > 0 {
		fmt.Printf("Note: %d entry already running; 'hourglass stop' stops all of them\n", len(running))
	}

	now := time.Now().UTC()
	entry := model.TimeEntry{
		ID:             uuid.NewString(),
		OrganizationID: cc.Organization.ID,
		MemberID:       cc.Member.ID,
		UserID:         cc.User.ID,
		ProjectID:      projectID,
		TaskID:         taskID,
		ClientID:       clientID,
		Description:    strings.Join(args, " "),
		Start:          now,
		Billable:       startBillable,
		BillableRate:   rate,
		Tags:           tagIDs,
		CreatedAt:      now,
	}
	if err := cc.Store.CreateTimeEntry(ctx, entry); err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}

	desc := entry.Description
	if desc == "" {
		desc = "(no description)"
	}
	fmt.Printf("Started %s at %s\n", desc, now.Local().Format("15:04:05"))
	return nil
}
