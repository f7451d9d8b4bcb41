package importer

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/model"
)

// Row is the common intermediate shape every source format normalizes
// into. Field text is preserved byte for byte through to storage.
type Row struct {
	UserName     string
	UserEmail    string
	ClientName   string
	ProjectName  string
	ProjectColor string
	TaskName     string
	Description  string
	Billable     bool
	Start        time.Time
	End          *time.Time
	Tags         []string
}

// importRow resolves the row's entities in dependency order and persists
// one time entry. Every time entry is stored with is_imported set; entries
// are never deduplicated.
func (r *resolver) importRow(ctx context.Context, row Row) error {
	_, member, err := r.userByEmail(ctx, row.UserName, row.UserEmail)
	if err != nil {
		return err
	}

	client, err := r.clientByName(ctx, row.ClientName)
	if err != nil {
		return err
	}

	project, err := r.projectByName(ctx, row.ProjectName, row.ProjectColor, client)
	if err != nil {
		return err
	}

	task, err := r.taskByName(ctx, project, row.TaskName)
	if err != nil {
		return err
	}

	tagIDs, err := r.tagIDs(ctx, row.Tags)
	if err != nil {
		return err
	}

	entry := model.TimeEntry{
		ID:             uuid.NewString(),
		OrganizationID: r.org.ID,
		MemberID:       member.ID,
		UserID:         member.UserID,
		Description:    row.Description,
		Start:          row.Start.UTC(),
		Billable:       row.Billable,
		Tags:           tagIDs,
		IsImported:     true,
		CreatedAt:      time.Now().UTC(),
	}
	if row.End != nil {
		end := row.End.UTC()
		entry.End = &end
	}
	if project != nil {
		entry.ProjectID = &project.ID
		entry.ClientID = project.ClientID
	}
	if task != nil {
		entry.TaskID = &task.ID
	}

	if err := r.st.CreateTimeEntry(ctx, entry); err != nil {
		return err
	}
	r.report.TimeEntriesCreated++
	return nil
}
