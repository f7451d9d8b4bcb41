package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
)

// EntryFilter selects time entries within one organization. ID slices are
// OR-combined within a field and AND-combined across fields; Start/End
// bound the entry start as [Start, End).
type EntryFilter struct {
	OrganizationID string
	MemberIDs      []string
	UserID         string
	ProjectIDs     []string
	ClientIDs      []string
	TagIDs         []string
	TaskIDs        []string
	Start          *time.Time
	End            *time.Time
	Active         *bool
	Billable       *bool
}

const entryColumns = `id, organization_id, member_id, user_id, project_id, task_id, client_id, description, start, "end", billable, billable_rate, tags, is_imported, created_at`

// CreateTimeEntry inserts a time entry.
func (s *Store) CreateTimeEntry(ctx context.Context, e model.TimeEntry) error {
	tags, err := tagsToDB(e.Tags)
	if err != nil {
		return err
	}
	_, err = s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO time_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.OrganizationID, e.MemberID, e.UserID, nullStr(e.ProjectID), nullStr(e.TaskID),
		nullStr(e.ClientID), e.Description, timeToDB(e.Start), nullTimeToDB(e.End),
		boolToDB(e.Billable), nullInt(e.BillableRate), tags, boolToDB(e.IsImported), timeToDB(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create time entry: %w", err)
	}
	return nil
}

// GetTimeEntry returns a time entry by id within an organization.
func (s *Store) GetTimeEntry(ctx context.Context, orgID, id string) (model.TimeEntry, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT `+entryColumns+` FROM time_entries WHERE organization_id = ? AND id = ?`), orgID, id)
	return scanEntry(row)
}

// StopTimeEntry sets the end timestamp of a running entry.
func (s *Store) StopTimeEntry(ctx context.Context, orgID, id string, end time.Time) error {
	res, err := s.q.ExecContext(ctx, s.rebind(`
		UPDATE time_entries SET "end" = ? WHERE organization_id = ? AND id = ? AND "end" IS NULL`),
		timeToDB(end), orgID, id)
	if err != nil {
		return fmt.Errorf("failed to stop time entry: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// RunningEntries returns the running entries of a member. More than one
// violates a soft invariant; callers log it rather than fail.
func (s *Store) RunningEntries(ctx context.Context, orgID, memberID string) ([]model.TimeEntry, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT `+entryColumns+` FROM time_entries
		WHERE organization_id = ? AND member_id = ? AND "end" IS NULL ORDER BY start`), orgID, memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query running entries: %w", err)
	}
	defer rows.Close()
	return collectEntries(rows)
}

// ListTimeEntries returns all entries matching the filter, ordered by start.
func (s *Store) ListTimeEntries(ctx context.Context, f EntryFilter) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	err := s.ForEachEntry(ctx, f, 1000, func(e model.TimeEntry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// ForEachEntry streams entries matching the filter in chronological order,
// reading pageSize rows at a time so large exports stay within bounded
// memory.
func (s *Store) ForEachEntry(ctx context.Context, f EntryFilter, pageSize int, fn func(model.TimeEntry) error) error {
	if f.OrganizationID == "" {
		return fmt.Errorf("entry filter requires an organization id")
	}
	if pageSize <= 0 {
		pageSize = 1000
	}

	where, args := buildEntryWhere(f)

	lastStart := ""
	lastID := ""
	for {
		pageArgs := append(append([]any{}, args...), lastStart, lastStart, lastID, pageSize)
		query := s.rebind(`
			SELECT ` + entryColumns + ` FROM time_entries
			WHERE ` + where + ` AND (start > ? OR (start = ? AND id > ?))
			ORDER BY start, id LIMIT ?`)

		rows, err := s.q.QueryContext(ctx, query, pageArgs...)
		if err != nil {
			return fmt.Errorf("failed to query time entries: %w", err)
		}

		page, err := collectEntries(rows)
		rows.Close()
		if err != nil {
			return err
		}
		if len(page) == 0 {
			return nil
		}

		for _, e := range page {
			if err := fn(e); err != nil {
				return err
			}
		}

		last := page[len(page)-1]
		lastStart = timeToDB(last.Start)
		lastID = last.ID
		if len(page) < pageSize {
			return nil
		}
	}
}

func buildEntryWhere(f EntryFilter) (string, []any) {
	conds := []string{"organization_id = ?"}
	args := []any{f.OrganizationID}

	addIn := func(col string, ids []string) {
		if len(ids) == 0 {
			return
		}
		placeholders := strings.Repeat("?, ", len(ids)-1) + "?"
		conds = append(conds, col+" IN ("+placeholders+")")
		for _, id := range ids {
			args = append(args, id)
		}
	}

	addIn("member_id", f.MemberIDs)
	addIn("project_id", f.ProjectIDs)
	addIn("client_id", f.ClientIDs)
	addIn("task_id", f.TaskIDs)

	if f.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, f.UserID)
	}

	// Tags are a JSON array of quoted ids, so a substring match on the
	// quoted id is exact.
	if len(f.TagIDs) > 0 {
		ors := make([]string, 0, len(f.TagIDs))
		for _, id := range f.TagIDs {
			ors = append(ors, "tags LIKE ?")
			args = append(args, `%"`+id+`"%`)
		}
		conds = append(conds, "("+strings.Join(ors, " OR ")+")")
	}

	if f.Start != nil {
		conds = append(conds, "start >= ?")
		args = append(args, timeToDB(*f.Start))
	}
	if f.End != nil {
		conds = append(conds, "start < ?")
		args = append(args, timeToDB(*f.End))
	}
	if f.Active != nil {
		if *f.Active {
			conds = append(conds, `"end" IS NULL`)
		} else {
			conds = append(conds, `"end" IS NOT NULL`)
		}
	}
	if f.Billable != nil {
		conds = append(conds, "billable = ?")
		args = append(args, boolToDB(*f.Billable))
	}

	return strings.Join(conds, " AND "), args
}

func collectEntries(rows *sql.Rows) ([]model.TimeEntry, error) {
	var entries []model.TimeEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func scanEntry(row rowScanner) (model.TimeEntry, error) {
	var e model.TimeEntry
	var projectID, taskID, clientID, end sql.NullString
	var rate sql.NullInt64
	var billable, isImported int
	var start, tags, createdAt string

	err := row.Scan(&e.ID, &e.OrganizationID, &e.MemberID, &e.UserID, &projectID, &taskID,
		&clientID, &e.Description, &start, &end, &billable, &rate, &tags, &isImported, &createdAt)
	if err == sql.ErrNoRows {
		return model.TimeEntry{}, ErrNotFound
	}
	if err != nil {
		return model.TimeEntry{}, fmt.Errorf("failed to scan time entry: %w", err)
	}

	e.ProjectID = nullStrFromDB(projectID)
	e.TaskID = nullStrFromDB(taskID)
	e.ClientID = nullStrFromDB(clientID)
	e.BillableRate = nullIntFromDB(rate)
	e.Billable = billable != 0
	e.IsImported = isImported != 0
	if e.Start, err = timeFromDB(start); err != nil {
		return model.TimeEntry{}, err
	}
	if e.End, err = nullTimeFromDB(end); err != nil {
		return model.TimeEntry{}, err
	}
	if e.Tags, err = tagsFromDB(tags); err != nil {
		return model.TimeEntry{}, err
	}
	if e.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.TimeEntry{}, err
	}
	return e, nil
}
