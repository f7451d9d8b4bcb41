package model

import "time"

// TimeEntry is one unit of tracked work. End is nil while the entry is
// running; BillableRate is resolved once at creation time and never
// recomputed, so reports stay historically accurate when rates change.
type TimeEntry struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	MemberID       string     `json:"member_id"`
	UserID         string     `json:"user_id"`
	ProjectID      *string    `json:"project_id"`
	TaskID         *string    `json:"task_id"`
	ClientID       *string    `json:"client_id"` // denormalized from the project
	Description    string     `json:"description"`
	Start          time.Time  `json:"start"`
	End            *time.Time `json:"end"`
	Billable       bool       `json:"billable"`
	BillableRate   *int       `json:"billable_rate"` // cents per hour, frozen at creation
	Tags           []string   `json:"tags"`          // tag ids
	IsImported     bool       `json:"is_imported"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsRunning reports whether the entry has not been stopped yet.
func (e *TimeEntry) IsRunning() bool {
	return e.End == nil
}

// DurationSeconds returns the entry duration in whole seconds. Running
// entries are measured against now, so callers should capture one clock
// per evaluation.
func (e *TimeEntry) DurationSeconds(now time.Time) int64 {
	end := now
	if e.End != nil {
		end = *e.End
	}
	d := end.Sub(e.Start)
	if d < 0 {
		return 0
	}
	return int64(d / time.Second)
}

// CostCents returns the billable cost of the entry in cents. Non-billable
// entries and entries without a frozen rate cost nothing.
func (e *TimeEntry) CostCents(now time.Time) int64 {
	if !e.Billable || e.BillableRate == nil {
		return 0
	}
	return e.DurationSeconds(now) * int64(*e.BillableRate) / 3600
}
