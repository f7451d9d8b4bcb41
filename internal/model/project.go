package model

import "time"

// Client is a customer an organization bills work to.
type Client struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	Name           string     `json:"name"`
	ArchivedAt     *time.Time `json:"archived_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Project groups tasks and time entries, optionally under a client.
type Project struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ClientID       *string    `json:"client_id"`
	Name           string     `json:"name"`
	Color          string     `json:"color"`
	BillableRate   *int       `json:"billable_rate"` // cents per hour
	IsBillable     bool       `json:"is_billable"`
	IsPublic       bool       `json:"is_public"`
	ArchivedAt     *time.Time `json:"archived_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsArchived reports whether the project has been archived.
func (p *Project) IsArchived() bool {
	return p.ArchivedAt != nil
}

// Task belongs to exactly one project. A nil DoneAt means the task is
// still open.
type Task struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organization_id"`
	ProjectID      string     `json:"project_id"`
	Name           string     `json:"name"`
	DoneAt         *time.Time `json:"done_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

// IsDone reports whether the task has been completed.
func (t *Task) IsDone() bool {
	return t.DoneAt != nil
}

// Tag is an organization-scoped label attached to time entries.
type Tag struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}
