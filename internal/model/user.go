package model

import "time"

// Member roles within an organization.
const (
	RoleOwner       = "owner"
	RoleAdmin       = "admin"
	RoleManager     = "manager"
	RoleEmployee    = "employee"
	RolePlaceholder = "placeholder"
)

// User is a login identity. Placeholder users are created by the import
// pipeline to represent people found in imported data; they carry no
// password and cannot log in.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // nil for placeholder users
	Timezone     string    `json:"timezone"`
	WeekStart    string    `json:"week_start"` // weekday name, lower case
	CreatedAt    time.Time `json:"created_at"`
}

// IsPlaceholder reports whether the user has no login credentials.
func (u *User) IsPlaceholder() bool {
	return u.PasswordHash == nil
}

// Member binds a user to one organization with a role and an optional
// billable-rate override.
type Member struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	UserID         string    `json:"user_id"`
	Role           string    `json:"role"`
	BillableRate   *int      `json:"billable_rate"` // cents per hour
	CreatedAt      time.Time `json:"created_at"`
}

// ProjectMember assigns a member to a project, optionally overriding the
// billable rate for work on that project.
type ProjectMember struct {
	ID           string `json:"id"`
	ProjectID    string `json:"project_id"`
	MemberID     string `json:"member_id"`
	BillableRate *int   `json:"billable_rate"`
}

// Session is an active API login session.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
