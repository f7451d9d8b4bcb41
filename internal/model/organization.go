package model

import "time"

// Organization is the tenant boundary. Every other entity belongs to
// exactly one organization and lookups never cross it.
type Organization struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Currency             string    `json:"currency"`
	BillableRate         *int      `json:"billable_rate"` // cents per hour, default for members
	EmployeesCanSeeRates bool      `json:"employees_can_see_billable_rates"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// NewOrganization creates an organization with defaults.
func NewOrganization(id, name string) Organization {
	now := time.Now().UTC()
	return Organization{
		ID:        id,
		Name:      name,
		Currency:  "EUR",
		CreatedAt: now,
		UpdatedAt: now,
	}
}
