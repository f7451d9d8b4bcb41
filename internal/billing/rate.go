// Package billing resolves the billable rate frozen into a time entry at
// creation time. Reports never recompute it, so historical costs survive
// later rate changes.
package billing

import (
	"context"
	"errors"

	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// EffectiveRate cascades to the first configured rate, in cents per hour:
// project-member override, then project, then member, then organization.
// Returns nil when nothing in the cascade is configured.
func EffectiveRate(pm *model.ProjectMember, project *model.Project, member model.Member, org model.Organization) *int {
	if pm != nil && pm.BillableRate != nil {
		return pm.BillableRate
	}
	if project != nil && project.BillableRate != nil {
		return project.BillableRate
	}
	if member.BillableRate != nil {
		return member.BillableRate
	}
	return org.BillableRate
}

// ResolveForEntry loads the cascade inputs for a new entry and resolves the
// rate. projectID may be nil for entries without a project.
func ResolveForEntry(ctx context.Context, st *store.Store, org model.Organization, member model.Member, projectID *string) (*int, error) {
	var project *model.Project
	var pm *model.ProjectMember

	if projectID != nil {
		p, err := st.GetProject(ctx, org.ID, *projectID)
		if err != nil {
			return nil, err
		}
		project = &p

		assignment, err := st.GetProjectMember(ctx, p.ID, member.ID)
		if err == nil {
			pm = &assignment
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return EffectiveRate(pm, project, member, org), nil
}
