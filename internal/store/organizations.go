package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hourglasshq/hourglass/internal/model"
)

// CreateOrganization inserts an organization.
func (s *Store) CreateOrganization(ctx context.Context, o model.Organization) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO organizations (id, name, currency, billable_rate, employees_can_see_billable_rates, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		o.ID, o.Name, o.Currency, nullInt(o.BillableRate), boolToDB(o.EmployeesCanSeeRates),
		timeToDB(o.CreatedAt), timeToDB(o.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetOrganization returns an organization by id.
func (s *Store) GetOrganization(ctx context.Context, id string) (model.Organization, error) {
	var o model.Organization
	var rate sql.NullInt64
	var canSee int
	var createdAt, updatedAt string
	err := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, name, currency, billable_rate, employees_can_see_billable_rates, created_at, updated_at
		FROM organizations WHERE id = ?`), id).
		Scan(&o.ID, &o.Name, &o.Currency, &rate, &canSee, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return model.Organization{}, ErrNotFound
	}
	if err != nil {
		return model.Organization{}, fmt.Errorf("failed to scan organization: %w", err)
	}
	o.BillableRate = nullIntFromDB(rate)
	o.EmployeesCanSeeRates = canSee != 0
	if o.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Organization{}, err
	}
	if o.UpdatedAt, err = timeFromDB(updatedAt); err != nil {
		return model.Organization{}, err
	}
	return o, nil
}

const memberColumns = `id, organization_id, user_id, role, billable_rate, created_at`

// CreateMember inserts a membership.
func (s *Store) CreateMember(ctx context.Context, m model.Member) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO members (id, organization_id, user_id, role, billable_rate, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		m.ID, m.OrganizationID, m.UserID, m.Role, nullInt(m.BillableRate), timeToDB(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

// GetMember returns a member by id.
func (s *Store) GetMember(ctx context.Context, id string) (model.Member, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`SELECT `+memberColumns+` FROM members WHERE id = ?`), id)
	return scanMember(row)
}

// GetMemberByUser returns the membership of a user in an organization.
func (s *Store) GetMemberByUser(ctx context.Context, orgID, userID string) (model.Member, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT `+memberColumns+` FROM members WHERE organization_id = ? AND user_id = ?`), orgID, userID)
	return scanMember(row)
}

// ListMembers returns all members of an organization.
func (s *Store) ListMembers(ctx context.Context, orgID string) ([]model.Member, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT `+memberColumns+` FROM members WHERE organization_id = ?`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var members []model.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func scanMember(row rowScanner) (model.Member, error) {
	var m model.Member
	var rate sql.NullInt64
	var createdAt string
	err := row.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &rate, &createdAt)
	if err == sql.ErrNoRows {
		return model.Member{}, ErrNotFound
	}
	if err != nil {
		return model.Member{}, fmt.Errorf("failed to scan member: %w", err)
	}
	m.BillableRate = nullIntFromDB(rate)
	if m.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Member{}, err
	}
	return m, nil
}

// CreateProjectMember assigns a member to a project.
func (s *Store) CreateProjectMember(ctx context.Context, pm model.ProjectMember) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO project_members (id, project_id, member_id, billable_rate)
		VALUES (?, ?, ?, ?)`),
		pm.ID, pm.ProjectID, pm.MemberID, nullInt(pm.BillableRate))
	if err != nil {
		return fmt.Errorf("failed to create project member: %w", err)
	}
	return nil
}

// GetProjectMember returns the project assignment of a member, if any.
func (s *Store) GetProjectMember(ctx context.Context, projectID, memberID string) (model.ProjectMember, error) {
	var pm model.ProjectMember
	var rate sql.NullInt64
	err := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, project_id, member_id, billable_rate
		FROM project_members WHERE project_id = ? AND member_id = ?`), projectID, memberID).
		Scan(&pm.ID, &pm.ProjectID, &pm.MemberID, &rate)
	if err == sql.ErrNoRows {
		return model.ProjectMember{}, ErrNotFound
	}
	if err != nil {
		return model.ProjectMember{}, fmt.Errorf("failed to scan project member: %w", err)
	}
	pm.BillableRate = nullIntFromDB(rate)
	return pm, nil
}

func boolToDB(b bool) int {
	if b {
		return 1
	}
	return 0
}
