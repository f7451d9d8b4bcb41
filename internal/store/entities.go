package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hourglasshq/hourglass/internal/model"
)

// CreateClient inserts a client.
func (s *Store) CreateClient(ctx context.Context, c model.Client) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO clients (id, organization_id, name, archived_at, created_at)
		VALUES (?, ?, ?, ?, ?)`),
		c.ID, c.OrganizationID, c.Name, nullTimeToDB(c.ArchivedAt), timeToDB(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindClientByName returns the client with the exact name in an organization.
func (s *Store) FindClientByName(ctx context.Context, orgID, name string) (model.Client, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, organization_id, name, archived_at, created_at
		FROM clients WHERE organization_id = ? AND name = ?`), orgID, name)
	return scanClient(row)
}

// ListClients returns all clients of an organization.
func (s *Store) ListClients(ctx context.Context, orgID string) ([]model.Client, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT id, organization_id, name, archived_at, created_at
		FROM clients WHERE organization_id = ? ORDER BY name`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	var clients []model.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func scanClient(row rowScanner) (model.Client, error) {
	var c model.Client
	var archivedAt sql.NullString
	var createdAt string
	err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &archivedAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Client{}, ErrNotFound
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("failed to scan client: %w", err)
	}
	if c.ArchivedAt, err = nullTimeFromDB(archivedAt); err != nil {
		return model.Client{}, err
	}
	if c.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Client{}, err
	}
	return c, nil
}

const projectColumns = `id, organization_id, client_id, name, color, billable_rate, is_billable, is_public, archived_at, created_at`

// CreateProject inserts a project.
func (s *Store) CreateProject(ctx context.Context, p model.Project) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO projects (id, organization_id, client_id, name, color, billable_rate, is_billable, is_public, archived_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		p.ID, p.OrganizationID, nullStr(p.ClientID), p.Name, p.Color, nullInt(p.BillableRate),
		boolToDB(p.IsBillable), boolToDB(p.IsPublic), nullTimeToDB(p.ArchivedAt), timeToDB(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}
	return nil
}

// GetProject returns a project by id within an organization.
func (s *Store) GetProject(ctx context.Context, orgID, id string) (model.Project, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT `+projectColumns+` FROM projects WHERE organization_id = ? AND id = ?`), orgID, id)
	return scanProject(row)
}

// FindProjectByName returns the project with the exact name in an organization.
func (s *Store) FindProjectByName(ctx context.Context, orgID, name string) (model.Project, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT `+projectColumns+` FROM projects WHERE organization_id = ? AND name = ?`), orgID, name)
	return scanProject(row)
}

// ListProjects returns all projects of an organization.
func (s *Store) ListProjects(ctx context.Context, orgID string) ([]model.Project, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT `+projectColumns+` FROM projects WHERE organization_id = ? ORDER BY name`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanProject(row rowScanner) (model.Project, error) {
	var p model.Project
	var clientID, archivedAt sql.NullString
	var rate sql.NullInt64
	var isBillable, isPublic int
	var createdAt string
	err := row.Scan(&p.ID, &p.OrganizationID, &clientID, &p.Name, &p.Color, &rate,
		&isBillable, &isPublic, &archivedAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Project{}, ErrNotFound
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("failed to scan project: %w", err)
	}
	p.ClientID = nullStrFromDB(clientID)
	p.BillableRate = nullIntFromDB(rate)
	p.IsBillable = isBillable != 0
	p.IsPublic = isPublic != 0
	if p.ArchivedAt, err = nullTimeFromDB(archivedAt); err != nil {
		return model.Project{}, err
	}
	if p.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Project{}, err
	}
	return p, nil
}

// CreateTask inserts a task.
func (s *Store) CreateTask(ctx context.Context, t model.Task) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (id, organization_id, project_id, name, done_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		t.ID, t.OrganizationID, t.ProjectID, t.Name, nullTimeToDB(t.DoneAt), timeToDB(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindTaskByName returns the task with the exact name within one project.
// Tasks with the same name in different projects are distinct records.
func (s *Store) FindTaskByName(ctx context.Context, orgID, projectID, name string) (model.Task, error) {
	row := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, organization_id, project_id, name, done_at, created_at
		FROM tasks WHERE organization_id = ? AND project_id = ? AND name = ?`), orgID, projectID, name)
	return scanTask(row)
}

// ListTasks returns all tasks of an organization.
func (s *Store) ListTasks(ctx context.Context, orgID string) ([]model.Task, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT id, organization_id, project_id, name, done_at, created_at
		FROM tasks WHERE organization_id = ? ORDER BY name`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func scanTask(row rowScanner) (model.Task, error) {
	var t model.Task
	var doneAt sql.NullString
	var createdAt string
	err := row.Scan(&t.ID, &t.OrganizationID, &t.ProjectID, &t.Name, &doneAt, &createdAt)
	if err == sql.ErrNoRows {
		return model.Task{}, ErrNotFound
	}
	if err != nil {
		return model.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	if t.DoneAt, err = nullTimeFromDB(doneAt); err != nil {
		return model.Task{}, err
	}
	if t.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// CreateTag inserts a tag.
func (s *Store) CreateTag(ctx context.Context, t model.Tag) error {
	_, err := s.q.ExecContext(ctx, s.rebind(`
		INSERT INTO tags (id, organization_id, name, created_at)
		VALUES (?, ?, ?, ?)`),
		t.ID, t.OrganizationID, t.Name, timeToDB(t.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// FindTagByName returns the tag with the exact name in an organization.
func (s *Store) FindTagByName(ctx context.Context, orgID, name string) (model.Tag, error) {
	var t model.Tag
	var createdAt string
	err := s.q.QueryRowContext(ctx, s.rebind(`
		SELECT id, organization_id, name, created_at
		FROM tags WHERE organization_id = ? AND name = ?`), orgID, name).
		Scan(&t.ID, &t.OrganizationID, &t.Name, &createdAt)
	if err == sql.ErrNoRows {
		return model.Tag{}, ErrNotFound
	}
	if err != nil {
		return model.Tag{}, fmt.Errorf("failed to scan tag: %w", err)
	}
	if t.CreatedAt, err = timeFromDB(createdAt); err != nil {
		return model.Tag{}, err
	}
	return t, nil
}

// ListTags returns all tags of an organization.
func (s *Store) ListTags(ctx context.Context, orgID string) ([]model.Tag, error) {
	rows, err := s.q.QueryContext(ctx, s.rebind(`
		SELECT id, organization_id, name, created_at
		FROM tags WHERE organization_id = ? ORDER BY name`), orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []model.Tag
	for rows.Next() {
		var t model.Tag
		var createdAt string
		if err := rows.Scan(&t.ID, &t.OrganizationID, &t.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		if t.CreatedAt, err = timeFromDB(createdAt); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CountRows returns the row count of one of the entity tables, scoped to an
// organization. Used by import reporting tests and the CLI summary.
func (s *Store) CountRows(ctx context.Context, table, orgID string) (int, error) {
	switch table {
	case "clients", "projects", "tasks", "tags", "time_entries", "members":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := s.q.QueryRowContext(ctx, s.rebind(
		`SELECT COUNT(*) FROM `+table+` WHERE organization_id = ?`), orgID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}
