package db

import "fmt"

// migrate runs all database migrations. The DDL sticks to TEXT/INTEGER
// columns so the same statements work on sqlite and postgres; timestamps
// are stored as RFC 3339 UTC strings.
func (db *DB) migrate() error {
	migrations := []string{
		migrationCreateOrganizations,
		migrationCreateUsers,
		migrationCreateMembers,
		migrationCreateSessions,
		migrationCreateClients,
		migrationCreateProjects,
		migrationCreateTasks,
		migrationCreateTags,
		migrationCreateProjectMembers,
		migrationCreateTimeEntries,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}

const migrationCreateOrganizations = `
CREATE TABLE IF NOT EXISTS organizations (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    currency TEXT NOT NULL DEFAULT 'EUR',
    billable_rate INTEGER,
    employees_can_see_billable_rates INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

const migrationCreateUsers = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT,
    timezone TEXT NOT NULL DEFAULT 'UTC',
    week_start TEXT NOT NULL DEFAULT 'monday',
    created_at TEXT NOT NULL
);
`

const migrationCreateMembers = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    user_id TEXT NOT NULL REFERENCES users(id),
    role TEXT NOT NULL,
    billable_rate INTEGER,
    created_at TEXT NOT NULL,
    UNIQUE (organization_id, user_id)
);

CREATE INDEX IF NOT EXISTS idx_members_org ON members(organization_id);
`

const migrationCreateSessions = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id),
    token TEXT NOT NULL UNIQUE,
    expires_at TEXT NOT NULL,
    created_at TEXT NOT NULL
);
`

const migrationCreateClients = `
CREATE TABLE IF NOT EXISTS clients (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    name TEXT NOT NULL,
    archived_at TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_clients_org ON clients(organization_id);
`

const migrationCreateProjects = `
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    client_id TEXT REFERENCES clients(id),
    name TEXT NOT NULL,
    color TEXT NOT NULL DEFAULT '#4ECDC4',
    billable_rate INTEGER,
    is_billable INTEGER NOT NULL DEFAULT 0,
    is_public INTEGER NOT NULL DEFAULT 0,
    archived_at TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_projects_org ON projects(organization_id);
`

const migrationCreateTasks = `
CREATE TABLE IF NOT EXISTS tasks (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    project_id TEXT NOT NULL REFERENCES projects(id),
    name TEXT NOT NULL,
    done_at TEXT,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id);
`

const migrationCreateTags = `
CREATE TABLE IF NOT EXISTS tags (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    name TEXT NOT NULL,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tags_org ON tags(organization_id);
`

const migrationCreateProjectMembers = `
CREATE TABLE IF NOT EXISTS project_members (
    id TEXT PRIMARY KEY,
    project_id TEXT NOT NULL REFERENCES projects(id),
    member_id TEXT NOT NULL REFERENCES members(id),
    billable_rate INTEGER,
    UNIQUE (project_id, member_id)
);
`

const migrationCreateTimeEntries = `
CREATE TABLE IF NOT EXISTS time_entries (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL REFERENCES organizations(id),
    member_id TEXT NOT NULL REFERENCES members(id),
    user_id TEXT NOT NULL REFERENCES users(id),
    project_id TEXT REFERENCES projects(id),
    task_id TEXT REFERENCES tasks(id),
    client_id TEXT REFERENCES clients(id),
    description TEXT NOT NULL DEFAULT '',
    start TEXT NOT NULL,
    "end" TEXT,
    billable INTEGER NOT NULL DEFAULT 0,
    billable_rate INTEGER,
    tags TEXT NOT NULL DEFAULT '[]',
    is_imported INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_time_entries_org_start ON time_entries(organization_id, start);
CREATE INDEX IF NOT EXISTS idx_time_entries_member ON time_entries(member_id);
`
