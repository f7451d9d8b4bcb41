package report

import (
	"context"

	"github.com/hourglasshq/hourglass/internal/store"
)

// ProjectLabel carries the display name and color of a project.
type ProjectLabel struct {
	Name  string
	Color string
}

// Labels resolves bucket keys to human-readable descriptions. The maps are
// prefetched once per report so the engine never touches the database.
type Labels struct {
	Users    map[string]string
	Projects map[string]ProjectLabel
	Clients  map[string]string
	Tasks    map[string]string
}

// LoadLabels prefetches all label data of one organization.
func LoadLabels(ctx context.Context, st *store.Store, orgID string) (Labels, error) {
	labels := Labels{
		Users:    map[string]string{},
		Projects: map[string]ProjectLabel{},
		Clients:  map[string]string{},
		Tasks:    map[string]string{},
	}

	users, err := st.ListOrganizationUsers(ctx, orgID)
	if err != nil {
		return Labels{}, err
	}
	for _, u := range users {
		labels.Users[u.ID] = u.Name
	}

	projects, err := st.ListProjects(ctx, orgID)
	if err != nil {
		return Labels{}, err
	}
	for _, p := range projects {
		labels.Projects[p.ID] = ProjectLabel{Name: p.Name, Color: p.Color}
	}

	clients, err := st.ListClients(ctx, orgID)
	if err != nil {
		return Labels{}, err
	}
	for _, c := range clients {
		labels.Clients[c.ID] = c.Name
	}

	tasks, err := st.ListTasks(ctx, orgID)
	if err != nil {
		return Labels{}, err
	}
	for _, t := range tasks {
		labels.Tasks[t.ID] = t.Name
	}

	return labels, nil
}

// apply attaches description and color to a bucket for one dimension.
// Time buckets keep a nil description; null entity buckets get a fixed
// "No project" style label.
func (l Labels) apply(b *Bucket, g Group) {
	switch g {
	case GroupUser:
		b.Description = l.lookup(b.Key, l.Users, "No user")
	case GroupProject:
		if b.Key == nil {
			b.Description = strPtr("No project")
			return
		}
		if p, ok := l.Projects[*b.Key]; ok {
			b.Description = strPtr(p.Name)
			b.Color = strPtr(p.Color)
		}
	case GroupClient:
		b.Description = l.lookup(b.Key, l.Clients, "No client")
	case GroupTask:
		b.Description = l.lookup(b.Key, l.Tasks, "No task")
	case GroupBillable:
		if b.Key != nil && *b.Key == "true" {
			b.Description = strPtr("Yes")
		} else {
			b.Description = strPtr("No")
		}
	}
}

func (l Labels) lookup(key *string, names map[string]string, nullLabel string) *string {
	if key == nil {
		return strPtr(nullLabel)
	}
	if name, ok := names[*key]; ok {
		return strPtr(name)
	}
	return nil
}

func strPtr(s string) *string {
	return &s
}
