package importer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// colorPalette is the fixed set of project colors assigned when the source
// carries none, cycling deterministically within one import run.
var colorPalette = []string{
	"#EF5350", "#EC407A", "#AB47BC", "#7E57C2", "#5C6BC0",
	"#42A5F5", "#26C6DA", "#26A69A", "#66BB6A", "#9CCC65",
	"#FFCA28", "#FF7043", "#8D6E63", "#78909C",
}

// resolver performs cached, organization-scoped get-or-create resolution
// for one import run. Caches are keyed case-sensitive on the natural key
// and live only for the run, which makes repeated names in large files
// both idempotent and cheap.
type resolver struct {
	st     *store.Store
	org    model.Organization
	report *Report

	users         map[string]model.User   // by email
	members       map[string]model.Member // by user id
	clients       map[string]model.Client // by name
	projects      map[string]model.Project
	projectColors map[string]string // source color the project was first seen with
	tasks         map[string]model.Task // by project id + "\x00" + name
	tags          map[string]model.Tag  // by name

	nextColor int
}

func newResolver(st *store.Store, org model.Organization, report *Report) *resolver {
	return &resolver{
		st:            st,
		org:           org,
		report:        report,
		users:         map[string]model.User{},
		members:       map[string]model.Member{},
		clients:       map[string]model.Client{},
		projects:      map[string]model.Project{},
		projectColors: map[string]string{},
		tasks:         map[string]model.Task{},
		tags:          map[string]model.Tag{},
	}
}

func (r *resolver) pickColor() string {
	c := colorPalette[r.nextColor%len(colorPalette)]
	r.nextColor++
	return c
}

// userByEmail resolves a user by email, creating a placeholder user and a
// placeholder member on miss. Placeholders carry no password.
func (r *resolver) userByEmail(ctx context.Context, name, email string) (model.User, model.Member, error) {
	if u, ok := r.users[email]; ok {
		return u, r.members[u.ID], nil
	}

	u, err := r.st.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		if name == "" {
			name = email
		}
		u = model.User{
			ID:        uuid.NewString(),
			Name:      name,
			Email:     email,
			Timezone:  "UTC",
			WeekStart: "monday",
			CreatedAt: time.Now().UTC(),
		}
		if err := r.st.CreateUser(ctx, u); err != nil {
			return model.User{}, model.Member{}, err
		}
		r.report.UsersCreated++
	default:
		return model.User{}, model.Member{}, err
	}

	m, err := r.st.GetMemberByUser(ctx, r.org.ID, u.ID)
	if errors.Is(err, store.ErrNotFound) {
		m = model.Member{
			ID:             uuid.NewString(),
			OrganizationID: r.org.ID,
			UserID:         u.ID,
			Role:           model.RolePlaceholder,
			CreatedAt:      time.Now().UTC(),
		}
		if err := r.st.CreateMember(ctx, m); err != nil {
			return model.User{}, model.Member{}, err
		}
	} else if err != nil {
		return model.User{}, model.Member{}, err
	}

	r.users[email] = u
	r.members[u.ID] = m
	return u, m, nil
}

// clientByName resolves a client, creating it on miss. An empty name
// resolves to no client.
func (r *resolver) clientByName(ctx context.Context, name string) (*model.Client, error) {
	if name == "" {
		return nil, nil
	}
	if c, ok := r.clients[name]; ok {
		return &c, nil
	}

	c, err := r.st.FindClientByName(ctx, r.org.ID, name)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		c = model.Client{
			ID:             uuid.NewString(),
			OrganizationID: r.org.ID,
			Name:           name,
			CreatedAt:      time.Now().UTC(),
		}
		if err := r.st.CreateClient(ctx, c); err != nil {
			return nil, err
		}
		r.report.ClientsCreated++
	default:
		return nil, err
	}

	r.clients[name] = c
	return &c, nil
}

// projectByName resolves a project by name, creating it on miss with the
// source color or the next palette color. A project seen earlier in the
// same run with a different source color is inconsistent input.
func (r *resolver) projectByName(ctx context.Context, name, sourceColor string, client *model.Client) (*model.Project, error) {
	if name == "" {
		return nil, nil
	}

	if p, ok := r.projects[name]; ok {
		if prev := r.projectColors[name]; sourceColor != "" && prev != "" && !strings.EqualFold(prev, sourceColor) {
			return nil, errorf("project %q appears with conflicting colors %q and %q", name, prev, sourceColor)
		}
		if sourceColor != "" && r.projectColors[name] == "" {
			r.projectColors[name] = sourceColor
		}
		return &p, nil
	}

	p, err := r.st.FindProjectByName(ctx, r.org.ID, name)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		color := sourceColor
		if color == "" {
			color = r.pickColor()
		}
		p = model.Project{
			ID:             uuid.NewString(),
			OrganizationID: r.org.ID,
			Name:           name,
			Color:          color,
			IsBillable:     false,
			CreatedAt:      time.Now().UTC(),
		}
		if client != nil {
			p.ClientID = &client.ID
		}
		if err := r.st.CreateProject(ctx, p); err != nil {
			return nil, err
		}
		r.report.ProjectsCreated++
	default:
		return nil, err
	}

	r.projects[name] = p
	r.projectColors[name] = sourceColor
	return &p, nil
}

// taskByName resolves a task scoped to its project, creating it on miss.
// The same task name under two projects yields two distinct tasks.
func (r *resolver) taskByName(ctx context.Context, project *model.Project, name string) (*model.Task, error) {
	if name == "" || project == nil {
		return nil, nil
	}
	key := project.ID + "\x00" + name
	if t, ok := r.tasks[key]; ok {
		return &t, nil
	}

	t, err := r.st.FindTaskByName(ctx, r.org.ID, project.ID, name)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		t = model.Task{
			ID:             uuid.NewString(),
			OrganizationID: r.org.ID,
			ProjectID:      project.ID,
			Name:           name,
			CreatedAt:      time.Now().UTC(),
		}
		if err := r.st.CreateTask(ctx, t); err != nil {
			return nil, err
		}
		r.report.TasksCreated++
	default:
		return nil, err
	}

	r.tasks[key] = t
	return &t, nil
}

// tagIDs resolves every tag name to its id, creating missing tags.
func (r *resolver) tagIDs(ctx context.Context, names []string) ([]string, error) {
	ids := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		t, ok := r.tags[name]
		if !ok {
			found, err := r.st.FindTagByName(ctx, r.org.ID, name)
			switch {
			case err == nil:
				t = found
			case errors.Is(err, store.ErrNotFound):
				t = model.Tag{
					ID:             uuid.NewString(),
					OrganizationID: r.org.ID,
					Name:           name,
					CreatedAt:      time.Now().UTC(),
				}
				if err := r.st.CreateTag(ctx, t); err != nil {
					return nil, err
				}
				r.report.TagsCreated++
			default:
				return nil, err
			}
			r.tags[name] = t
		}
		ids = append(ids, t.ID)
	}
	return ids, nil
}
