// Package export writes the native hourglass archive: a ZIP of CSV files
// that the "hourglass" importer reads back. Field values round-trip byte
// for byte through the CSV layer.
package export

import (
	"archive/zip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hourglasshq/hourglass/internal/model"
	"github.com/hourglasshq/hourglass/internal/store"
)

// WriteArchive exports all clients, projects, tasks, tags and time entries
// of one organization. Time entries are streamed in chunks of 1000 so a
// large history never sits in memory at once.
func WriteArchive(ctx context.Context, st *store.Store, orgID string, w io.Writer) error {
	zw := zip.NewWriter(w)

	clients, err := st.ListClients(ctx, orgID)
	if err != nil {
		return err
	}
	projects, err := st.ListProjects(ctx, orgID)
	if err != nil {
		return err
	}
	tasks, err := st.ListTasks(ctx, orgID)
	if err != nil {
		return err
	}
	tags, err := st.ListTags(ctx, orgID)
	if err != nil {
		return err
	}
	users, err := st.ListOrganizationUsers(ctx, orgID)
	if err != nil {
		return err
	}

	clientNames := map[string]string{}
	for _, c := range clients {
		clientNames[c.ID] = c.Name
	}
	projectNames := map[string]string{}
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	taskNames := map[string]string{}
	for _, t := range tasks {
		taskNames[t.ID] = t.Name
	}
	tagNames := map[string]string{}
	for _, t := range tags {
		tagNames[t.ID] = t.Name
	}
	userByID := map[string]model.User{}
	for _, u := range users {
		userByID[u.ID] = u
	}

	if err := writeCSVMember(zw, "clients.csv", [][]string{{"name"}}, func(write func([]string) error) error {
		for _, c := range clients {
			if err := write([]string{c.Name}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writeCSVMember(zw, "projects.csv", [][]string{{"name", "client", "color"}}, func(write func([]string) error) error {
		for _, p := range projects {
			client := ""
			if p.ClientID != nil {
				client = clientNames[*p.ClientID]
			}
			if err := write([]string{p.Name, client, p.Color}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writeCSVMember(zw, "tasks.csv", [][]string{{"project", "name"}}, func(write func([]string) error) error {
		for _, t := range tasks {
			if err := write([]string{projectNames[t.ProjectID], t.Name}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if err := writeCSVMember(zw, "tags.csv", [][]string{{"name"}}, func(write func([]string) error) error {
		for _, t := range tags {
			if err := write([]string{t.Name}); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	entryHeader := [][]string{{"user", "email", "client", "project", "task", "description", "billable", "start", "end", "tags"}}
	if err := writeCSVMember(zw, "time-entries.csv", entryHeader, func(write func([]string) error) error {
		return st.ForEachEntry(ctx, store.EntryFilter{OrganizationID: orgID}, 1000, func(e model.TimeEntry) error {
			u := userByID[e.UserID]
			project := ""
			client := ""
			task := ""
			if e.ProjectID != nil {
				project = projectNames[*e.ProjectID]
			}
			if e.ClientID != nil {
				client = clientNames[*e.ClientID]
			}
			if e.TaskID != nil {
				task = taskNames[*e.TaskID]
			}
			end := ""
			if e.End != nil {
				end = e.End.UTC().Format(time.RFC3339)
			}
			names := make([]string, 0, len(e.Tags))
			for _, id := range e.Tags {
				if name, ok := tagNames[id]; ok {
					names = append(names, name)
				}
			}
			return write([]string{
				u.Name, u.Email, client, project, task, e.Description,
				strconv.FormatBool(e.Billable),
				e.Start.UTC().Format(time.RFC3339), end,
				strings.Join(names, "|"),
			})
		})
	}); err != nil {
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func writeCSVMember(zw *zip.Writer, name string, header [][]string, body func(write func([]string) error) error) error {
	fw, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to create archive member %q: %w", name, err)
	}

	cw := csv.NewWriter(fw)
	for _, row := range header {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write %q header: %w", name, err)
		}
	}
	if err := body(cw.Write); err != nil {
		return err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to write %q: %w", name, err)
	}
	return nil
}
