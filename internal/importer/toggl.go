package importer

import (
	"context"
	"time"
)

// togglTimeEntriesImporter reads a Toggl detailed time entries CSV export.
type togglTimeEntriesImporter struct {
	base
}

func (i *togglTimeEntriesImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	rows, err := parseTogglTimeEntries(data, tz)
	if err != nil {
		return err
	}
	return i.run(ctx, func(r *resolver) error {
		for _, row := range rows {
			if err := r.importRow(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

var togglTimeLayouts = []string{"2006-01-02 15:04:05", "2006-01-02 15:04"}

func parseTogglTimeEntries(data []byte, tz *time.Location) ([]Row, error) {
	records, err := csvRecords(data)
	if err != nil {
		return nil, err
	}

	h := indexHeader(records[0])
	if err := h.require("Email", "Project", "Start date", "Start time"); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		start, err := parseTimeIn(togglTimeLayouts,
			h.get(record, "Start date")+" "+h.get(record, "Start time"), tz)
		if err != nil {
			return nil, wrapError(err, "row %d", n+2)
		}

		row := Row{
			UserName:    h.get(record, "User"),
			UserEmail:   h.get(record, "Email"),
			ClientName:  h.get(record, "Client"),
			ProjectName: h.get(record, "Project"),
			TaskName:    h.get(record, "Task"),
			Description: h.get(record, "Description"),
			Billable:    parseTruthy(h.get(record, "Billable")),
			Start:       start,
			Tags:        splitTags(h.get(record, "Tags"), ","),
		}

		if endDate := h.get(record, "End date"); endDate != "" {
			end, err := parseTimeIn(togglTimeLayouts, endDate+" "+h.get(record, "End time"), tz)
			if err != nil {
				return nil, wrapError(err, "row %d", n+2)
			}
			row.End = &end
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// togglDataImporter reads a Toggl full-workspace export: a ZIP archive of
// CSV files, processed clients first, then projects, then time entries.
type togglDataImporter struct {
	base
}

func (i *togglDataImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	zr, err := openArchive(data)
	if err != nil {
		return err
	}

	clientsCSV, hasClients, err := archiveMember(zr, "clients.csv")
	if err != nil {
		return err
	}
	projectsCSV, hasProjects, err := archiveMember(zr, "projects.csv")
	if err != nil {
		return err
	}
	entriesCSV, hasEntries, err := archiveMember(zr, "time_entries.csv")
	if err != nil {
		return err
	}
	if !hasClients && !hasProjects && !hasEntries {
		return errorf("archive contains no importable files")
	}

	var entryRows []Row
	if hasEntries {
		if entryRows, err = parseTogglTimeEntries(entriesCSV, tz); err != nil {
			return err
		}
	}

	return i.run(ctx, func(r *resolver) error {
		if hasClients {
			if err := importClientsCSV(ctx, r, clientsCSV, "Name"); err != nil {
				return err
			}
		}
		if hasProjects {
			if err := importTogglProjects(ctx, r, projectsCSV); err != nil {
				return err
			}
		}
		for _, row := range entryRows {
			if err := r.importRow(ctx, row); err != nil {
				return err
			}
		}
		return nil
	})
}

func importTogglProjects(ctx context.Context, r *resolver, data []byte) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}
	h := indexHeader(records[0])
	if err := h.require("Name"); err != nil {
		return err
	}

	for _, record := range records[1:] {
		client, err := r.clientByName(ctx, h.get(record, "Client"))
		if err != nil {
			return err
		}
		if _, err := r.projectByName(ctx, h.get(record, "Name"), h.get(record, "Color"), client); err != nil {
			return err
		}
	}
	return nil
}

// importClientsCSV resolves every client named in a one-column CSV.
func importClientsCSV(ctx context.Context, r *resolver, data []byte, nameColumn string) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}
	h := indexHeader(records[0])
	if err := h.require(nameColumn); err != nil {
		return err
	}

	for _, record := range records[1:] {
		if _, err := r.clientByName(ctx, h.get(record, nameColumn)); err != nil {
			return err
		}
	}
	return nil
}
