package importer

import (
	"context"
	"time"
)

// clockifyTimeEntriesImporter reads a Clockify detailed report CSV.
// Clockify exports US-style dates and 12-hour clock times.
type clockifyTimeEntriesImporter struct {
	base
}

var clockifyTimeLayouts = []string{
	"01/02/2006 03:04:05 PM",
	"01/02/2006 15:04:05",
	"2006-01-02 15:04:05",
}

func (i *clockifyTimeEntriesImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("Email", "Project", "Start Date", "Start Time"); err != nil {
		return err
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		start, err := parseTimeIn(clockifyTimeLayouts,
			h.get(record, "Start Date")+" "+h.get(record, "Start Time"), tz)
		if err != nil {
			return wrapError(err, "row %d", n+2)
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

		if endDate := h.get(record, "End Date"); endDate != "" {
			end, err := parseTimeIn(clockifyTimeLayouts, endDate+" "+h.get(record, "End Time"), tz)
			if err != nil {
				return wrapError(err, "row %d", n+2)
			}
			row.End = &end
		}

		rows = append(rows, row)
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

// clockifyProjectsImporter reads a Clockify projects CSV, creating
// projects and their clients without time entries.
type clockifyProjectsImporter struct {
	base
}

func (i *clockifyProjectsImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("Name"); err != nil {
		return err
	}

	return i.run(ctx, func(r *resolver) error {
		for _, record := range records[1:] {
			client, err := r.clientByName(ctx, h.get(record, "Client"))
			if err != nil {
				return err
			}
			if _, err := r.projectByName(ctx, h.get(record, "Name"), "", client); err != nil {
				return err
			}
		}
		return nil
	})
}
