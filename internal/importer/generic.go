package importer

import (
	"context"
	"time"
)

// genericProjectsImporter reads the documented lower-case CSV layout for
// bulk project creation: name, client, color.
type genericProjectsImporter struct {
	base
}

func (i *genericProjectsImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("name"); err != nil {
		return err
	}

	return i.run(ctx, func(r *resolver) error {
		for _, record := range records[1:] {
			client, err := r.clientByName(ctx, h.get(record, "client"))
			if err != nil {
				return err
			}
			if _, err := r.projectByName(ctx, h.get(record, "name"), h.get(record, "color"), client); err != nil {
				return err
			}
		}
		return nil
	})
}

// genericTimeEntriesImporter reads the documented lower-case CSV layout
// for bulk time-entry creation. Timestamps are RFC 3339 or wall-clock in
// the import timezone; tags are pipe-separated.
type genericTimeEntriesImporter struct {
	base
}

var genericTimeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

func (i *genericTimeEntriesImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("email", "start"); err != nil {
		return err
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		start, err := parseTimeIn(genericTimeLayouts, h.get(record, "start"), tz)
		if err != nil {
			return wrapError(err, "row %d", n+2)
		}

		row := Row{
			UserName:    h.get(record, "user"),
			UserEmail:   h.get(record, "email"),
			ClientName:  h.get(record, "client"),
			ProjectName: h.get(record, "project"),
			TaskName:    h.get(record, "task"),
			Description: h.get(record, "description"),
			Billable:    parseTruthy(h.get(record, "billable")),
			Start:       start,
			Tags:        splitTags(h.get(record, "tags"), "|"),
		}

		if endRaw := h.get(record, "end"); endRaw != "" {
			end, err := parseTimeIn(genericTimeLayouts, endRaw, tz)
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
