package importer

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"
)

// harvestTimeEntriesImporter reads a Harvest detailed time report CSV.
// Harvest rows carry a date plus decimal hours rather than start/end
// timestamps, and name users without an email address.
type harvestTimeEntriesImporter struct {
	base
}

func (i *harvestTimeEntriesImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("Date", "Project", "Hours", "First Name", "Last Name"); err != nil {
		return err
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		start, err := parseTimeIn([]string{"2006-01-02", "01/02/2006"}, h.get(record, "Date"), tz)
		if err != nil {
			return wrapError(err, "row %d", n+2)
		}

		hours, err := strconv.ParseFloat(strings.TrimSpace(h.get(record, "Hours")), 64)
		if err != nil {
			return wrapError(err, "row %d: malformed hours %q", n+2, h.get(record, "Hours"))
		}
		end := start.Add(time.Duration(math.Round(hours * 3600)) * time.Second)

		firstName := strings.TrimSpace(h.get(record, "First Name"))
		lastName := strings.TrimSpace(h.get(record, "Last Name"))

		rows = append(rows, Row{
			UserName:    strings.TrimSpace(firstName + " " + lastName),
			UserEmail:   harvestEmail(firstName, lastName),
			ClientName:  h.get(record, "Client"),
			ProjectName: h.get(record, "Project"),
			TaskName:    h.get(record, "Task"),
			Description: h.get(record, "Notes"),
			Billable:    parseTruthy(h.get(record, "Billable?")),
			Start:       start,
			End:         &end,
		})
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

// harvestEmail derives a stable synthetic address for a Harvest user, so
// re-imports resolve to the same placeholder.
func harvestEmail(firstName, lastName string) string {
	slug := strings.ToLower(strings.TrimSpace(firstName + "." + lastName))
	slug = strings.Trim(strings.ReplaceAll(slug, " ", "."), ".")
	if slug == "" {
		slug = "unknown"
	}
	return slug + "@harvest.import"
}

// harvestProjectsImporter reads a Harvest projects CSV.
type harvestProjectsImporter struct {
	base
}

func (i *harvestProjectsImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("Project"); err != nil {
		return err
	}

	return i.run(ctx, func(r *resolver) error {
		for _, record := range records[1:] {
			client, err := r.clientByName(ctx, h.get(record, "Client"))
			if err != nil {
				return err
			}
			if _, err := r.projectByName(ctx, h.get(record, "Project"), "", client); err != nil {
				return err
			}
		}
		return nil
	})
}

// harvestClientsImporter reads a Harvest clients CSV.
type harvestClientsImporter struct {
	base
}

func (i *harvestClientsImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}

	h := indexHeader(records[0])
	if err := h.require("Client Name"); err != nil {
		return err
	}

	return i.run(ctx, func(r *resolver) error {
		for _, record := range records[1:] {
			if _, err := r.clientByName(ctx, h.get(record, "Client Name")); err != nil {
				return err
			}
		}
		return nil
	})
}
