package importer

import (
	"context"
	"time"
)

// Member names of the native export archive, in processing order.
// hourglass export (CLI) writes exactly this layout.
const (
	nativeClientsFile  = "clients.csv"
	nativeProjectsFile = "projects.csv"
	nativeTasksFile    = "tasks.csv"
	nativeTagsFile     = "tags.csv"
	nativeEntriesFile  = "time-entries.csv"
)

// nativeImporter reads the hourglass export archive: a ZIP of CSV files
// processed in dependency order, so clients exist before projects, and
// projects before tasks and time entries.
type nativeImporter struct {
	base
}

func (i *nativeImporter) ImportData(ctx context.Context, data []byte, tz *time.Location) error {
	zr, err := openArchive(data)
	if err != nil {
		return err
	}

	members := map[string][]byte{}
	for _, name := range []string{nativeClientsFile, nativeProjectsFile, nativeTasksFile, nativeTagsFile, nativeEntriesFile} {
		content, ok, err := archiveMember(zr, name)
		if err != nil {
			return err
		}
		if ok {
			members[name] = content
		}
	}
	if len(members) == 0 {
		return errorf("archive contains no importable files")
	}

	var entryRows []Row
	if raw, ok := members[nativeEntriesFile]; ok {
		if entryRows, err = parseNativeTimeEntries(raw, tz); err != nil {
			return err
		}
	}

	return i.run(ctx, func(r *resolver) error {
		if raw, ok := members[nativeClientsFile]; ok {
			if err := importClientsCSV(ctx, r, raw, "name"); err != nil {
				return err
			}
		}
		if raw, ok := members[nativeProjectsFile]; ok {
			if err := importNativeProjects(ctx, r, raw); err != nil {
				return err
			}
		}
		if raw, ok := members[nativeTasksFile]; ok {
			if err := importNativeTasks(ctx, r, raw); err != nil {
				return err
			}
		}
		if raw, ok := members[nativeTagsFile]; ok {
			if err := importNativeTags(ctx, r, raw); err != nil {
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

func parseNativeTimeEntries(data []byte, tz *time.Location) ([]Row, error) {
	records, err := csvRecords(data)
	if err != nil {
		return nil, err
	}

	h := indexHeader(records[0])
	if err := h.require("email", "start"); err != nil {
		return nil, err
	}

	rows := make([]Row, 0, len(records)-1)
	for n, record := range records[1:] {
		start, err := parseTimeIn(genericTimeLayouts, h.get(record, "start"), tz)
		if err != nil {
			return nil, wrapError(err, "row %d", n+2)
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
				return nil, wrapError(err, "row %d", n+2)
			}
			row.End = &end
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func importNativeProjects(ctx context.Context, r *resolver, data []byte) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}
	h := indexHeader(records[0])
	if err := h.require("name"); err != nil {
		return err
	}

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
}

func importNativeTasks(ctx context.Context, r *resolver, data []byte) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}
	h := indexHeader(records[0])
	if err := h.require("project", "name"); err != nil {
		return err
	}

	for _, record := range records[1:] {
		project, err := r.projectByName(ctx, h.get(record, "project"), "", nil)
		if err != nil {
			return err
		}
		if _, err := r.taskByName(ctx, project, h.get(record, "name")); err != nil {
			return err
		}
	}
	return nil
}

func importNativeTags(ctx context.Context, r *resolver, data []byte) error {
	records, err := csvRecords(data)
	if err != nil {
		return err
	}
	h := indexHeader(records[0])
	if err := h.require("name"); err != nil {
		return err
	}

	for _, record := range records[1:] {
		if _, err := r.tagIDs(ctx, []string{h.get(record, "name")}); err != nil {
			return err
		}
	}
	return nil
}
