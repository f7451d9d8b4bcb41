package importer

import (
	"bytes"
	"encoding/csv"
	"strings"
	"time"
)

// csvRecords parses raw CSV bytes into records, header row included.
func csvRecords(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	records, err := reader.ReadAll()
	if err != nil {
		return nil, wrapError(err, "invalid CSV data")
	}
	if len(records) == 0 {
		return nil, errorf("CSV data is empty")
	}
	return records, nil
}

// header maps column names to their position in a CSV header row.
type header map[string]int

func indexHeader(record []string) header {
	h := make(header, len(record))
	for i, name := range record {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[strings.TrimSpace(name)] = i
	}
	return h
}

// require fails with a column-naming error when any column is absent.
func (h header) require(cols ...string) error {
	for _, col := range cols {
		if _, ok := h[col]; !ok {
			return errorf("missing required column %q", col)
		}
	}
	return nil
}

// get returns the named field of a record, or "" when the column is
// absent or the record is short.
func (h header) get(record []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

// parseTruthy accepts the boolean spellings seen across source formats.
func parseTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

// splitTags splits a joined tag list, dropping empty elements.
func splitTags(s, sep string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, sep)
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseTimeIn tries each layout as a wall-clock time in loc.
func parseTimeIn(layouts []string, value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	var lastErr error
	for _, layout := range layouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, wrapError(lastErr, "malformed timestamp %q", value)
}
