package report

import (
	"encoding/csv"
	"fmt"
	"io"
)

// FormatDuration renders whole seconds as HH:MM:SS.
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatCost renders cents as a decimal amount with the currency code.
func FormatCost(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

// WriteCSV renders the aggregation tree as CSV: one row per leaf bucket
// plus a trailing totals row. Sequential writer calls, no buffering beyond
// the csv package's own.
func WriteCSV(w io.Writer, res *Result, opts Options, currency string) error {
	cw := csv.NewWriter(w)

	header := []string{"Duration", "Duration (decimal)", "Amount (" + currency + ")"}
	if opts.Group != "" {
		header = append([]string{string(opts.Group)}, header...)
	}
	if opts.SubGroup != "" {
		header = append([]string{header[0], string(opts.SubGroup)}, header[1:]...)
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	writeRow := func(labels []string, seconds, cost int64) error {
		row := append(labels,
			FormatDuration(seconds),
			fmt.Sprintf("%.2f", float64(seconds)/3600),
			fmt.Sprintf("%d.%02d", cost/100, cost%100),
		)
		return cw.Write(row)
	}

	if opts.Group == "" {
		if err := writeRow(nil, res.Seconds, res.Cost); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	for _, b := range res.GroupedData {
		label := bucketLabel(b)
		if opts.SubGroup == "" {
			if err := writeRow([]string{label}, b.Seconds, b.Cost); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}
		// Gap-filled time buckets carry no subgroups but still get a row,
		// so the exported series stays chronologically complete.
		if len(b.GroupedData) == 0 {
			if err := writeRow([]string{label, ""}, b.Seconds, b.Cost); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
			continue
		}
		for _, sb := range b.GroupedData {
			if err := writeRow([]string{label, bucketLabel(sb)}, sb.Seconds, sb.Cost); err != nil {
				return fmt.Errorf("failed to write csv row: %w", err)
			}
		}
	}

	if opts.Group != "" {
		labels := []string{"Total"}
		if opts.SubGroup != "" {
			labels = append(labels, "")
		}
		if err := writeRow(labels, res.Seconds, res.Cost); err != nil {
			return fmt.Errorf("failed to write csv totals: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// bucketLabel prefers the resolved description, falling back to the raw key.
func bucketLabel(b *Bucket) string {
	if b.Description != nil {
		return *b.Description
	}
	if b.Key != nil {
		return *b.Key
	}
	return ""
}
