package report

import (
	"fmt"
	"time"

	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
)

// WritePDF renders the aggregation tree as a PDF table with a totals row.
func WritePDF(res *Result, opts Options, orgName, currency string) ([]byte, error) {
	m := pdf.NewMaroto(consts.Portrait, consts.A4)
	m.SetPageMargins(20, 10, 20)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("Time Report - "+orgName, props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  16,
				})
			})
		})
		if !opts.Start.IsZero() && !opts.End.IsZero() {
			m.Row(8, func() {
				m.Col(12, func() {
					dateRange := fmt.Sprintf("%s - %s",
						opts.Start.In(opts.Location).Format("2006-01-02"),
						opts.End.In(opts.Location).Format("2006-01-02"))
					m.Text(dateRange, props.Text{
						Top:   2,
						Align: consts.Center,
						Size:  11,
					})
				})
			})
		}
	})

	headers := []string{"Duration", "Amount"}
	if opts.Group != "" {
		headers = append([]string{string(opts.Group)}, headers...)
	}
	if opts.SubGroup != "" {
		headers = append([]string{headers[0], string(opts.SubGroup)}, headers[1:]...)
	}

	var contents [][]string
	appendRow := func(labels []string, seconds, cost int64) {
		contents = append(contents, append(labels,
			FormatDuration(seconds), FormatCost(cost, currency)))
	}

	if opts.Group == "" {
		appendRow(nil, res.Seconds, res.Cost)
	}
	for _, b := range res.GroupedData {
		if opts.SubGroup == "" {
			appendRow([]string{bucketLabel(b)}, b.Seconds, b.Cost)
			continue
		}
		if len(b.GroupedData) == 0 {
			appendRow([]string{bucketLabel(b), ""}, b.Seconds, b.Cost)
			continue
		}
		for _, sb := range b.GroupedData {
			appendRow([]string{bucketLabel(b), bucketLabel(sb)}, sb.Seconds, sb.Cost)
		}
	}

	m.TableList(headers, contents, props.TableList{
		HeaderProp: props.TableListContent{
			Size:      10,
			GridSizes: tableGrid(len(headers)),
		},
		ContentProp: props.TableListContent{
			Size:      9,
			GridSizes: tableGrid(len(headers)),
		},
		Align:              consts.Left,
		HeaderContentSpace: 1,
		Line:               false,
		AlternatedBackground: &color.Color{
			Red:   240,
			Green: 240,
			Blue:  240,
		},
	})

	m.Row(10, func() {
		m.Col(6, func() {
			m.Text("Total: "+FormatDuration(res.Seconds), props.Text{
				Top:   3,
				Style: consts.Bold,
				Size:  11,
			})
		})
		m.Col(6, func() {
			m.Text(FormatCost(res.Cost, currency), props.Text{
				Top:   3,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  11,
			})
		})
	})

	m.Row(8, func() {
		m.Col(12, func() {
			m.Text("Generated "+opts.Now.UTC().Format(time.RFC3339), props.Text{
				Top:  2,
				Size: 8,
			})
		})
	})

	out, err := m.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return out.Bytes(), nil
}

// tableGrid spreads the 12-column grid over the table columns, giving the
// numeric columns a fixed narrow width.
func tableGrid(cols int) []uint {
	switch cols {
	case 2:
		return []uint{6, 6}
	case 3:
		return []uint{6, 3, 3}
	default:
		return []uint{4, 4, 2, 2}
	}
}
