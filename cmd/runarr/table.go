package main

import "github.com/jedib0t/go-pretty/v6/table"

// renderTable renders rows under headers in the rounded style shared with the
// disambiguation prompt. Every table the CLI prints is text-valued and
// left-aligned; rows shorter than the header are padded with blanks so a
// missing field renders as an empty cell instead of shifting its neighbors.
func renderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		cells := make(table.Row, len(headers))
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}

	return tw.Render()
}
