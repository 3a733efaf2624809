package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableData describes a table. rowColors, when set, tints whole rows and is
// ignored unless colorize is true.
type tableData struct {
	headers   []string
	rows      [][]string
	aligns    []columnAlignment
	rowColors []text.Colors
	colorize  bool
}

func renderTable(data tableData) string {
	columns := len(data.headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range data.headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for idx, row := range data.rows {
		r := make(table.Row, columns)
		var tint text.Colors
		if data.colorize && idx < len(data.rowColors) {
			tint = data.rowColors[idx]
		}
		for i := 0; i < columns; i++ {
			var cell string
			if i < len(row) {
				cell = row[i]
			}
			if len(tint) > 0 && cell != "" {
				cell = tint.Sprint(cell)
			}
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(data.aligns) && data.aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
