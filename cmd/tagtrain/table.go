package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// tableColumn describes one column of a CLI table.
type tableColumn struct {
	Header string
	Right  bool
	// Status marks the column holding a run outcome; it is coloured when
	// the output is a terminal.
	Status bool
}

var (
	runSummaryColumns = []tableColumn{
		{Header: "Target"},
		{Header: "Status", Status: true},
		{Header: "Exit", Right: true},
		{Header: "Duration", Right: true},
		{Header: "Log"},
	}
	historyColumns = []tableColumn{
		{Header: "ID"},
		{Header: "Target"},
		{Header: "Status", Status: true},
		{Header: "Exit", Right: true},
		{Header: "Started"},
		{Header: "Duration", Right: true},
		{Header: "Log"},
	}
)

func renderTable(columns []tableColumn, rows [][]string, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(columns))
	configs := make([]table.ColumnConfig, len(columns))
	for i, col := range columns {
		header[i] = col.Header
		align := text.AlignLeft
		if col.Right {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft}
		if col.Status && colorize {
			configs[i].Transformer = statusTransformer
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		r := make(table.Row, len(columns))
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}
	return tw.Render()
}

func statusTransformer(val interface{}) string {
	status, _ := val.(string)
	switch status {
	case "ok", "succeeded":
		return text.Colors{text.FgGreen}.Sprint(status)
	case "failed", "timed out":
		return text.Colors{text.FgRed}.Sprint(status)
	case "running":
		return text.Colors{text.FgYellow}.Sprint(status)
	default:
		return status
	}
}
