package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"dionysia/internal/jobs"
	"dionysia/internal/memo"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
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

func renderActions(actions []jobs.Action, colorize bool) string {
	rows := make([][]string, 0, len(actions))
	for _, action := range actions {
		id := ""
		if action.ID > 0 {
			id = strconv.Itoa(action.ID)
		}
		rows = append(rows, []string{id, action.Movie, action.Detail, outcomeKind(action.Outcome).paint(action.Outcome, colorize)})
	}
	return renderTable(
		[]string{"ID", "Movie", "Detail", "Outcome"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	)
}

func renderCacheStats(stats memo.Stats) string {
	rows := make([][]string, 0, len(stats.Names)+1)
	for _, ns := range stats.Names {
		rows = append(rows, []string{ns.Name, strconv.Itoa(ns.Entries), strconv.Itoa(ns.Expired)})
	}
	rows = append(rows, []string{"total", strconv.Itoa(stats.Entries), strconv.Itoa(stats.Expired)})
	return renderTable(
		[]string{"Function", "Entries", "Expired"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}
