package reconcile

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// RenderSummaries renders one row per Apply call.
func RenderSummaries(rows []Summary) string {
	if len(rows) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Target", "Mode", "Add", "Remove", "Unchanged", "Result"})
	for _, row := range rows {
		result := "ok"
		if row.Err != nil {
			result = "failed"
		}
		tw.AppendRow(table.Row{
			row.Name,
			row.Mode.String(),
			strconv.Itoa(row.Added),
			strconv.Itoa(row.Removed),
			strconv.Itoa(row.Unchanged),
			result,
		})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 5, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
