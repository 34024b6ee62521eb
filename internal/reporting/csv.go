package reporting

import (
	"strings"

	"retail-inventory-lab/internal/analytics"
)

// RenderTableCSV renders one grouped summary table as a CSV string. Key
// columns come first, then the reduced columns; undefined cells render
// empty.
func RenderTableCSV(t *analytics.GroupedTable) string {
	if t == nil {
		return ""
	}

	var sb strings.Builder

	header := append(append([]string{}, t.KeyNames...), t.ColumnNames...)
	sb.WriteString(strings.Join(header, ",") + "\n")

	for i := range t.Rows {
		row := &t.Rows[i]
		fields := append([]string{}, row.Key...)
		for _, cell := range row.Cells {
			if cell.Defined {
				fields = append(fields, formatCell(cell, "%.6f"))
			} else {
				fields = append(fields, "")
			}
		}
		sb.WriteString(strings.Join(fields, ",") + "\n")
	}

	return sb.String()
}
