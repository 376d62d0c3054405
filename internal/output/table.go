package output

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"smlite/internal/engine"
)

// writeRows renders a read result as an aligned text table.
func writeRows(sb *strings.Builder, res *engine.Result) {
	tw := tabwriter.NewWriter(sb, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(res.Columns, "\t"))

	rule := make([]string, len(res.Columns))
	for i, c := range res.Columns {
		rule[i] = strings.Repeat("-", len(c))
	}
	fmt.Fprintln(tw, strings.Join(rule, "\t"))

	cells := make([]string, len(res.Columns))
	for _, row := range res.Rows {
		for i, c := range res.Columns {
			cells[i] = cell(row, c)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

func cell(row engine.Row, col string) string {
	if row[col] == nil {
		return "NULL"
	}
	s, _ := row.String(col)
	return strings.NewReplacer("\t", `\t`, "\n", `\n`).Replace(s)
}

// isRead tells a read result from a mutation result.
func isRead(res *engine.Result) bool {
	return len(res.Columns) > 0
}
