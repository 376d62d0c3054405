package output

import (
	"fmt"
	"strings"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/engine"
)

type summaryFormatter struct{}

// FormatMigrations formats migration results as a compact summary.
// Example output:
//
//	Migration Summary
//	=================
//
//	Tables:  2 (created 1, altered 0, already applied 1)
//	SQL Statements: 3
func (summaryFormatter) FormatMigrations(results []*apply.Result) (string, error) {
	if len(results) == 0 {
		return "No migrations.\n", nil
	}

	counts := countResults(results)
	statements := 0
	for _, r := range results {
		if r != nil && r.Plan != nil {
			statements += len(r.Plan.SQLStatements())
		}
	}

	var sb strings.Builder
	sb.WriteString("Migration Summary\n")
	sb.WriteString("=================\n\n")

	fmt.Fprintf(&sb, "Tables:  %d (created %d, altered %d, already applied %d)\n",
		len(results), counts[core.StatusCreated], counts[core.StatusAltered], counts[core.StatusAlreadyApplied])
	fmt.Fprintf(&sb, "SQL Statements: %d\n", statements)

	sb.WriteString("\nDetails:\n")
	for _, r := range results {
		if r == nil {
			continue
		}
		fmt.Fprintf(&sb, "  %s %s (%s)\n", statusMarker(r.Status), r.Table, resultChanges(r))
	}

	return sb.String(), nil
}

func statusMarker(s core.MigrationStatus) string {
	switch s {
	case core.StatusCreated:
		return "+"
	case core.StatusAltered:
		return "~"
	default:
		return "="
	}
}

// resultChanges returns a human-readable summary of one result.
func resultChanges(r *apply.Result) string {
	parts := []string{strings.ToLower(strings.ReplaceAll(string(r.Status), "_", " "))}
	if r.Version != "" {
		parts = append(parts, "version "+r.Version)
	}
	if r.Diff != nil {
		if n := len(r.Diff.Add); n > 0 {
			parts = append(parts, fmt.Sprintf("+%d cols", n))
		}
	}
	if r.Plan != nil {
		if n := len(r.Plan.Unsupported()); n > 0 {
			parts = append(parts, fmt.Sprintf("%d unsupported", n))
		}
	}
	if r.DryRun {
		parts = append(parts, "dry run")
	}
	return strings.Join(parts, ", ")
}

// FormatRows formats a result as its row or affected count.
func (summaryFormatter) FormatRows(res *engine.Result) (string, error) {
	switch {
	case res == nil:
		return "No result.\n", nil
	case isRead(res):
		return fmt.Sprintf("%d row(s), %d column(s)\n", len(res.Rows), len(res.Columns)), nil
	default:
		return fmt.Sprintf("%d row(s) affected\n", res.RowsAffected), nil
	}
}

// FormatColumns formats a table's columns as one line.
func (summaryFormatter) FormatColumns(table string, cols []core.ColumnInfo) (string, error) {
	if len(cols) == 0 {
		return fmt.Sprintf("%s: table does not exist\n", table), nil
	}
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
		if c.Primary {
			names[i] += "*"
		}
	}
	return fmt.Sprintf("%s: %d column(s): %s\n", table, len(cols), strings.Join(names, ", ")), nil
}
