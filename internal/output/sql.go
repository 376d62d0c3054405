package output

import (
	"fmt"
	"io"
	"strings"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/engine"
)

type sqlFormatter struct{}

// FormatMigrations formats migration results as a reviewable SQL script.
func (sqlFormatter) FormatMigrations(results []*apply.Result) (string, error) {
	var sb strings.Builder
	sb.WriteString("-- smlite migration\n")

	if len(results) == 0 {
		sb.WriteString("\n-- No migrations.\n")
		return sb.String(), nil
	}

	for _, r := range results {
		if r == nil {
			continue
		}
		writeResultHeader(&sb, r)
		if r.Plan == nil {
			continue
		}
		writeCommentSection(&sb, "UNSUPPORTED (full table rewrite required)", r.Plan.Unsupported())
		writeCommentSection(&sb, "NOTES", r.Plan.Notes())
		writeSQLOperations(&sb, getSQLOperations(r))
	}

	return sb.String(), nil
}

func writeResultHeader(sb *strings.Builder, r *apply.Result) {
	fmt.Fprintf(sb, "\n-- %s: %s", r.Table, r.Status)
	if r.Version != "" {
		fmt.Fprintf(sb, " (version %s)", r.Version)
	}
	if r.DryRun {
		sb.WriteString(" [dry run]")
	}
	sb.WriteString("\n")
}

func writeSQLOperations(sb *strings.Builder, sqlOps []core.Operation) {
	for _, op := range sqlOps {
		writeRiskComment(sb, op)
		sb.WriteString(op.SQL)
		if !strings.HasSuffix(op.SQL, ";") {
			sb.WriteString(";")
		}
		if len(op.Params) > 0 {
			fmt.Fprintf(sb, " -- params: %v", op.Params)
		}
		sb.WriteString("\n")
	}
}

func writeRiskComment(sb *strings.Builder, op core.Operation) {
	if op.Risk != "" && op.Risk != core.RiskInfo {
		sb.WriteString("-- [" + string(op.Risk) + "]\n")
	}
}

func getSQLOperations(r *apply.Result) []core.Operation {
	var ops []core.Operation
	for _, op := range r.Plan.Plan() {
		if op.Kind == core.OperationSQL && op.SQL != "" {
			ops = append(ops, op)
		}
	}
	return ops
}

// FormatRows formats a read as an aligned table, and a mutation as its
// affected row count.
func (sqlFormatter) FormatRows(res *engine.Result) (string, error) {
	if res == nil {
		return "", nil
	}
	var sb strings.Builder
	if isRead(res) {
		writeRows(&sb, res)
		return sb.String(), nil
	}
	fmt.Fprintf(&sb, "-- %d row(s) affected", res.RowsAffected)
	if res.LastInsertID != 0 {
		fmt.Fprintf(&sb, ", last insert id %d", res.LastInsertID)
	}
	sb.WriteString("\n")
	return sb.String(), nil
}

// FormatColumns formats the columns of a table as column definitions.
func (sqlFormatter) FormatColumns(table string, cols []core.ColumnInfo) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "-- %s\n", table)
	if len(cols) == 0 {
		sb.WriteString("-- table does not exist\n")
		return sb.String(), nil
	}
	for _, c := range cols {
		sb.WriteString("`" + c.Name + "` " + c.Rendered())
		if c.Primary {
			sb.WriteString(" PRIMARY KEY")
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// WriteMigrations writes the SQL script of results to w.
func WriteMigrations(results []*apply.Result, w io.Writer) error {
	content, err := sqlFormatter{}.FormatMigrations(results)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, content)
	return err
}

func writeCommentSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("-- " + title + "\n")
	for _, item := range items {
		for _, line := range splitCommentLines(item) {
			if line == "" {
				continue
			}
			sb.WriteString("-- - " + line + "\n")
		}
	}
}

func splitCommentLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}
