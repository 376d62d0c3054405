// Package output provides a set of formatters for migration results, query
// rows and table columns. It is extendable and for now provides three
// formats: SQL, JSON and a compact summary.
package output

import (
	"fmt"
	"strings"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/engine"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatSQL     Format = "sql"
	FormatJSON    Format = "json"
	FormatSummary Format = "summary"
)

// Formatter is an interface for formatting what the adapter reports.
type Formatter interface {
	FormatMigrations([]*apply.Result) (string, error)
	FormatRows(*engine.Result) (string, error)
	FormatColumns(table string, cols []core.ColumnInfo) (string, error)
}

// NewFormatter creates a new Formatter instance based on the given name.
// If no format is specified, defaults to SQL format.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatSQL:
		return sqlFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	case FormatSummary:
		return summaryFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'sql', 'json', or 'summary'", name)
	}
}

func normalizeStatements(stmts []string) []string {
	var out []string
	for _, stmt := range stmts {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if !strings.HasSuffix(stmt, ";") {
			stmt += ";"
		}
		out = append(out, stmt)
	}
	return out
}

// countResults tallies results by status.
func countResults(results []*apply.Result) map[core.MigrationStatus]int {
	counts := make(map[core.MigrationStatus]int, len(results))
	for _, r := range results {
		if r != nil {
			counts[r.Status]++
		}
	}
	return counts
}
