package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/diff"
	"smlite/internal/migration"
)

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Formatter
	}{
		{name: "default", input: "", want: sqlFormatter{}},
		{name: "sql", input: "sql", want: sqlFormatter{}},
		{name: "sql_uppercase", input: "SQL", want: sqlFormatter{}},
		{name: "json", input: "json", want: jsonFormatter{}},
		{name: "json_uppercase", input: "JSON", want: jsonFormatter{}},
		{name: "summary", input: "summary", want: summaryFormatter{}},
		{name: "whitespace", input: "  sql  ", want: sqlFormatter{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := NewFormatter(tt.input)
			require.NoError(t, err)
			assert.IsType(t, tt.want, f)
		})
	}
}

func TestNewFormatterInvalidFormat(t *testing.T) {
	f, err := NewFormatter("invalid")
	require.Error(t, err)
	assert.Nil(t, f)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestNormalizeStatements(t *testing.T) {
	got := normalizeStatements([]string{"  SELECT 1 ", "", "SELECT 2;"})
	assert.Equal(t, []string{"SELECT 1;", "SELECT 2;"}, got)
}

// sampleResults returns one created table, one refused rewrite and one
// already applied table.
func sampleResults() []*apply.Result {
	created := &migration.Migration{Table: "Person"}
	created.AddStatement("CREATE TABLE `Person` (`id` INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL)")
	created.AddStatement("INSERT INTO `migrations` (`appliesTo`, `model`, `description`, `version`) VALUES (?, ?, ?, ?)",
		"Person", "Person", "", "1.0")

	refused := &migration.Migration{Table: "Order"}
	refused.AddNote(`remove "legacy": column does not exist`)
	refused.AddUnsupported(`change "total": type differs`)

	return []*apply.Result{
		{Table: "Person", Status: core.StatusCreated, Version: "1.0", Plan: created},
		{Table: "Order", Status: core.StatusExists, Version: "1.0", Plan: refused,
			Diff: &diff.TableDiff{Table: "Order", Add: []core.FieldDescriptor{{Name: "note", Type: core.TypeNote}}}},
		{Table: "City", Status: core.StatusAlreadyApplied, Version: "2.0", Plan: &migration.Migration{Table: "City"}},
	}
}

func TestCountResults(t *testing.T) {
	counts := countResults(append(sampleResults(), nil))
	assert.Equal(t, 1, counts[core.StatusCreated])
	assert.Equal(t, 1, counts[core.StatusExists])
	assert.Equal(t, 1, counts[core.StatusAlreadyApplied])
}
