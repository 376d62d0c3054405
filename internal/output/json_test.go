package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smlite/internal/core"
	"smlite/internal/engine"
)

func TestJSONFormatMigrations(t *testing.T) {
	out, err := jsonFormatter{}.FormatMigrations(sampleResults())
	require.NoError(t, err)

	var payload migrationPayload
	require.NoError(t, json.Unmarshal([]byte(out), &payload))

	assert.Equal(t, "json", payload.Format)
	assert.Equal(t, migrationSummary{Tables: 3, Changed: 1, SQLStatements: 2, Unsupported: 1}, payload.Summary)
	require.Len(t, payload.Migrations, 3)

	person := payload.Migrations[0]
	assert.Equal(t, core.StatusCreated, person.Status)
	require.Len(t, person.SQL, 2)
	assert.Equal(t, "CREATE TABLE `Person` (`id` INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL);", person.SQL[0])

	order := payload.Migrations[1]
	assert.Equal(t, []string{`change "total": type differs`}, order.Unsupported)
	assert.Equal(t, []string{`remove "legacy": column does not exist`}, order.Notes)
}

func TestJSONFormatMigrationsEmpty(t *testing.T) {
	out, err := jsonFormatter{}.FormatMigrations(nil)
	require.NoError(t, err)
	assert.Contains(t, out, `"migrations": []`)
}

func TestJSONFormatRows(t *testing.T) {
	out, err := jsonFormatter{}.FormatRows(&engine.Result{
		Columns: []string{"id", "body"},
		Rows:    []engine.Row{{"id": int64(1), "body": []byte("hi")}},
	})
	require.NoError(t, err)

	var payload struct {
		Columns []string         `json:"columns"`
		Rows    []map[string]any `json:"rows"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &payload))
	assert.Equal(t, []string{"id", "body"}, payload.Columns)
	require.Len(t, payload.Rows, 1)
	assert.Equal(t, "hi", payload.Rows[0]["body"], "text bytes are not base64 encoded")
	assert.InDelta(t, 1, payload.Rows[0]["id"], 0)
}

func TestJSONFormatColumns(t *testing.T) {
	tests := []struct {
		name       string
		cols       []core.ColumnInfo
		wantExists bool
	}{
		{name: "existing", cols: []core.ColumnInfo{{Name: "id", PhysicalType: "INTEGER", Primary: true}}, wantExists: true},
		{name: "missing", cols: nil, wantExists: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := jsonFormatter{}.FormatColumns("Person", tt.cols)
			require.NoError(t, err)

			var payload columnsPayload
			require.NoError(t, json.Unmarshal([]byte(out), &payload))
			assert.Equal(t, "Person", payload.Table)
			assert.Equal(t, tt.wantExists, payload.Exists)
			assert.NotNil(t, payload.Columns)
		})
	}
}
