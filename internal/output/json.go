package output

import (
	"encoding/json"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/engine"
)

type jsonFormatter struct{}

type migrationSummary struct {
	Tables        int `json:"tables"`
	Changed       int `json:"changed"`
	SQLStatements int `json:"sqlStatements"`
	Unsupported   int `json:"unsupported"`
}

type migrationEntry struct {
	Table       string               `json:"table"`
	Status      core.MigrationStatus `json:"status"`
	Version     string               `json:"version,omitempty"`
	DryRun      bool                 `json:"dryRun,omitempty"`
	SQL         []string             `json:"sql,omitempty"`
	Notes       []string             `json:"notes,omitempty"`
	Unsupported []string             `json:"unsupported,omitempty"`
}

type migrationPayload struct {
	Format     string           `json:"format"`
	Summary    migrationSummary `json:"summary"`
	Migrations []migrationEntry `json:"migrations"`
}

type rowsPayload struct {
	Format       string       `json:"format"`
	Columns      []string     `json:"columns,omitempty"`
	Rows         []engine.Row `json:"rows,omitempty"`
	RowsAffected int64        `json:"rowsAffected"`
	LastInsertID int64        `json:"lastInsertId,omitempty"`
}

type columnsPayload struct {
	Format  string            `json:"format"`
	Table   string            `json:"table"`
	Exists  bool              `json:"exists"`
	Columns []core.ColumnInfo `json:"columns"`
}

type Payload interface {
	migrationPayload | rowsPayload | columnsPayload
}

func (jsonFormatter) FormatMigrations(results []*apply.Result) (string, error) {
	payload := migrationPayload{Format: string(FormatJSON), Migrations: []migrationEntry{}}
	for _, r := range results {
		if r == nil {
			continue
		}
		e := migrationEntry{
			Table:   r.Table,
			Status:  r.Status,
			Version: r.Version,
			DryRun:  r.DryRun,
		}
		if r.Plan != nil {
			e.SQL = normalizeStatements(r.Plan.SQLStatements())
			e.Notes = r.Plan.Notes()
			e.Unsupported = r.Plan.Unsupported()
		}
		payload.Migrations = append(payload.Migrations, e)

		payload.Summary.Tables++
		if r.Status.Changed() {
			payload.Summary.Changed++
		}
		payload.Summary.SQLStatements += len(e.SQL)
		payload.Summary.Unsupported += len(e.Unsupported)
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatRows(res *engine.Result) (string, error) {
	payload := rowsPayload{Format: string(FormatJSON)}
	if res != nil {
		payload.Columns = res.Columns
		payload.Rows = textRows(res.Rows)
		payload.RowsAffected = res.RowsAffected
		payload.LastInsertID = res.LastInsertID
	}
	return marshalJSON(payload)
}

func (jsonFormatter) FormatColumns(table string, cols []core.ColumnInfo) (string, error) {
	if cols == nil {
		cols = []core.ColumnInfo{}
	}
	return marshalJSON(columnsPayload{
		Format:  string(FormatJSON),
		Table:   table,
		Exists:  len(cols) > 0,
		Columns: cols,
	})
}

// textRows turns TEXT values scanned as bytes into strings; the driver may
// report either, and encoding/json would base64 the bytes.
func textRows(rows []engine.Row) []engine.Row {
	out := make([]engine.Row, len(rows))
	for i, row := range rows {
		r := make(engine.Row, len(row))
		for k, v := range row {
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			r[k] = v
		}
		out[i] = r
	}
	return out
}

func marshalJSON[T Payload](payload T) (string, error) {
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
