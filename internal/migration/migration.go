// Package migration holds the plan a reconciliation produces: the statements
// it will execute, informational notes, and the reasons a requested change
// could not be applied.
package migration

import (
	"strings"

	"smlite/internal/core"
)

// Migration struct contains all operations that need to be performed
// to reconcile one table with its desired schema.
type Migration struct {
	Table      string           `json:"table,omitempty"`
	Operations []core.Operation `json:"operations"`
}

// Plan returns the list of operations that needs to be performed,
// to apply a schema migration.
func (m *Migration) Plan() []core.Operation {
	return m.Operations
}

// SQLStatements returns the SQL text of every executable operation, in order.
func (m *Migration) SQLStatements() []string {
	return m.filterByKind(core.OperationSQL, func(op core.Operation) string { return op.SQL })
}

// Notes returns the informational notes of the plan.
func (m *Migration) Notes() []string {
	return m.filterByKind(core.OperationNote, func(op core.Operation) string { return op.Reason })
}

// Unsupported returns the reasons the plan requires a full table rewrite.
func (m *Migration) Unsupported() []string {
	return m.filterByKind(core.OperationUnsupported, func(op core.Operation) string { return op.Reason })
}

// HasUnsupported reports whether any requested change cannot be applied.
func (m *Migration) HasUnsupported() bool {
	for i := range m.Operations {
		if m.Operations[i].Kind == core.OperationUnsupported {
			return true
		}
	}
	return false
}

// IsEmpty reports whether the plan executes nothing.
func (m *Migration) IsEmpty() bool {
	return len(m.SQLStatements()) == 0
}

func (m *Migration) AddStatement(stmt string, params ...any) {
	if stmt = strings.TrimSpace(stmt); stmt == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationSQL, SQL: stmt, Params: params})
}

func (m *Migration) AddNote(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationNote, Reason: msg, Risk: core.RiskInfo})
}

func (m *Migration) AddUnsupported(msg string) {
	if msg = strings.TrimSpace(msg); msg == "" {
		return
	}
	m.Operations = append(m.Operations, core.Operation{Kind: core.OperationUnsupported, Reason: msg, Risk: core.RiskCritical})
}

// Dedupe drops repeated notes and unsupported reasons, keeping the first
// occurrence. Statements are never merged.
func (m *Migration) Dedupe() {
	n := len(m.Operations)
	if n == 0 {
		return
	}
	seen := make(map[core.OperationKind]map[string]struct{}, 2)
	out := make([]core.Operation, 0, n)
	for i := range m.Operations {
		op := m.Operations[i]
		op.SQL = strings.TrimSpace(op.SQL)
		op.Reason = strings.TrimSpace(op.Reason)

		if op.Kind == core.OperationSQL {
			if op.SQL != "" {
				out = append(out, op)
			}
			continue
		}
		if op.Reason == "" {
			continue
		}
		if seen[op.Kind] == nil {
			seen[op.Kind] = make(map[string]struct{})
		}
		if _, ok := seen[op.Kind][op.Reason]; ok {
			continue
		}
		seen[op.Kind][op.Reason] = struct{}{}
		out = append(out, op)
	}
	m.Operations = out
}

func (m *Migration) filterByKind(kind core.OperationKind, fieldFn func(core.Operation) string) []string {
	out := make([]string, 0, len(m.Operations)/4+1)
	for i := range m.Operations {
		op := &m.Operations[i]
		if op.Kind != kind {
			continue
		}
		val := strings.TrimSpace(fieldFn(*op))
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
