package core

import "fmt"

// Reserved table names owned by the adapter.
const (
	LedgerTable   = "migrations"
	SequenceTable = "increment_id"
)

// InitialVersion is reported for tables that have no ledger entry yet.
const InitialVersion = "0.0"

// MigrationSpec is the desired-schema delta for one table. The reconciler
// never modifies the three field lists; Updated is the only field it sets.
type MigrationSpec struct {
	AppliesTo   string            `json:"appliesTo"`
	Model       string            `json:"model,omitempty"`
	Version     string            `json:"version"`
	Description string            `json:"description,omitempty"`
	Add         []FieldDescriptor `json:"add,omitempty"`
	Change      []FieldDescriptor `json:"change,omitempty"`
	Remove      []FieldDescriptor `json:"remove,omitempty"`

	// Updated signals the table is at (or already past) this version.
	Updated bool `json:"updated,omitempty"`
}

// Validate checks the fields the reconciler needs before doing any I/O.
func (m *MigrationSpec) Validate() error {
	if m.AppliesTo == "" {
		return &FormatError{Reason: "migration target table is required"}
	}
	if m.Version == "" {
		return &FormatError{Reason: fmt.Sprintf("migration for %q has no version", m.AppliesTo)}
	}
	for _, list := range [][]FieldDescriptor{m.Add, m.Change, m.Remove} {
		for _, f := range list {
			if f.Name == "" {
				return &FormatError{Reason: fmt.Sprintf("migration for %q has a field without a name", m.AppliesTo)}
			}
		}
	}
	return nil
}

// MigrationStatus is the state of one table while a spec is reconciled.
type MigrationStatus string

const (
	StatusAlreadyApplied MigrationStatus = "ALREADY_APPLIED"
	StatusNotExists      MigrationStatus = "NOT_EXISTS"
	StatusExists         MigrationStatus = "EXISTS"
	StatusCreated        MigrationStatus = "CREATED"
	StatusAltered        MigrationStatus = "ALTERED"
	StatusNoOp           MigrationStatus = "NOOP"
)

// Changed reports whether the status implies DDL ran and a ledger row is due.
func (s MigrationStatus) Changed() bool {
	return s == StatusCreated || s == StatusAltered
}

// LedgerEntry is a persisted row of the migration ledger.
type LedgerEntry struct {
	ID          int64  `json:"id"`
	AppliesTo   string `json:"appliesTo"`
	Model       string `json:"model,omitempty"`
	Version     string `json:"version"`
	Description string `json:"description,omitempty"`
}

// SequenceRecord is a persisted row of the sequence table.
type SequenceRecord struct {
	ID        int64  `json:"id"`
	Entity    string `json:"entity"`
	Attribute string `json:"attribute"`
	Value     int64  `json:"value"`
}

// LedgerMigration describes the ledger table itself. It is created through
// the same CREATE path as any other spec.
func LedgerMigration() *MigrationSpec {
	return &MigrationSpec{
		AppliesTo:   LedgerTable,
		Model:       "migrations",
		Version:     "1.0",
		Description: "Migration ledger (version 1.0)",
		Add: []FieldDescriptor{
			{Name: "id", Type: TypeCounter, Primary: true},
			{Name: "appliesTo", Type: TypeText, Nullable: Bool(false)},
			{Name: "model", Type: TypeText, Nullable: Bool(true)},
			{Name: "description", Type: TypeText},
			{Name: "version", Type: TypeText, Nullable: Bool(false)},
		},
	}
}

// SequenceMigration describes the sequence table used by identity emulation.
func SequenceMigration() *MigrationSpec {
	return &MigrationSpec{
		AppliesTo:   SequenceTable,
		Model:       "increments",
		Version:     "1.0",
		Description: "Increments migration (version 1.0)",
		Add: []FieldDescriptor{
			{Name: "id", Type: TypeCounter, Primary: true},
			{Name: "entity", Type: TypeText, Size: 120},
			{Name: "attribute", Type: TypeText, Size: 120},
			{Name: "value", Type: TypeInteger},
		},
	}
}
