// Package core contains the single source of truth for the adapter's schema
// model. It provides the logical field descriptors callers submit, the
// migration value objects the reconciler consumes, and the physical column
// shape the introspector reports back.
package core

import (
	"fmt"
	"strings"
)

// LogicalType is an ENUM with all logical field types a model layer can declare.
type LogicalType string

const (
	TypeBoolean  LogicalType = "Boolean"
	TypeByte     LogicalType = "Byte"
	TypeNumber   LogicalType = "Number"
	TypeFloat    LogicalType = "Float"
	TypeCounter  LogicalType = "Counter"
	TypeCurrency LogicalType = "Currency"
	TypeDecimal  LogicalType = "Decimal"
	TypeDate     LogicalType = "Date"
	TypeTime     LogicalType = "Time"
	TypeDateTime LogicalType = "DateTime"
	TypeLong     LogicalType = "Long"
	TypeDuration LogicalType = "Duration"
	TypeInteger  LogicalType = "Integer"
	TypeShort    LogicalType = "Short"
	TypeText     LogicalType = "Text"
	TypeNote     LogicalType = "Note"
	TypeURL      LogicalType = "URL"
	TypeImage    LogicalType = "Image"
	TypeBinary   LogicalType = "Binary"
	TypeGuid     LogicalType = "Guid"
)

// LogicalTypes returns a slice of all known logical types.
func LogicalTypes() []LogicalType {
	return []LogicalType{
		TypeBoolean, TypeByte, TypeNumber, TypeFloat, TypeCounter,
		TypeCurrency, TypeDecimal, TypeDate, TypeTime, TypeDateTime,
		TypeLong, TypeDuration, TypeInteger, TypeShort, TypeText,
		TypeNote, TypeURL, TypeImage, TypeBinary, TypeGuid,
	}
}

// ParseLogicalType resolves a type name case-insensitively.
func ParseLogicalType(s string) (LogicalType, error) {
	s = strings.TrimSpace(s)
	for _, t := range LogicalTypes() {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown logical type %q", s)
}

// FieldDescriptor describes one attribute of a model as the caller's schema
// definition declares it. It is immutable once submitted to a migration.
type FieldDescriptor struct {
	Name  string      `json:"name"`
	Type  LogicalType `json:"type"`
	Size  uint        `json:"size,omitempty"`
	Scale uint        `json:"scale,omitempty"`

	// Nullable is a tri-state: nil means unset, which renders as nullable.
	Nullable *bool `json:"nullable,omitempty"`
	Primary  bool  `json:"primary,omitempty"`

	// OneToMany marks a relation placeholder that owns no physical column.
	OneToMany bool `json:"oneToMany,omitempty"`
}

// IsNullable reports the effective nullability of the field.
func (f FieldDescriptor) IsNullable() bool {
	return f.Nullable == nil || *f.Nullable
}

// GetName implements the Named interface used for lookups.
func (f FieldDescriptor) GetName() string { return f.Name }

// Bool returns a pointer to b, for FieldDescriptor.Nullable literals.
func Bool(b bool) *bool { return &b }

// ColumnInfo is the physical shape of a column as reported by the engine.
// It is reconstructed on every reconciliation and never cached.
type ColumnInfo struct {
	Name         string `json:"name"`
	Ordinal      int    `json:"ordinal"`
	PhysicalType string `json:"type"`
	Nullable     bool   `json:"nullable"`
	Primary      bool   `json:"primary"`
	Size         uint   `json:"size,omitempty"`
	Scale        uint   `json:"scale,omitempty"`
}

// Rendered returns the column type plus nullability clause in the same shape
// the type mapper produces for non-primary fields (e.g. "TEXT(120,0) NOT NULL").
func (c ColumnInfo) Rendered() string {
	typ := strings.ToUpper(strings.TrimSpace(c.PhysicalType))
	if c.Nullable {
		return typ + " NULL"
	}
	return typ + " NOT NULL"
}

// FindColumn looks for a column by name, case-insensitively as the engine does.
func FindColumn(columns []ColumnInfo, name string) (ColumnInfo, bool) {
	for _, c := range columns {
		if strings.EqualFold(c.Name, name) {
			return c, true
		}
	}
	return ColumnInfo{}, false
}
