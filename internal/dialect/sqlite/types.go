package sqlite

import (
	"fmt"

	"smlite/internal/core"
)

// counterClause is the full clause for the row-identity column. It replaces
// the nullability/primary-key suffix rather than being combined with it.
const counterClause = "INTEGER PRIMARY KEY AUTOINCREMENT NOT NULL"

// defaultCurrencyPrecision is used when a Currency field has no size.
const defaultCurrencyPrecision = 19

// MapType maps a logical field to its physical column clause, including the
// nullability or primary-key suffix. SQLite keeps the declared type text
// verbatim, so "TEXT(120,0)" is also what introspection reads back.
func MapType(field core.FieldDescriptor) string {
	var s string
	switch field.Type {
	case core.TypeBoolean, core.TypeByte:
		s = "INTEGER(1,0)"
	case core.TypeNumber, core.TypeFloat:
		s = "REAL"
	case core.TypeCounter:
		return counterClause
	case core.TypeCurrency:
		precision := field.Size
		if precision == 0 {
			precision = defaultCurrencyPrecision
		}
		s = fmt.Sprintf("NUMERIC(%d,4)", precision)
	case core.TypeDecimal:
		s = "NUMERIC"
		if field.Size > 0 && field.Scale > 0 {
			s = fmt.Sprintf("NUMERIC(%d,%d)", field.Size, field.Scale)
		}
	case core.TypeDate, core.TypeTime, core.TypeDateTime:
		// No native temporal type: values are stored as sortable text/numbers.
		s = "NUMERIC"
	case core.TypeLong, core.TypeDuration:
		s = "INTEGER"
	case core.TypeInteger:
		s = "INTEGER"
		if field.Size > 0 {
			s = fmt.Sprintf("INTEGER(%d,0)", field.Size)
		}
	case core.TypeShort:
		s = "INTEGER(2,0)"
	case core.TypeText, core.TypeNote, core.TypeURL:
		s = "TEXT"
		if field.Size > 0 {
			s = fmt.Sprintf("TEXT(%d,0)", field.Size)
		}
	case core.TypeImage, core.TypeBinary:
		s = "BLOB"
	case core.TypeGuid:
		s = "TEXT(36,0)"
	default:
		s = "INTEGER"
	}

	if field.Primary {
		return s + " PRIMARY KEY NOT NULL"
	}
	if field.IsNullable() {
		return s + " NULL"
	}
	return s + " NOT NULL"
}
