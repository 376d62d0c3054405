// Package dialect provides the interfaces the adapter uses to talk SQL. It
// separates type mapping, literal/identifier escaping, query formatting, and
// DDL generation, so the reconciler and the adapter stay independent of the
// engine's exact syntax.
package dialect

import (
	"smlite/internal/core"
	"smlite/internal/query"
)

type Type string

const (
	SQLite Type = "sqlite"
)

// TypeMapper maps a logical field to its physical column clause.
type TypeMapper interface {
	MapType(field core.FieldDescriptor) string
}

// Escaper renders literals and identifiers.
type Escaper interface {
	Escape(value any, unquoted bool) (string, error)
	QuoteIdentifier(name string) string
}

// Formatter lowers the abstract query model into SQL text.
type Formatter interface {
	Escaper
	Format(stmt query.Statement) (string, error)
	FormatExpr(e query.Expr) (string, error)
}

// Generator produces the DDL statements the reconciler executes.
type Generator interface {
	TypeMapper
	GenerateCreateTable(table string, fields []core.FieldDescriptor) string
	GenerateAddColumn(table string, field core.FieldDescriptor) string
	GenerateCreateView(name string, sel *query.Select) (string, error)
	GenerateDropView(name string) string
}

// Dialect interface creates a way to interact with a specific SQL dialect.
type Dialect interface {
	Name() Type
	Formatter() Formatter
	Generator() Generator
}
