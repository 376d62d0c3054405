// Package sqlite provides SQLite dialect support: logical-to-physical type
// mapping, literal and identifier escaping, query formatting with the
// portable function set, and the DDL the reconciler is allowed to emit
// (CREATE TABLE, ALTER TABLE ... ADD COLUMN, CREATE/DROP VIEW).
package sqlite

import (
	"fmt"
	"strings"

	"smlite/internal/core"
	"smlite/internal/dialect"
	"smlite/internal/query"
)

// Dialect represents the SQLite dialect struct, with its formatter and DDL generator.
type Dialect struct {
	formatter *Formatter
	generator *Generator
}

// NewSQLiteDialect initializes a new SQLite dialect instance.
func NewSQLiteDialect() *Dialect {
	f := NewFormatter()
	return &Dialect{
		formatter: f,
		generator: &Generator{f: f},
	}
}

// Name returns the name of the SQLite dialect.
func (d *Dialect) Name() dialect.Type {
	return dialect.SQLite
}

// Formatter returns the query formatter for the SQLite dialect.
func (d *Dialect) Formatter() dialect.Formatter {
	return d.formatter
}

// Generator returns the DDL generator for the SQLite dialect.
func (d *Dialect) Generator() dialect.Generator {
	return d.generator
}

// Generator is a stateless struct for generating SQLite DDL.
type Generator struct {
	f *Formatter
}

// NewSQLiteGenerator initializes a new SQLite DDL generator instance.
func NewSQLiteGenerator() *Generator {
	return &Generator{f: NewFormatter()}
}

// MapType implements dialect.TypeMapper.
func (g *Generator) MapType(field core.FieldDescriptor) string {
	return MapType(field)
}

// GenerateCreateTable renders CREATE TABLE for the given fields. Relation
// placeholders (OneToMany) own no column and are skipped.
func (g *Generator) GenerateCreateTable(table string, fields []core.FieldDescriptor) string {
	cols := make([]string, 0, len(fields))
	for _, f := range fields {
		if f.OneToMany {
			continue
		}
		cols = append(cols, g.columnDefinition(f))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", g.f.QuoteIdentifier(table), strings.Join(cols, ", "))
}

// GenerateAddColumn renders the only ALTER TABLE form the reconciler emits.
func (g *Generator) GenerateAddColumn(table string, field core.FieldDescriptor) string {
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", g.f.QuoteIdentifier(table), g.columnDefinition(field))
}

// GenerateCreateView renders CREATE VIEW over a formatted select.
func (g *Generator) GenerateCreateView(name string, sel *query.Select) (string, error) {
	if sel == nil {
		return "", &core.FormatError{Reason: fmt.Sprintf("view %q has no query", name)}
	}
	body, err := g.f.Format(sel)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("CREATE VIEW %s AS %s", g.f.QuoteIdentifier(name), body), nil
}

// GenerateDropView renders an idempotent DROP VIEW.
func (g *Generator) GenerateDropView(name string) string {
	return "DROP VIEW IF EXISTS " + g.f.QuoteIdentifier(name)
}

func (g *Generator) columnDefinition(f core.FieldDescriptor) string {
	return g.f.QuoteIdentifier(f.Name) + " " + MapType(f)
}
