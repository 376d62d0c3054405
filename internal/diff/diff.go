// Package diff compares the fields a migration asks for with the columns a
// table physically has. It decides which columns can be added in place and
// which requested changes would need a full table rewrite.
package diff

import (
	"fmt"
	"strings"

	"smlite/internal/core"
	"smlite/internal/dialect"
)

// TableDiff is the outcome of comparing one migration with the live table.
type TableDiff struct {
	Table string `json:"table"`
	// Add lists the columns to add, in declaration order: the migration's add
	// entries first, then change entries whose column does not exist yet.
	Add []core.FieldDescriptor `json:"add,omitempty"`
	// Notes records entries that were pruned as no-ops.
	Notes []string `json:"notes,omitempty"`
	// Rewrites lists the reasons the table would have to be rebuilt.
	Rewrites []string `json:"rewrites,omitempty"`
}

// NeedsRewrite reports whether any entry requires a full table rewrite.
func (d *TableDiff) NeedsRewrite() bool {
	return len(d.Rewrites) > 0
}

// IsEmpty reports whether the table already matches the migration.
func (d *TableDiff) IsEmpty() bool {
	return len(d.Add) == 0 && len(d.Rewrites) == 0
}

// Columns diffs spec against the physical columns of its table. Entries are
// processed as remove, then change, then add. A column counts as primary when
// either the descriptor or the physical column says so; primary columns are
// never altered, removed or re-added.
//
// New columns land in Add only when ALTER TABLE ... ADD COLUMN can create
// them. A new primary, Counter or NOT NULL column on an existing table is a
// rewrite reason instead, since SQLite rejects those in ADD COLUMN.
func Columns(spec *core.MigrationSpec, columns []core.ColumnInfo, mapper dialect.TypeMapper) *TableDiff {
	d := &TableDiff{Table: spec.AppliesTo}

	for _, f := range spec.Remove {
		col, ok := core.FindColumn(columns, f.Name)
		switch {
		case !ok:
			d.note("remove %q: column does not exist", f.Name)
		case f.Primary || col.Primary:
			d.note("remove %q: primary key is immutable", f.Name)
		default:
			d.rewrite("remove %q: dropping a column", f.Name)
		}
	}

	var reclassified []core.FieldDescriptor
	for _, f := range spec.Change {
		if f.OneToMany {
			continue
		}
		col, ok := core.FindColumn(columns, f.Name)
		if !ok {
			d.note("change %q: column does not exist, adding it", f.Name)
			reclassified = append(reclassified, f)
			continue
		}
		if f.Primary || col.Primary {
			d.note("change %q: primary key is immutable", f.Name)
			continue
		}
		want := mapper.MapType(f)
		if have := col.Rendered(); have != want {
			d.rewrite("change %q: %s -> %s", f.Name, have, want)
			continue
		}
		d.note("change %q: already %s", f.Name, want)
	}

	seen := make(map[string]struct{}, len(spec.Add)+len(reclassified))
	for _, f := range append(append([]core.FieldDescriptor(nil), spec.Add...), reclassified...) {
		if f.OneToMany {
			continue
		}
		key := strings.ToLower(f.Name)
		if _, dup := seen[key]; dup {
			d.note("add %q: listed more than once", f.Name)
			continue
		}
		seen[key] = struct{}{}

		col, ok := core.FindColumn(columns, f.Name)
		if ok {
			if f.Primary || col.Primary {
				d.note("add %q: primary key already exists", f.Name)
				continue
			}
			want := mapper.MapType(f)
			if have := col.Rendered(); have != want {
				d.rewrite("add %q: column exists as %s, requested %s", f.Name, have, want)
				continue
			}
			d.note("add %q: already exists", f.Name)
			continue
		}

		// ALTER TABLE ... ADD COLUMN cannot add key columns, and a NOT NULL
		// column needs a default the type mapper never emits.
		switch {
		case f.Primary || f.Type == core.TypeCounter:
			d.rewrite("add %q: primary key column on an existing table", f.Name)
		case !f.IsNullable():
			d.rewrite("add %q: NOT NULL column without a default on an existing table", f.Name)
		default:
			d.Add = append(d.Add, f)
		}
	}
	return d
}

func (d *TableDiff) note(format string, args ...any) {
	d.Notes = append(d.Notes, fmt.Sprintf(format, args...))
}

func (d *TableDiff) rewrite(format string, args ...any) {
	d.Rewrites = append(d.Rewrites, fmt.Sprintf(format, args...))
}
