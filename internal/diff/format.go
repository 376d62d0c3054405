package diff

import (
	"fmt"
	"strings"
)

// String returns a human readable summary of the table diff.
func (d *TableDiff) String() string {
	if d.IsEmpty() && len(d.Notes) == 0 {
		return fmt.Sprintf("Table %s: no differences detected.", d.Table)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Table %s:\n", d.Table))

	if len(d.Add) > 0 {
		sb.WriteString("\nColumns to add:\n")
		for _, f := range d.Add {
			sb.WriteString(fmt.Sprintf("  - %s (%s)\n", f.Name, f.Type))
		}
	}

	if len(d.Rewrites) > 0 {
		sb.WriteString("\nRequires full table rewrite:\n")
		for _, r := range d.Rewrites {
			sb.WriteString(fmt.Sprintf("  - %s\n", r))
		}
	}

	if len(d.Notes) > 0 {
		sb.WriteString("\nNotes:\n")
		for _, n := range d.Notes {
			sb.WriteString(fmt.Sprintf("  - %s\n", n))
		}
	}

	return sb.String()
}
