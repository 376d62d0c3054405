package apply

import (
	"fmt"
	"strings"
)

// We use custom printf to format and print messages to the output writer.
func (r *Reconciler) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *Reconciler) println(args ...any) {
	_, _ = fmt.Fprintln(r.out, args...)
}

func (r *Reconciler) report(res *Result) {
	r.println("=== DRY RUN MODE ===")
	r.printf("Table: %s\n", res.Table)
	r.printf("Planned status: %s\n", res.Status)

	if res.Diff != nil && !res.Diff.IsEmpty() {
		r.println("--- Diff ---")
		r.println(strings.TrimRight(res.Diff.String(), "\n"))
	}

	if reasons := res.Plan.Unsupported(); len(reasons) > 0 {
		r.println("--- Refused (full table rewrite required) ---")
		for _, reason := range reasons {
			r.printf("  - %s\n", reason)
		}
	}

	if notes := res.Plan.Notes(); len(notes) > 0 {
		r.println("--- Notes ---")
		for _, n := range notes {
			r.printf("  - %s\n", n)
		}
	}

	r.println("--- Statements to Execute ---")
	stmts := res.Plan.SQLStatements()
	if len(stmts) == 0 {
		r.println("Nothing to execute")
	}
	for i, stmt := range stmts {
		r.printf("%d. %s\n", i+1, stmt)
	}

	r.println("=== DRY RUN COMPLETE ===")
}
