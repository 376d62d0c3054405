package sqlite

import (
	"fmt"
	"strings"

	"smlite/internal/core"
	"smlite/internal/query"
)

// Format renders a statement from the abstract query model.
func (f *Formatter) Format(stmt query.Statement) (string, error) {
	if stmt == nil {
		return "", &core.FormatError{Reason: "nil statement"}
	}
	if strings.TrimSpace(stmt.Target()) == "" {
		return "", &core.FormatError{Reason: "statement has no target table"}
	}
	switch s := stmt.(type) {
	case *query.Select:
		return f.formatSelect(s)
	case *query.Insert:
		return f.formatInsert(s)
	case *query.Update:
		return f.formatUpdate(s)
	case *query.Delete:
		return f.formatDelete(s)
	default:
		return "", &core.FormatError{Reason: fmt.Sprintf("unsupported statement %T", stmt)}
	}
}

// FormatExpr renders a single expression or predicate. Output aliases are
// ignored outside of field lists.
func (f *Formatter) FormatExpr(e query.Expr) (string, error) {
	return f.formatExpr(e, false)
}

func (f *Formatter) formatSelect(s *query.Select) (string, error) {
	var b strings.Builder
	b.WriteString("SELECT ")
	if s.Distinct {
		b.WriteString("DISTINCT ")
	}
	if len(s.Fields) == 0 {
		b.WriteString("*")
	} else {
		fields := make([]string, len(s.Fields))
		for i, fe := range s.Fields {
			out, err := f.formatExpr(fe, true)
			if err != nil {
				return "", err
			}
			fields[i] = out
		}
		b.WriteString(strings.Join(fields, ", "))
	}
	b.WriteString(" FROM ")
	b.WriteString(f.QuoteIdentifier(s.Table))

	if err := f.writeWhere(&b, s.Filter); err != nil {
		return "", err
	}

	if len(s.GroupBy) > 0 {
		terms, err := f.formatArgs(s.GroupBy)
		if err != nil {
			return "", err
		}
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	if len(s.OrderBy) > 0 {
		terms := make([]string, len(s.OrderBy))
		for i, o := range s.OrderBy {
			out, err := f.formatExpr(o.Expr, false)
			if err != nil {
				return "", err
			}
			if o.Desc {
				out += " DESC"
			} else {
				out += " ASC"
			}
			terms[i] = out
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(terms, ", "))
	}

	switch {
	case s.Limit > 0:
		fmt.Fprintf(&b, " LIMIT %d", s.Limit)
		if s.Offset > 0 {
			fmt.Fprintf(&b, " OFFSET %d", s.Offset)
		}
	case s.Offset > 0:
		// SQLite has no OFFSET without LIMIT; -1 means unbounded.
		fmt.Fprintf(&b, " LIMIT -1 OFFSET %d", s.Offset)
	}
	return b.String(), nil
}

func (f *Formatter) formatInsert(s *query.Insert) (string, error) {
	if len(s.Values) == 0 {
		return "", &core.FormatError{Reason: fmt.Sprintf("insert into %q: no values", s.Table)}
	}
	cols := make([]string, len(s.Values))
	vals := make([]string, len(s.Values))
	for i, a := range s.Values {
		out, err := f.formatExpr(a.Value, false)
		if err != nil {
			return "", err
		}
		cols[i] = f.QuoteIdentifier(a.Column)
		vals[i] = out
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		f.QuoteIdentifier(s.Table), strings.Join(cols, ", "), strings.Join(vals, ", ")), nil
}

func (f *Formatter) formatUpdate(s *query.Update) (string, error) {
	if len(s.Values) == 0 {
		return "", &core.FormatError{Reason: fmt.Sprintf("update %q: no assignments", s.Table)}
	}
	sets := make([]string, len(s.Values))
	for i, a := range s.Values {
		out, err := f.formatExpr(a.Value, false)
		if err != nil {
			return "", err
		}
		sets[i] = f.QuoteIdentifier(a.Column) + " = " + out
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s", f.QuoteIdentifier(s.Table), strings.Join(sets, ", "))
	if err := f.writeWhere(&b, s.Filter); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (f *Formatter) formatDelete(s *query.Delete) (string, error) {
	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(f.QuoteIdentifier(s.Table))
	if err := f.writeWhere(&b, s.Filter); err != nil {
		return "", err
	}
	return b.String(), nil
}

func (f *Formatter) writeWhere(b *strings.Builder, filter query.Expr) error {
	if filter == nil {
		return nil
	}
	out, err := f.formatExpr(filter, false)
	if err != nil {
		return err
	}
	b.WriteString(" WHERE ")
	b.WriteString(out)
	return nil
}

func (f *Formatter) formatExpr(e query.Expr, withAlias bool) (string, error) {
	switch x := e.(type) {
	case nil:
		return "", &core.FormatError{Reason: "nil expression"}
	case query.FieldExpr:
		if strings.TrimSpace(x.Name) == "" {
			return "", &core.FormatError{Reason: "field reference without a name"}
		}
		return f.aliased(f.QuoteIdentifier(x.Name), x.Alias, withAlias), nil
	case query.ValueExpr:
		return f.Escape(x.Value, false)
	case query.FuncExpr:
		out, err := f.formatFunc(x)
		if err != nil {
			return "", err
		}
		return f.aliased(out, x.Alias, withAlias), nil
	case query.CompareExpr:
		return f.formatCompare(x)
	case query.LogicalExpr:
		return f.formatLogical(x)
	case query.NotExpr:
		inner, err := f.formatExpr(x.Pred, false)
		if err != nil {
			return "", err
		}
		return "NOT (" + inner + ")", nil
	case query.NullExpr:
		inner, err := f.formatExpr(x.Expr, false)
		if err != nil {
			return "", err
		}
		if x.Negate {
			return inner + " IS NOT NULL", nil
		}
		return inner + " IS NULL", nil
	case query.InExpr:
		return f.formatIn(x)
	default:
		return "", &core.FormatError{Reason: fmt.Sprintf("unsupported expression %T", e)}
	}
}

func (f *Formatter) aliased(s, alias string, withAlias bool) string {
	if !withAlias || alias == "" {
		return s
	}
	return s + " AS " + f.QuoteIdentifier(alias)
}

func (f *Formatter) formatCompare(c query.CompareExpr) (string, error) {
	left, err := f.formatExpr(c.Left, false)
	if err != nil {
		return "", err
	}
	if v, ok := c.Right.(query.ValueExpr); ok && v.Value == nil {
		switch c.Op {
		case query.OpEQ:
			return left + " IS NULL", nil
		case query.OpNEQ:
			return left + " IS NOT NULL", nil
		}
	}
	switch c.Op {
	case query.OpEQ, query.OpNEQ, query.OpLT, query.OpLTE, query.OpGT, query.OpGTE:
	default:
		return "", &core.FormatError{Reason: fmt.Sprintf("unsupported comparison operator %q", c.Op)}
	}
	right, err := f.formatExpr(c.Right, false)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s %s %s", left, c.Op, right), nil
}

func (f *Formatter) formatLogical(l query.LogicalExpr) (string, error) {
	op := strings.ToUpper(strings.TrimSpace(l.Op))
	if op != "AND" && op != "OR" {
		return "", &core.FormatError{Reason: fmt.Sprintf("unsupported logical operator %q", l.Op)}
	}
	if len(l.Preds) == 0 {
		return "", &core.FormatError{Reason: op + " without predicates"}
	}
	parts, err := f.formatArgs(l.Preds)
	if err != nil {
		return "", err
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")", nil
}

func (f *Formatter) formatIn(in query.InExpr) (string, error) {
	if len(in.Values) == 0 {
		return "", &core.FormatError{Reason: "IN with an empty value list"}
	}
	left, err := f.formatExpr(in.Expr, false)
	if err != nil {
		return "", err
	}
	vals, err := f.formatArgs(in.Values)
	if err != nil {
		return "", err
	}
	op := " IN ("
	if in.Negate {
		op = " NOT IN ("
	}
	return left + op + strings.Join(vals, ", ") + ")", nil
}
