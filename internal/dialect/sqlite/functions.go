package sqlite

import (
	"fmt"
	"strings"

	"smlite/internal/core"
	"smlite/internal/query"
)

type funcHandler func(f *Formatter, args []query.Expr) (string, error)

func defaultFuncs() map[string]funcHandler {
	m := map[string]funcHandler{
		query.FuncIndexOf:    indexOf,
		query.FuncText:       textSearch,
		query.FuncRegex:      regex,
		query.FuncConcat:     concat,
		query.FuncSubstring:  substring,
		query.FuncLength:     unary("LENGTH"),
		query.FuncCeiling:    unary("CEIL"),
		query.FuncStartsWith: like("", "%"),
		query.FuncEndsWith:   like("%", ""),
		query.FuncContains:   like("%", "%"),
		query.FuncDay:        datePart("%d"),
		query.FuncMonth:      datePart("%m"),
		query.FuncYear:       datePart("%Y"),
		query.FuncHour:       datePart("%H"),
		query.FuncMinute:     datePart("%M"),
		query.FuncSecond:     datePart("%S"),
		query.FuncDate:       unary("date"),
		query.FuncCount:      count,
		query.FuncMin:        unary("MIN"),
		query.FuncMax:        unary("MAX"),
		query.FuncSum:        unary("SUM"),
		query.FuncAvg:        unary("AVG"),
	}
	m["substr"] = substring
	m["dayofmonth"] = m[query.FuncDay]
	return m
}

func (f *Formatter) formatFunc(fn query.FuncExpr) (string, error) {
	name := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fn.Name), "$"))
	h, ok := f.funcs[name]
	if !ok {
		return "", core.UnsupportedExpression(fn.Name)
	}
	return h(f, fn.Args)
}

func arity(name string, args []query.Expr, n ...int) error {
	for _, want := range n {
		if len(args) == want {
			return nil
		}
	}
	return &core.FormatError{Reason: fmt.Sprintf("%s: unexpected argument count %d", name, len(args))}
}

func (f *Formatter) formatArgs(args []query.Expr) ([]string, error) {
	out := make([]string, len(args))
	for i, a := range args {
		s, err := f.formatExpr(a, false)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

func unary(sqlName string) funcHandler {
	return func(f *Formatter, args []query.Expr) (string, error) {
		if err := arity(sqlName, args, 1); err != nil {
			return "", err
		}
		p, err := f.formatArgs(args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s(%s)", sqlName, p[0]), nil
	}
}

// indexOf converts INSTR's 1-based position to 0-based; not found yields -1.
func indexOf(f *Formatter, args []query.Expr) (string, error) {
	if err := arity(query.FuncIndexOf, args, 2); err != nil {
		return "", err
	}
	p, err := f.formatArgs(args)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(INSTR(%s,%s)-1)", p[0], p[1]), nil
}

func textSearch(f *Formatter, args []query.Expr) (string, error) {
	s, err := indexOf(f, args)
	if err != nil {
		return "", err
	}
	return s + ">=0", nil
}

func concat(f *Formatter, args []query.Expr) (string, error) {
	if len(args) == 0 {
		return "", &core.FormatError{Reason: "concat: no arguments"}
	}
	p, err := f.formatArgs(args)
	if err != nil {
		return "", err
	}
	for i := range p {
		p[i] = fmt.Sprintf("IFNULL(%s,'')", p[i])
	}
	return "(" + strings.Join(p, " || ") + ")", nil
}

// substring takes a 0-based position; SUBSTR counts from 1.
func substring(f *Formatter, args []query.Expr) (string, error) {
	if err := arity(query.FuncSubstring, args, 2, 3); err != nil {
		return "", err
	}
	p, err := f.formatArgs(args)
	if err != nil {
		return "", err
	}
	pos := p[1] + " + 1"
	if v, ok := args[1].(query.ValueExpr); ok {
		if n, ok := asInt(v.Value); ok {
			pos = fmt.Sprintf("%d", n+1)
		}
	}
	if len(p) == 3 {
		return fmt.Sprintf("SUBSTR(%s,%s,%s)", p[0], pos, p[2]), nil
	}
	return fmt.Sprintf("SUBSTR(%s,%s)", p[0], pos), nil
}

func datePart(specifier string) funcHandler {
	return func(f *Formatter, args []query.Expr) (string, error) {
		if err := arity("strftime("+specifier+")", args, 1); err != nil {
			return "", err
		}
		p, err := f.formatArgs(args)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("CAST(strftime('%s', %s) AS INTEGER)", specifier, p[0]), nil
	}
}

func count(f *Formatter, args []query.Expr) (string, error) {
	if len(args) == 0 {
		return "COUNT(*)", nil
	}
	p, err := f.formatArgs(args)
	if err != nil {
		return "", err
	}
	return "COUNT(" + strings.Join(p, ", ") + ")", nil
}

// like builds the two-argument like(pattern, subject) call. A literal search
// string is escaped in place and wrapped with the wildcard padding; the
// padding itself is never escaped. Any other expression is concatenated with
// the padding at query time.
func like(prefix, suffix string) funcHandler {
	return func(f *Formatter, args []query.Expr) (string, error) {
		if err := arity("like", args, 2); err != nil {
			return "", err
		}
		subject, err := f.formatExpr(args[0], false)
		if err != nil {
			return "", err
		}
		pattern, err := f.likePattern(args[1], prefix, suffix)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("LIKE(%s,%s)", pattern, subject), nil
	}
}

func (f *Formatter) likePattern(arg query.Expr, prefix, suffix string) (string, error) {
	if v, ok := arg.(query.ValueExpr); ok {
		if s, ok := v.Value.(string); ok {
			esc, err := f.Escape(s, true)
			if err != nil {
				return "", err
			}
			return "'" + prefix + esc + suffix + "'", nil
		}
	}
	s, err := f.formatExpr(arg, false)
	if err != nil {
		return "", err
	}
	if prefix != "" {
		s = "'" + prefix + "' || " + s
	}
	if suffix != "" {
		s = s + " || '" + suffix + "'"
	}
	return s, nil
}

// regex approximates a regular expression with LIKE: a leading ^ anchors the
// match to the start, a trailing $ to the end, and an unanchored side is
// padded with %. Character classes, alternation and quantifiers are not
// interpreted.
func regex(f *Formatter, args []query.Expr) (string, error) {
	if err := arity(query.FuncRegex, args, 2); err != nil {
		return "", err
	}
	v, ok := args[1].(query.ValueExpr)
	if !ok {
		return "", &core.FormatError{Reason: "regex: pattern must be a literal string"}
	}
	pattern, ok := v.Value.(string)
	if !ok {
		return "", &core.FormatError{Reason: fmt.Sprintf("regex: pattern must be a string, got %T", v.Value)}
	}
	prefix, suffix := "%", "%"
	if strings.HasPrefix(pattern, "^") {
		pattern = pattern[1:]
		prefix = ""
	}
	if strings.HasSuffix(pattern, "$") {
		pattern = pattern[:len(pattern)-1]
		suffix = ""
	}
	subject, err := f.formatExpr(args[0], false)
	if err != nil {
		return "", err
	}
	p, err := f.likePattern(query.Value(pattern), prefix, suffix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("LIKE(%s,%s)", p, subject), nil
}

func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	}
	return 0, false
}
