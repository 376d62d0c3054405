// Package query contains the dialect-agnostic query model the adapter accepts:
// field references, literal values, portable functions, predicates, and the
// four statement shapes (select, insert, update, delete). It only describes
// queries; a dialect formatter turns them into SQL text.
package query

// Expr is any node that can appear in a field list, an assignment, or a predicate.
type Expr interface {
	expr()
}

// FieldExpr references a column, optionally qualified ("table.column").
type FieldExpr struct {
	Name  string
	Alias string
}

// ValueExpr is a literal value rendered inline by the formatter.
type ValueExpr struct {
	Value any
}

// FuncExpr is a call to one of the portable expression functions
// (indexof, substring, year, max, ...). Names are matched by the dialect.
type FuncExpr struct {
	Name  string
	Args  []Expr
	Alias string
}

// Op is a binary comparison operator.
type Op string

const (
	OpEQ  Op = "="
	OpNEQ Op = "<>"
	OpLT  Op = "<"
	OpLTE Op = "<="
	OpGT  Op = ">"
	OpGTE Op = ">="
)

// CompareExpr compares two expressions.
type CompareExpr struct {
	Left  Expr
	Op    Op
	Right Expr
}

// LogicalExpr joins predicates with AND / OR.
type LogicalExpr struct {
	Op    string
	Preds []Expr
}

// NotExpr negates a predicate.
type NotExpr struct {
	Pred Expr
}

// NullExpr tests for NULL (or NOT NULL when Negate is set).
type NullExpr struct {
	Expr   Expr
	Negate bool
}

// InExpr tests membership in a list of values.
type InExpr struct {
	Expr   Expr
	Values []Expr
	Negate bool
}

func (FieldExpr) expr()   {}
func (ValueExpr) expr()   {}
func (FuncExpr) expr()    {}
func (CompareExpr) expr() {}
func (LogicalExpr) expr() {}
func (NotExpr) expr()     {}
func (NullExpr) expr()    {}
func (InExpr) expr()      {}

// Field returns a reference to the named column.
func Field(name string) FieldExpr { return FieldExpr{Name: name} }

// As returns a copy of the field with an output alias.
func (f FieldExpr) As(alias string) FieldExpr {
	f.Alias = alias
	return f
}

// Value wraps a Go value as a literal.
func Value(v any) ValueExpr { return ValueExpr{Value: v} }

// Func builds a call to a portable function.
func Func(name string, args ...Expr) FuncExpr {
	return FuncExpr{Name: name, Args: args}
}

// As returns a copy of the call with an output alias.
func (f FuncExpr) As(alias string) FuncExpr {
	f.Alias = alias
	return f
}

// Compare builds a comparison between two expressions.
func Compare(l Expr, op Op, r Expr) CompareExpr {
	return CompareExpr{Left: l, Op: op, Right: r}
}

// EQ compares a field to a literal value.
func EQ(field string, v any) CompareExpr { return Compare(Field(field), OpEQ, Value(v)) }

// NEQ compares a field to a literal value.
func NEQ(field string, v any) CompareExpr { return Compare(Field(field), OpNEQ, Value(v)) }

// LT compares a field to a literal value.
func LT(field string, v any) CompareExpr { return Compare(Field(field), OpLT, Value(v)) }

// LTE compares a field to a literal value.
func LTE(field string, v any) CompareExpr { return Compare(Field(field), OpLTE, Value(v)) }

// GT compares a field to a literal value.
func GT(field string, v any) CompareExpr { return Compare(Field(field), OpGT, Value(v)) }

// GTE compares a field to a literal value.
func GTE(field string, v any) CompareExpr { return Compare(Field(field), OpGTE, Value(v)) }

// IsNull tests a field for NULL.
func IsNull(field string) NullExpr { return NullExpr{Expr: Field(field)} }

// NotNull tests a field for NOT NULL.
func NotNull(field string) NullExpr { return NullExpr{Expr: Field(field), Negate: true} }

// In tests a field against a list of literal values.
func In(field string, vs ...any) InExpr {
	values := make([]Expr, len(vs))
	for i, v := range vs {
		values[i] = Value(v)
	}
	return InExpr{Expr: Field(field), Values: values}
}

// And joins predicates with AND.
func And(preds ...Expr) LogicalExpr { return LogicalExpr{Op: "AND", Preds: preds} }

// Or joins predicates with OR.
func Or(preds ...Expr) LogicalExpr { return LogicalExpr{Op: "OR", Preds: preds} }

// Not negates a predicate.
func Not(pred Expr) NotExpr { return NotExpr{Pred: pred} }
