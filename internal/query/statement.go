package query

// Statement is one of Select, Insert, Update, or Delete.
type Statement interface {
	statement()
	// Target returns the table the statement operates on.
	Target() string
}

// Order is one ORDER BY term.
type Order struct {
	Expr Expr
	Desc bool
}

// Select reads rows from a table or view. Filter is the WHERE predicate.
type Select struct {
	Table    string
	Fields   []Expr
	Filter   Expr
	GroupBy  []Expr
	OrderBy  []Order
	Limit    int
	Offset   int
	Distinct bool
}

// Assignment pairs a column with the value written to it.
type Assignment struct {
	Column string
	Value  Expr
}

// Insert writes one row.
type Insert struct {
	Table  string
	Values []Assignment
}

// Update modifies the rows matching Filter.
type Update struct {
	Table  string
	Values []Assignment
	Filter Expr
}

// Delete removes the rows matching Filter.
type Delete struct {
	Table  string
	Filter Expr
}

func (*Select) statement() {}
func (*Insert) statement() {}
func (*Update) statement() {}
func (*Delete) statement() {}

func (s *Select) Target() string { return s.Table }
func (s *Insert) Target() string { return s.Table }
func (s *Update) Target() string { return s.Table }
func (s *Delete) Target() string { return s.Table }

// From starts a select over the given table.
func From(table string) *Select {
	return &Select{Table: table}
}

// Select appends to the field list. An empty list selects every column.
func (s *Select) Select(fields ...Expr) *Select {
	s.Fields = append(s.Fields, fields...)
	return s
}

// Columns appends plain field references to the field list.
func (s *Select) Columns(names ...string) *Select {
	for _, n := range names {
		s.Fields = append(s.Fields, Field(n))
	}
	return s
}

// Where sets the filter; repeated calls are joined with AND.
func (s *Select) Where(pred Expr) *Select {
	s.Filter = and(s.Filter, pred)
	return s
}

// GroupByFields appends grouping terms.
func (s *Select) GroupByFields(names ...string) *Select {
	for _, n := range names {
		s.GroupBy = append(s.GroupBy, Field(n))
	}
	return s
}

// OrderByAsc appends an ascending sort on the named field.
func (s *Select) OrderByAsc(name string) *Select {
	s.OrderBy = append(s.OrderBy, Order{Expr: Field(name)})
	return s
}

// OrderByDesc appends a descending sort on the named field.
func (s *Select) OrderByDesc(name string) *Select {
	s.OrderBy = append(s.OrderBy, Order{Expr: Field(name), Desc: true})
	return s
}

// Take limits the number of rows returned.
func (s *Select) Take(n int) *Select {
	s.Limit = n
	return s
}

// Skip skips the first n rows.
func (s *Select) Skip(n int) *Select {
	s.Offset = n
	return s
}

// InsertInto starts an insert into the given table.
func InsertInto(table string) *Insert {
	return &Insert{Table: table}
}

// Set adds a column value to the insert.
func (i *Insert) Set(column string, v any) *Insert {
	i.Values = append(i.Values, Assignment{Column: column, Value: valueOrExpr(v)})
	return i
}

// UpdateTable starts an update of the given table.
func UpdateTable(table string) *Update {
	return &Update{Table: table}
}

// Set adds an assignment to the update.
func (u *Update) Set(column string, v any) *Update {
	u.Values = append(u.Values, Assignment{Column: column, Value: valueOrExpr(v)})
	return u
}

// Where sets the filter; repeated calls are joined with AND.
func (u *Update) Where(pred Expr) *Update {
	u.Filter = and(u.Filter, pred)
	return u
}

// DeleteFrom starts a delete from the given table.
func DeleteFrom(table string) *Delete {
	return &Delete{Table: table}
}

// Where sets the filter; repeated calls are joined with AND.
func (d *Delete) Where(pred Expr) *Delete {
	d.Filter = and(d.Filter, pred)
	return d
}

func and(cur, next Expr) Expr {
	if cur == nil {
		return next
	}
	return And(cur, next)
}

func valueOrExpr(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Value(v)
}
