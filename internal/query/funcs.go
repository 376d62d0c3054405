package query

// Function names understood by dialect formatters.
const (
	FuncIndexOf    = "indexof"
	FuncText       = "text"
	FuncRegex      = "regex"
	FuncConcat     = "concat"
	FuncSubstring  = "substring"
	FuncLength     = "length"
	FuncCeiling    = "ceiling"
	FuncStartsWith = "startswith"
	FuncEndsWith   = "endswith"
	FuncContains   = "contains"
	FuncDay        = "day"
	FuncMonth      = "month"
	FuncYear       = "year"
	FuncHour       = "hour"
	FuncMinute     = "minute"
	FuncSecond     = "second"
	FuncDate       = "date"
	FuncCount      = "count"
	FuncMin        = "min"
	FuncMax        = "max"
	FuncSum        = "sum"
	FuncAvg        = "avg"
)

// IndexOf returns the 0-based position of substr in s, or -1.
func IndexOf(s, substr Expr) FuncExpr { return Func(FuncIndexOf, s, substr) }

// TextSearch is true when substr occurs anywhere in s.
func TextSearch(s, substr Expr) FuncExpr { return Func(FuncText, s, substr) }

// Regex matches s against a simplified regular expression.
func Regex(s Expr, pattern string) FuncExpr { return Func(FuncRegex, s, Value(pattern)) }

// Concat joins operands; NULL operands count as empty strings.
func Concat(args ...Expr) FuncExpr { return Func(FuncConcat, args...) }

// Substring returns s from the 0-based pos, optionally limited to length.
func Substring(s Expr, pos int, length ...int) FuncExpr {
	args := []Expr{s, Value(pos)}
	if len(length) > 0 {
		args = append(args, Value(length[0]))
	}
	return Func(FuncSubstring, args...)
}

// Length returns the character length of s.
func Length(s Expr) FuncExpr { return Func(FuncLength, s) }

// Ceiling rounds up.
func Ceiling(x Expr) FuncExpr { return Func(FuncCeiling, x) }

// StartsWith matches a literal prefix.
func StartsWith(s Expr, prefix string) FuncExpr { return Func(FuncStartsWith, s, Value(prefix)) }

// EndsWith matches a literal suffix.
func EndsWith(s Expr, suffix string) FuncExpr { return Func(FuncEndsWith, s, Value(suffix)) }

// Contains matches a literal substring.
func Contains(s Expr, substr string) FuncExpr { return Func(FuncContains, s, Value(substr)) }

// Year extracts the year of a temporal value.
func Year(x Expr) FuncExpr { return Func(FuncYear, x) }

// Month extracts the month of a temporal value.
func Month(x Expr) FuncExpr { return Func(FuncMonth, x) }

// Day extracts the day of month of a temporal value.
func Day(x Expr) FuncExpr { return Func(FuncDay, x) }

// Hour extracts the hour of a temporal value.
func Hour(x Expr) FuncExpr { return Func(FuncHour, x) }

// Minute extracts the minute of a temporal value.
func Minute(x Expr) FuncExpr { return Func(FuncMinute, x) }

// Second extracts the second of a temporal value.
func Second(x Expr) FuncExpr { return Func(FuncSecond, x) }

// Date truncates a temporal value to its date part.
func Date(x Expr) FuncExpr { return Func(FuncDate, x) }

// Count counts rows, or non-null values of the given fields.
func Count(args ...Expr) FuncExpr { return Func(FuncCount, args...) }

// Max aggregates the maximum of a field, aliased to the field name.
func Max(field string) FuncExpr { return Func(FuncMax, Field(field)).As(field) }

// Min aggregates the minimum of a field, aliased to the field name.
func Min(field string) FuncExpr { return Func(FuncMin, Field(field)).As(field) }

// Sum aggregates the sum of a field, aliased to the field name.
func Sum(field string) FuncExpr { return Func(FuncSum, Field(field)).As(field) }

// Avg aggregates the average of a field, aliased to the field name.
func Avg(field string) FuncExpr { return Func(FuncAvg, Field(field)).As(field) }
