package sqlite

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"smlite/internal/core"
)

// dateLayout renders temporal literals with millisecond precision and a
// zero-padded ±HH:MM offset.
const dateLayout = "2006-01-02 15:04:05.000-07:00"

// Formatter renders literals, identifiers and query statements as SQLite SQL.
type Formatter struct {
	funcs map[string]funcHandler
}

// NewFormatter initializes a formatter with the portable function set.
func NewFormatter() *Formatter {
	return &Formatter{funcs: defaultFuncs()}
}

// QuoteIdentifier quotes each dot-separated segment with backticks. A bare
// "*" segment is left as is so "t.*" stays usable in field lists.
func (f *Formatter) QuoteIdentifier(name string) string {
	parts := strings.Split(strings.TrimSpace(name), ".")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "*" {
			parts[i] = p
			continue
		}
		parts[i] = "`" + strings.ReplaceAll(p, "`", "``") + "`"
	}
	return strings.Join(parts, ".")
}

// Escape renders a Go value as a SQL literal. When unquoted is set, string
// values are escaped but not wrapped in quotes, which is what LIKE pattern
// construction needs.
func (f *Formatter) Escape(value any, unquoted bool) (string, error) {
	switch v := value.(type) {
	case nil:
		return "NULL", nil
	case bool:
		if v {
			return "1", nil
		}
		return "0", nil
	case time.Time:
		return quote(v.Format(dateLayout), unquoted), nil
	case *time.Time:
		if v == nil {
			return "NULL", nil
		}
		return quote(v.Format(dateLayout), unquoted), nil
	case string:
		return quote(escapeString(v), unquoted), nil
	case []byte:
		if v == nil {
			return "NULL", nil
		}
		return "X'" + strings.ToUpper(hex.EncodeToString(v)) + "'", nil
	case uuid.UUID:
		return quote(v.String(), unquoted), nil
	case decimal.Decimal:
		return v.String(), nil
	case int:
		return strconv.FormatInt(int64(v), 10), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float32:
		return formatFloat(float64(v), 32)
	case float64:
		return formatFloat(v, 64)
	case fmt.Stringer:
		return quote(escapeString(v.String()), unquoted), nil
	default:
		return "", &core.FormatError{Reason: fmt.Sprintf("cannot escape value of type %T", value)}
	}
}

func formatFloat(v float64, bits int) (string, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "", &core.FormatError{Reason: fmt.Sprintf("non-finite number %v", v)}
	}
	return strconv.FormatFloat(v, 'g', -1, bits), nil
}

func quote(s string, unquoted bool) string {
	if unquoted {
		return s
	}
	return "'" + s + "'"
}

// escapeString applies the generic backslash escaping and then normalizes the
// result for SQLite, which only understands doubled single quotes. The
// normalization is a single left-to-right pass, so a sequence produced by the
// first step is rewritten exactly once.
//
// NUL has no SQLite literal form and stays as the two characters `\0`; bind
// such values as parameters instead.
func escapeString(s string) string {
	return normalizeEscapes(baseEscape(s))
}

func baseEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + len(s)/10)
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func normalizeEscapes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case '\'':
			b.WriteString("''")
		case '"':
			b.WriteByte('"')
		case '\\':
			b.WriteByte('\\')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'b':
			b.WriteByte('\b')
		case 'Z':
			b.WriteByte('\x1a')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
