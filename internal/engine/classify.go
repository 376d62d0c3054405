package engine

import (
	"strings"
)

// StatementKind tells the connection which execution path a statement takes.
type StatementKind string

const (
	KindRead      StatementKind = "READ"
	KindMutation  StatementKind = "MUTATION"
	KindDDL       StatementKind = "DDL"
	KindTxControl StatementKind = "TX"
)

var readPrefixes = []string{"SELECT", "PRAGMA", "WITH", "EXPLAIN", "VALUES"}

var ddlPrefixes = []string{"CREATE ", "DROP ", "ALTER ", "REINDEX", "VACUUM", "ANALYZE"}

var txPrefixes = []string{"BEGIN", "COMMIT", "END", "ROLLBACK", "SAVEPOINT", "RELEASE"}

// Classify inspects the leading keyword of a statement. Leading comments and
// whitespace are skipped. Unknown statements are treated as mutations.
func Classify(stmt string) StatementKind {
	upper := strings.ToUpper(stripLeadingComments(stmt))

	for _, p := range readPrefixes {
		if hasKeyword(upper, p) {
			return KindRead
		}
	}
	for _, p := range txPrefixes {
		if hasKeyword(upper, p) {
			return KindTxControl
		}
	}
	for _, p := range ddlPrefixes {
		if strings.HasPrefix(upper, p) {
			return KindDDL
		}
	}
	return KindMutation
}

// IsRead reports whether the statement returns rows.
func IsRead(stmt string) bool {
	return Classify(stmt) == KindRead
}

func hasKeyword(s, kw string) bool {
	if !strings.HasPrefix(s, kw) {
		return false
	}
	if len(s) == len(kw) {
		return true
	}
	c := s[len(kw)]
	return !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_')
}

func stripLeadingComments(s string) string {
	for {
		s = strings.TrimSpace(s)
		switch {
		case strings.HasPrefix(s, "--"):
			i := strings.IndexByte(s, '\n')
			if i < 0 {
				return ""
			}
			s = s[i+1:]
		case strings.HasPrefix(s, "/*"):
			i := strings.Index(s, "*/")
			if i < 0 {
				return ""
			}
			s = s[i+2:]
		default:
			return s
		}
	}
}

// SplitStatements splits a script into statements on lines ending with ";".
// Comment-only and blank lines are dropped; a trailing statement without a
// terminator is kept.
func SplitStatements(content string) []string {
	var statements []string
	var current strings.Builder
	for line := range strings.SplitSeq(strings.TrimSpace(content), "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "--") || trimmed == "" {
			continue
		}

		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			if stmt := strings.TrimSpace(current.String()); stmt != "" {
				statements = append(statements, strings.TrimSuffix(stmt, ";"))
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, strings.TrimSuffix(remaining, ";"))
	}
	return statements
}
