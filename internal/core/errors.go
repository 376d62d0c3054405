package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the adapter's failure taxonomy. Use errors.Is against
// these; the typed errors below carry the diagnostic context.
var (
	ErrConnection            = errors.New("connection error")
	ErrFormat                = errors.New("format error")
	ErrUnsupportedExpression = errors.New("unsupported expression")
	ErrUnsupportedMigration  = errors.New("unsupported migration")
	ErrEngineExecution       = errors.New("engine execution error")
)

// ConnectionError is returned when the engine cannot be opened or used.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection %q: %v", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// FormatError is a malformed or unsupported query/expression.
type FormatError struct {
	Reason string
	// Func is set when an expression referenced an unknown function.
	Func string
}

func (e *FormatError) Error() string {
	if e.Func != "" {
		return fmt.Sprintf("format: unsupported expression function %q", e.Func)
	}
	return "format: " + e.Reason
}

func (e *FormatError) Is(target error) bool {
	if target == ErrFormat {
		return true
	}
	return target == ErrUnsupportedExpression && e.Func != ""
}

// UnsupportedExpression returns the FormatError for an unknown function name.
func UnsupportedExpression(name string) error {
	return &FormatError{Func: name}
}

// UnsupportedMigrationError is returned when a diff needs a full table rewrite.
type UnsupportedMigrationError struct {
	Table   string
	Reasons []string
}

func (e *UnsupportedMigrationError) Error() string {
	msg := fmt.Sprintf("migrate %q: full table rewrite required", e.Table)
	if len(e.Reasons) > 0 {
		msg += " (" + strings.Join(e.Reasons, "; ") + ")"
	}
	return msg
}

func (e *UnsupportedMigrationError) Is(target error) bool { return target == ErrUnsupportedMigration }

// EngineError wraps an engine rejection together with the failing statement.
type EngineError struct {
	Statement string
	Err       error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("execute failed: %v\n  Statement: %s", e.Err, truncateSQL(e.Statement))
}

func (e *EngineError) Unwrap() error { return e.Err }

func (e *EngineError) Is(target error) bool { return target == ErrEngineExecution }

// MigrationError names the pipeline stage a reconciliation failed in.
type MigrationError struct {
	Stage string
	Table string
	Err   error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrate %q: %s: %v", e.Table, e.Stage, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

func truncateSQL(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if len(stmt) > 120 {
		return stmt[:117] + "..."
	}
	return stmt
}
