// Package toml provides a parser for smlite migration files.
// A file declares the delta for one table under [migration], with the
// fields to add, change and remove as arrays of tables:
//
//	[migration]
//	applies_to = "Person"
//	version    = "1.0"
//
//	[[migration.add]]
//	name    = "id"
//	type    = "Counter"
//	primary = true
package toml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"smlite/internal/core"
)

// migrationFile is the top-level TOML document.
type migrationFile struct {
	Migration *tomlMigration `toml:"migration"`
}

// tomlMigration maps [migration].
type tomlMigration struct {
	AppliesTo   string      `toml:"applies_to"`
	Model       string      `toml:"model"`
	Version     string      `toml:"version"`
	Description string      `toml:"description"`
	Add         []tomlField `toml:"add"`
	Change      []tomlField `toml:"change"`
	Remove      []tomlField `toml:"remove"`
}

// Parser reads smlite TOML migration files.
type Parser struct{}

// NewParser creates a new TOML migration parser.
func NewParser() *Parser {
	return &Parser{}
}

// ParseFile opens the file at the given path and parses it as a migration.
func (p *Parser) ParseFile(path string) (*core.MigrationSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("toml: open file %q: %w", path, err)
	}
	defer f.Close()

	return p.Parse(f)
}

// Parse reads TOML content from r and returns the migration it declares.
// Unknown keys are an error.
func (p *Parser) Parse(r io.Reader) (*core.MigrationSpec, error) {
	var mf migrationFile
	md, err := toml.NewDecoder(r).Decode(&mf)
	if err != nil {
		return nil, fmt.Errorf("toml: decode error: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("toml: unknown keys: %s", strings.Join(keys, ", "))
	}
	if mf.Migration == nil {
		return nil, fmt.Errorf("toml: missing [migration] table")
	}

	return convert(mf.Migration)
}

func convert(tm *tomlMigration) (*core.MigrationSpec, error) {
	spec := &core.MigrationSpec{
		AppliesTo:   strings.TrimSpace(tm.AppliesTo),
		Model:       tm.Model,
		Version:     strings.TrimSpace(tm.Version),
		Description: tm.Description,
	}

	lists := []struct {
		section  string
		in       []tomlField
		out      *[]core.FieldDescriptor
		needType bool
	}{
		{"add", tm.Add, &spec.Add, true},
		{"change", tm.Change, &spec.Change, true},
		{"remove", tm.Remove, &spec.Remove, false},
	}
	for _, l := range lists {
		for i := range l.in {
			f, err := convertField(&l.in[i], l.needType)
			if err != nil {
				return nil, fmt.Errorf("toml: %s[%d]: %w", l.section, i, err)
			}
			*l.out = append(*l.out, f)
		}
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("toml: %w", err)
	}
	return spec, nil
}
