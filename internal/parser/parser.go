// Package parser reads migration files in the supported formats (TOML and
// JSON) and converts them to core.MigrationSpec values.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"smlite/internal/core"
	"smlite/internal/parser/toml"
)

type Parser interface {
	Parse(r io.Reader) (*core.MigrationSpec, error)
	ParseFile(path string) (*core.MigrationSpec, error)
}

// ParseFile picks a parser by file extension.
func ParseFile(path string) (*core.MigrationSpec, error) {
	p, err := ForPath(path)
	if err != nil {
		return nil, err
	}
	return p.ParseFile(path)
}

// ForPath returns the parser for the file's extension.
func ForPath(path string) (Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.NewParser(), nil
	case ".json":
		return jsonParser{}, nil
	default:
		return nil, &UnsupportedFormatError{Path: path}
	}
}

type UnsupportedFormatError struct {
	Path string
}

func (e *UnsupportedFormatError) Error() string {
	return "unsupported file format: " + e.Path
}

// jsonParser decodes the JSON form of core.MigrationSpec.
type jsonParser struct{}

func (jsonParser) ParseFile(path string) (*core.MigrationSpec, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("json: open file %q: %w", path, err)
	}
	defer f.Close()

	return jsonParser{}.Parse(f)
}

func (jsonParser) Parse(r io.Reader) (*core.MigrationSpec, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var spec core.MigrationSpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("json: decode error: %w", err)
	}
	spec.Updated = false

	for _, list := range [][]core.FieldDescriptor{spec.Add, spec.Change} {
		for i := range list {
			f := &list[i]
			if f.OneToMany && f.Type == "" {
				continue
			}
			t, err := core.ParseLogicalType(string(f.Type))
			if err != nil {
				return nil, fmt.Errorf("json: field %q: %w", f.Name, err)
			}
			f.Type = t
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("json: %w", err)
	}
	return &spec, nil
}
