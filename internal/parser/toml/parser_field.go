package toml

import (
	"errors"
	"fmt"
	"strings"

	"smlite/internal/core"
)

// tomlField maps [[migration.add]], [[migration.change]] and
// [[migration.remove]].
type tomlField struct {
	Name  string `toml:"name"`
	Type  string `toml:"type"`
	Size  uint   `toml:"size"`
	Scale uint   `toml:"scale"`

	// Nullable is left nil when the key is absent, which renders as NULL.
	Nullable  *bool `toml:"nullable"`
	Primary   bool  `toml:"primary"`
	OneToMany bool  `toml:"one_to_many"`
}

// convertField resolves the logical type. Removed fields are matched by name
// only, so their type may be omitted.
func convertField(tf *tomlField, needType bool) (core.FieldDescriptor, error) {
	name := strings.TrimSpace(tf.Name)
	if name == "" {
		return core.FieldDescriptor{}, errors.New("field name is empty")
	}

	f := core.FieldDescriptor{
		Name:      name,
		Size:      tf.Size,
		Scale:     tf.Scale,
		Nullable:  tf.Nullable,
		Primary:   tf.Primary,
		OneToMany: tf.OneToMany,
	}

	switch {
	case strings.TrimSpace(tf.Type) != "":
		t, err := core.ParseLogicalType(tf.Type)
		if err != nil {
			return core.FieldDescriptor{}, fmt.Errorf("field %q: %w", name, err)
		}
		f.Type = t
	case needType && !tf.OneToMany:
		return core.FieldDescriptor{}, fmt.Errorf("field %q: type is empty", name)
	}

	if f.Scale > 0 && f.Size == 0 {
		return core.FieldDescriptor{}, fmt.Errorf("field %q: scale %d given without a size", name, f.Scale)
	}
	return f, nil
}
