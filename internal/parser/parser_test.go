package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smlite/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseFileByExtension(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name: "toml",
			file: "person.toml",
			content: `[migration]
applies_to = "Person"
version = "1.0"

[[migration.add]]
name = "id"
type = "Counter"
primary = true
`,
		},
		{
			name: "json",
			file: "person.JSON",
			content: `{"appliesTo": "Person", "version": "1.0",
  "add": [{"name": "id", "type": "counter", "primary": true}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := ParseFile(writeFile(t, tt.file, tt.content))
			require.NoError(t, err)
			assert.Equal(t, "Person", spec.AppliesTo)
			require.Len(t, spec.Add, 1)
			assert.Equal(t, core.TypeCounter, spec.Add[0].Type)
			assert.True(t, spec.Add[0].Primary)
		})
	}
}

func TestParseFileUnsupportedFormat(t *testing.T) {
	_, err := ParseFile("schema.yaml")
	var target *UnsupportedFormatError
	require.ErrorAs(t, err, &target)
	assert.Equal(t, "schema.yaml", target.Path)
}

func TestJSONParserErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"unknown_key", `{"appliesTo": "t", "version": "1", "colour": "red"}`, "unknown field"},
		{"bad_type", `{"appliesTo": "t", "version": "1", "add": [{"name": "a", "type": "Varchar"}]}`, "unknown logical type"},
		{"no_version", `{"appliesTo": "t"}`, "has no version"},
		{"not_json", `[migration]`, "decode error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(writeFile(t, "m.json", tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestJSONParserIgnoresUpdatedFlag(t *testing.T) {
	spec, err := ParseFile(writeFile(t, "m.json", `{"appliesTo": "t", "version": "1", "updated": true}`))
	require.NoError(t, err)
	assert.False(t, spec.Updated)
}
