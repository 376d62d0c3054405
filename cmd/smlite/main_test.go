package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smlite/internal/core"
)

const personMigration = `
[migration]
applies_to = "Person"
version    = "1.0"

[[migration.add]]
name    = "id"
type    = "Counter"
primary = true

[[migration.add]]
name     = "email"
type     = "Text"
size     = 254
nullable = false
`

// workspace moves into a fresh directory holding the migration file and
// returns the database path to use.
func workspace(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "person.toml"), []byte(personMigration), 0o600))
	return filepath.Join(dir, "test.db")
}

func run(t *testing.T, db string, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append([]string{"--database", db}, args...))
	err := cmd.Execute()
	return stdout.String(), err
}

func TestMigrateCommand(t *testing.T) {
	db := workspace(t)

	out, err := run(t, db, "migrate", "person.toml")
	require.NoError(t, err)
	assert.Contains(t, out, "-- Person: CREATED (version 1.0)")
	assert.Contains(t, out, "CREATE TABLE `Person`")

	out, err = run(t, db, "--format", "summary", "migrate", "person.toml")
	require.NoError(t, err)
	assert.Contains(t, out, "= Person (already applied, version 1.0)")

	out, err = run(t, db, "version", "Person")
	require.NoError(t, err)
	assert.Equal(t, "1.0\n", out)

	out, err = run(t, db, "-f", "summary", "columns", "Person")
	require.NoError(t, err)
	assert.Equal(t, "Person: 2 column(s): id*, email\n", out)
}

func TestMigrateCommandDryRun(t *testing.T) {
	db := workspace(t)

	out, err := run(t, db, "migrate", "--dry-run", "person.toml")
	require.NoError(t, err)
	assert.Contains(t, out, "[dry run]")

	out, err = run(t, db, "version", "Person")
	require.NoError(t, err)
	assert.Equal(t, "0.0\n", out)
}

const emailToInteger = `
[migration]
applies_to = "Person"
version    = "1.1"

[[migration.change]]
name = "email"
type = "Integer"
`

func TestMigrateCommandShowsRefusedRewrite(t *testing.T) {
	db := workspace(t)
	require.NoError(t, os.WriteFile("retype.toml", []byte(emailToInteger), 0o600))

	_, err := run(t, db, "migrate", "person.toml")
	require.NoError(t, err)

	out, err := run(t, db, "migrate", "retype.toml")
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrUnsupportedMigration)
	assert.Contains(t, out, "-- Person: EXISTS (version 1.0)")
	assert.Contains(t, out, "-- UNSUPPORTED (full table rewrite required)")
	assert.Contains(t, out, `-- - change "email"`)

	out, err = run(t, db, "--format", "summary", "migrate", "--dry-run", "retype.toml")
	require.Error(t, err)
	assert.Contains(t, out, "1 unsupported, dry run")

	out, err = run(t, db, "version", "Person")
	require.NoError(t, err)
	assert.Equal(t, "1.0\n", out)
}

func TestMigrateCommandErrors(t *testing.T) {
	db := workspace(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{name: "missing_file", args: []string{"migrate", "nope.toml"}, wantErr: "nope.toml"},
		{name: "unsupported_extension", args: []string{"migrate", "person.yaml"}, wantErr: "unsupported file format"},
		{name: "no_args", args: []string{"migrate"}, wantErr: "requires at least 1 arg"},
		{name: "bad_format", args: []string{"--format", "xml", "migrate", "person.toml"}, wantErr: "unsupported format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, db, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExecAndNextValueCommands(t *testing.T) {
	db := workspace(t)

	_, err := run(t, db, "migrate", "person.toml")
	require.NoError(t, err)

	out, err := run(t, db, "exec", "INSERT INTO `Person` (`email`) VALUES ('ann@example.com')")
	require.NoError(t, err)
	assert.Contains(t, out, "1 row(s) affected, last insert id 1")

	script := filepath.Join(filepath.Dir(db), "seed.sql")
	require.NoError(t, os.WriteFile(script, []byte(
		"-- seed\nINSERT INTO `Person` (`email`) VALUES ('bob@example.com');\nSELECT `email` FROM `Person` ORDER BY `id`;\n"), 0o600))
	out, err = run(t, db, "exec", "--file", script)
	require.NoError(t, err)
	assert.Contains(t, out, "ann@example.com")
	assert.Contains(t, out, "bob@example.com")

	out, err = run(t, db, "-f", "json", "exec", "SELECT COUNT(*) AS n FROM `Person`")
	require.NoError(t, err)
	assert.Contains(t, out, `"n": 2`)

	out, err = run(t, db, "next-value", "Person", "id")
	require.NoError(t, err)
	assert.Equal(t, "3\n", out)
	out, err = run(t, db, "next-value", "Person", "id")
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)

	_, err = run(t, db, "exec")
	assert.ErrorContains(t, err, "no SQL given")
	_, err = run(t, db, "exec", "--file", script, "SELECT 1")
	assert.ErrorContains(t, err, "not both")
}

func TestExecScriptIsAtomic(t *testing.T) {
	db := workspace(t)

	_, err := run(t, db, "migrate", "person.toml")
	require.NoError(t, err)

	script := filepath.Join(filepath.Dir(db), "broken.sql")
	require.NoError(t, os.WriteFile(script, []byte(
		"INSERT INTO `Person` (`email`) VALUES ('a@b.c');\nINSERT INTO `Nobody` VALUES (1);\n"), 0o600))
	_, err = run(t, db, "exec", "--file", script)
	require.Error(t, err)

	out, err := run(t, db, "-f", "summary", "exec", "SELECT * FROM `Person`")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "0 row(s)"), out)
}

func TestViewCommands(t *testing.T) {
	db := workspace(t)

	_, err := run(t, db, "migrate", "person.toml")
	require.NoError(t, err)

	out, err := run(t, db, "view", "create", "Emails", "Person", "email")
	require.NoError(t, err)
	assert.Equal(t, "view Emails created\n", out)

	out, err = run(t, db, "-f", "summary", "exec", "SELECT * FROM `Emails`")
	require.NoError(t, err)
	assert.Equal(t, "0 row(s), 1 column(s)\n", out)

	out, err = run(t, db, "view", "drop", "Emails")
	require.NoError(t, err)
	assert.Equal(t, "view Emails dropped\n", out)

	_, err = run(t, db, "exec", "SELECT * FROM `Emails`")
	assert.Error(t, err)
}
