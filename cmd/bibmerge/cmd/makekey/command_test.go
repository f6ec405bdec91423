package makekey

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/pkg/bibliography"
	"github.com/agentstation/bibmerge/pkg/errors"
	"github.com/agentstation/bibmerge/pkg/formats"
)

const msnYAML = `- ID: MR1
  author: Smith, John A. and Doe, Jane
  year: "1999"
  title: The Widget Problem.
- ID: MR2
  title: Untitled Notes
`

func run(t *testing.T, args ...string) ([]bibliography.Record, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "msn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(msnYAML), 0o600))

	cmd := NewCommand(&application.Mock{})
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{path, "-t", "json"}, args...))
	require.NoError(t, cmd.Execute())

	records, err := formats.Load(&stdout, formats.JSON)
	require.NoError(t, err)
	return records, stderr.String()
}

func TestMakeKeyCommand(t *testing.T) {
	records, _ := run(t, "-k", "normauthor", "-k", "year", "-k", "normtitle")
	require.Len(t, records, 2)

	assert.Equal(t, "doe,j;smith,j|1999|widget problem", records[0]["mergekey"])
	assert.Equal(t, "||untitled notes", records[1]["mergekey"])
	assert.NotContains(t, records[0], "normauthor")
	assert.NotContains(t, records[0], "normtitle")
	assert.Equal(t, "The Widget Problem.", records[0]["title"])
}

func TestMakeKeyCommandDefaults(t *testing.T) {
	records, _ := run(t, "--keep-norm")
	require.Len(t, records, 2)

	assert.Equal(t, "doe,j;smith,j|1999|widget problem", records[0]["mergekey"])
	assert.Equal(t, "doe,j;smith,j", records[0]["normauthor"])
	assert.NotContains(t, records[1], "normauthor")
	assert.Equal(t, "untitled notes", records[1]["normtitle"])
}

func TestMakeKeyCommandStats(t *testing.T) {
	_, stderr := run(t, "-k", "ID", "-k", "year", "--stats")
	assert.Contains(t, stderr, "Missing year")
}

func TestMakeKeyCommandReservedPrefix(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	assert.Contains(t, cmd.Long, "normalized_by")

	dir := t.TempDir()
	path := filepath.Join(dir, "msn.yaml")
	require.NoError(t, os.WriteFile(path, []byte(msnYAML), 0o600))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{path, "-t", "json", "-k", "normalized_by"})
	assert.True(t, errors.IsInvalidSelector(cmd.Execute()))
}
