package validate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/pkg/collisions"
	"github.com/agentstation/bibmerge/pkg/errors"
)

const refs = `[
  {"ID": "a", "author": "Smith, J", "year": "1999", "title": "Widgets"},
  {"ID": "b", "author": "Doe, Jane", "year": "2001", "title": "Gadgets"},
  {"ID": "c", "author": "J. Smith", "year": "1999", "title": "The Widgets"}
]`

func run(t *testing.T, format string, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand(&application.Mock{
		OutputFormatFunc: func() string { return format },
	})
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func TestValidateCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.json")
	require.NoError(t, os.WriteFile(path, []byte(refs), 0o600))

	out, err := run(t, "json", path)
	require.NoError(t, err)

	var reports []collisions.Report
	require.NoError(t, json.Unmarshal([]byte(out), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "refs", reports[0].Dataset)
	assert.Equal(t, 3, reports[0].Records)
	require.Len(t, reports[0].Collisions, 1)
	assert.Equal(t, "smith,j|1999|widgets", reports[0].Collisions[0].Key)
	assert.Equal(t, []int{0, 2}, reports[0].Collisions[0].Indexes)
}

func TestValidateCommandTable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.json")
	require.NoError(t, os.WriteFile(path, []byte(refs), 0o600))

	out, err := run(t, "table", path, "-k", "year")
	require.NoError(t, err)
	assert.Contains(t, out, "1999")
	assert.Contains(t, out, "a, c")
}

func TestValidateCommandStrict(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "refs.json")
	report := filepath.Join(dir, "report.json")
	require.NoError(t, os.WriteFile(path, []byte(refs), 0o600))

	_, err := run(t, "table", path, "--strict", "--report", report)
	require.Error(t, err)
	assert.True(t, errors.IsNonUniqueKeys(err))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var reports []collisions.Report
	require.NoError(t, json.Unmarshal(data, &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, []string{"a", "c"}, reports[0].Collisions[0].IDs())

	// Unique keys pass strict validation.
	_, err = run(t, "table", path, "--strict", "-k", "ID")
	assert.NoError(t, err)
}

func TestValidateCommandErrors(t *testing.T) {
	_, err := run(t, "table", filepath.Join(t.TempDir(), "refs.txt"))
	assert.True(t, errors.IsUnknownFormat(err))

	_, err = run(t, "table", "-f", "xml", "refs.json")
	assert.True(t, errors.IsUnknownFormat(err))
}
