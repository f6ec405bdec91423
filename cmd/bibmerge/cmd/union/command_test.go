package union

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/bibmerge/cmd/application"
	"github.com/agentstation/bibmerge/pkg/formats"
)

func TestUnionCommand(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	out := filepath.Join(dir, "all.bib")
	require.NoError(t, os.WriteFile(a, []byte("- ID: x\n  title: Left Title\n- ID: y\n  title: Only Left\n"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("- ID: z\n  title: Only Right\n- ID: x\n  title: Right Title\n  pages: 1--10\n"), 0o600))

	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{a, b, "-o", out})
	require.NoError(t, cmd.Execute())

	ds, err := formats.LoadFile(out, "")
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())

	assert.Equal(t, "x", ds.Records[0].ID())
	assert.Equal(t, "Left Title", ds.Records[0]["title"])
	assert.Equal(t, "1--10", ds.Records[0]["pages"])
	assert.Equal(t, "y", ds.Records[1].ID())
	assert.Equal(t, "z", ds.Records[2].ID())
}

func TestUnionCommandRequiresFiles(t *testing.T) {
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})
	assert.Error(t, cmd.Execute())
}
