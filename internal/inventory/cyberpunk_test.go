package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/plox/internal/plugin"
)

func TestCyberpunkSourceLoadSortsCaseInsensitively(t *testing.T) {
	root := t.TempDir()
	modDir := filepath.Join(root, "archive", "pc", "mod")
	scriptDir := filepath.Join(root, "r6", "scripts")
	require.NoError(t, os.MkdirAll(modDir, 0755))
	require.NoError(t, os.MkdirAll(scriptDir, 0755))

	writeFile(t, filepath.Join(modDir, "zeta.archive"), "")
	writeFile(t, filepath.Join(modDir, "Alpha.archive"), "")
	writeFile(t, filepath.Join(scriptDir, "beta.reds"), "")

	src := NewCyberpunkSource(root, nil)
	inv, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"Alpha.archive", "beta.reds", "zeta.archive"}, inv.IDs())
}

func TestCyberpunkManifestWriterWritesOneNamePerLine(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "load_order.txt")
	w := &CyberpunkManifestWriter{ManifestPath: manifest}
	require.NoError(t, w.Write([]plugin.ID{"a.archive", "b.reds"}))

	out, err := os.ReadFile(manifest)
	require.NoError(t, err)
	assert.Equal(t, "a.archive\nb.reds\n", string(out))
}
