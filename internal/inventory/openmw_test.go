package inventory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/plox/internal/plugin"
)

func TestOpenMWSourceLoadPreservesFileOrder(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "openmw.cfg")
	writeFile(t, cfg, "data=\"/games/morrowind/Data Files\"\ncontent=Morrowind.esm\ncontent=Tribunal.esm\nfallback=Weather_Sun:255,255,255\ncontent=MyMod.esp\n")

	src := NewOpenMWSource(cfg, nil)
	inv, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"Morrowind.esm", "Tribunal.esm", "MyMod.esp"}, inv.IDs())

	dirs, err := src.DataDirs()
	require.NoError(t, err)
	assert.Equal(t, []string{"/games/morrowind/Data Files"}, dirs)
}

func TestOpenMWWriterRewritesContentLines(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "openmw.cfg")
	writeFile(t, cfg, "data=\"/x\"\ncontent=A.esp\ncontent=B.esp\nfallback=Foo:1\n")

	w := &OpenMWWriter{CfgPath: cfg}
	require.NoError(t, w.Write([]plugin.ID{"B.esp", "A.esp"}))

	out, err := os.ReadFile(cfg)
	require.NoError(t, err)
	content := string(out)
	assert.Contains(t, content, "data=\"/x\"")
	assert.Contains(t, content, "fallback=Foo:1")

	src := NewOpenMWSource(cfg, nil)
	inv, err := src.Load()
	require.NoError(t, err)
	assert.Equal(t, []plugin.ID{"B.esp", "A.esp"}, inv.IDs())
}
