package inventory

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frederic-klein/plox/internal/plugin"
)

func synthesizeTES3(author, description string) []byte {
	var buf bytes.Buffer
	buf.WriteString("TES3")
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // record size, unused by reader
	buf.Write(make([]byte, 8))                         // flags/unused fields
	buf.WriteString("HEDR")
	binary.Write(&buf, binary.LittleEndian, uint32(300))

	var author32 [32]byte
	copy(author32[:], author)
	var desc256 [256]byte
	copy(desc256[:], description)

	binary.Write(&buf, binary.LittleEndian, float32(1.3))
	binary.Write(&buf, binary.LittleEndian, int32(0))
	buf.Write(author32[:])
	buf.Write(desc256[:])
	binary.Write(&buf, binary.LittleEndian, int32(0))

	return buf.Bytes()
}

func TestHeaderMetadataReaderParsesAuthorAndDescription(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "MyMod.esp")
	require.NoError(t, os.WriteFile(path, synthesizeTES3("Some Author", "A great mod"), 0644))

	r := NewHeaderMetadataReader(dir)
	meta, ok := r.Read(plugin.ID("MyMod.esp"))
	require.True(t, ok)
	assert.True(t, meta.HasAuthor)
	assert.Equal(t, "Some Author", meta.Author)
	assert.True(t, meta.HasDescription)
	assert.Equal(t, "A great mod", meta.Description)
	assert.True(t, meta.HasSize)
	require.True(t, meta.HasVersion)
	assert.Equal(t, "1.3", meta.Version.String())
}

func TestHeaderMetadataReaderNonBethesdaExtensionSkipsParsing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mod.archive")
	require.NoError(t, os.WriteFile(path, []byte("not a header"), 0644))

	r := NewHeaderMetadataReader(dir)
	meta, ok := r.Read(plugin.ID("mod.archive"))
	require.True(t, ok)
	assert.False(t, meta.HasAuthor)
	assert.False(t, meta.HasDescription)
	assert.True(t, meta.HasSize)
}

func TestHeaderMetadataReaderMissingFile(t *testing.T) {
	dir := t.TempDir()
	r := NewHeaderMetadataReader(dir)
	_, ok := r.Read(plugin.ID("nope.esp"))
	assert.False(t, ok)
}
