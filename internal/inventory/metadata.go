package inventory

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/frederic-klein/plox/internal/plugin"
	"github.com/frederic-klein/plox/internal/version"
)

// MetadataReader recovers best-effort Metadata for one plugin. A false ok
// means every optional plugin.Metadata field stays at its zero value; a
// reader must never fail a run over unreadable metadata, falling back to
// a minimal record instead.
type MetadataReader interface {
	Read(id plugin.ID) (plugin.Metadata, bool)
}

// HeaderMetadataReader reads the leading header record TES3/OpenMW
// plugins carry (the Bethesda-format HEDR subrecord: version, author,
// description) directly from disk. Cyberpunk .archive/.reds files carry
// no such record, so for them Read reports ok=true with only the file
// size and modification time filled in. ok=false means the file could
// not be found.
type HeaderMetadataReader struct {
	// Dir is the directory plugin filenames are resolved against.
	Dir string
}

// NewHeaderMetadataReader creates a reader rooted at dir.
func NewHeaderMetadataReader(dir string) *HeaderMetadataReader {
	return &HeaderMetadataReader{Dir: dir}
}

func (r *HeaderMetadataReader) Read(id plugin.ID) (plugin.Metadata, bool) {
	path := filepath.Join(r.Dir, string(id))
	info, err := os.Stat(path)
	if err != nil {
		return plugin.Metadata{}, false
	}

	meta := plugin.Metadata{Size: info.Size(), HasSize: true, ModTime: info.ModTime(), HasModTime: true}

	if !hasBethesdaExtension(id) {
		return meta, true
	}

	f, err := os.Open(path)
	if err != nil {
		return meta, true
	}
	defer f.Close()

	ver, author, desc, ok := readHEDR(f)
	if ok {
		if v, err := version.Parse(strconv.FormatFloat(float64(ver), 'f', -1, 32)); err == nil {
			meta.Version = v
			meta.HasVersion = true
		}
		meta.Author = author
		meta.HasAuthor = author != ""
		meta.Description = desc
		meta.HasDescription = desc != ""
	}
	return meta, true
}

func hasBethesdaExtension(id plugin.ID) bool {
	folded := plugin.Fold(string(id))
	return strings.HasSuffix(folded, ".esp") || strings.HasSuffix(folded, ".esm") ||
		strings.HasSuffix(folded, ".esl") || strings.HasSuffix(folded, ".omwaddon")
}

// readHEDR parses the TES3/TES4-family record header: a 4-byte record
// name (expected "TES3" or "TES4"), a size field, two flag/unused
// fields, then the HEDR subrecord itself, whose payload is
// version(float32) + fileType(int32) + author[32] + description[256] +
// numRecords(int32).
func readHEDR(r io.Reader) (fileVersion float32, author, description string, ok bool) {
	var recordName [4]byte
	if _, err := io.ReadFull(r, recordName[:]); err != nil {
		return 0, "", "", false
	}
	if string(recordName[:]) != "TES3" && string(recordName[:]) != "TES4" {
		return 0, "", "", false
	}

	// record size, flags, flags
	var skip [12]byte
	if _, err := io.ReadFull(r, skip[:]); err != nil {
		return 0, "", "", false
	}

	var subName [4]byte
	if _, err := io.ReadFull(r, subName[:]); err != nil {
		return 0, "", "", false
	}
	if string(subName[:]) != "HEDR" {
		return 0, "", "", false
	}

	var subSize uint32
	if err := binary.Read(r, binary.LittleEndian, &subSize); err != nil {
		return 0, "", "", false
	}

	payload := make([]byte, subSize)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, "", "", false
	}
	if len(payload) < 4+4+32+256 {
		return 0, "", "", false
	}

	var ver float32
	if err := binary.Read(bytes.NewReader(payload[0:4]), binary.LittleEndian, &ver); err != nil {
		return 0, "", "", false
	}

	authorBytes := payload[8 : 8+32]
	descBytes := payload[8+32 : 8+32+256]

	return ver, cstring(authorBytes), cstring(descBytes), true
}

func cstring(b []byte) string {
	if i := indexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimRight(string(b), " \t\r\n")
}

func indexByte(b []byte, c byte) int {
	for i, x := range b {
		if x == c {
			return i
		}
	}
	return -1
}
