// Package plugin models the installed plugin universe PLOX orders: plugin
// identifiers, their optional metadata, and the ordered inventory a rule
// set is evaluated against.
package plugin

import (
	"time"

	"golang.org/x/text/cases"

	"github.com/frederic-klein/plox/internal/version"
)

var foldCaser = cases.Fold()

// Fold is the single case-folding helper every identifier comparison in
// PLOX goes through. Plugin filenames may carry non-ASCII author names, so
// this uses a Unicode case fold rather than strings.ToLower.
func Fold(s string) string {
	return foldCaser.String(s)
}

// ID is a plugin filename. Equality and map-keying must go through Fold;
// ID itself preserves the original casing for display.
type ID string

// Key returns the case-folded form of the identifier, suitable for use as
// a map key or for equality comparison.
func (id ID) Key() string {
	return Fold(string(id))
}

// Equal reports whether two identifiers name the same plugin, ignoring
// case.
func (id ID) Equal(other ID) bool {
	return id.Key() == other.Key()
}

var recognizedExtensions = map[string]bool{
	".esp":        true,
	".esm":        true,
	".esl":        true,
	".omwaddon":   true,
	".omwscripts": true,
	".archive":    true,
	".reds":       true,
}

// HasRecognizedExtension reports whether id carries one of the plugin
// extensions PLOX understands.
func HasRecognizedExtension(id ID) bool {
	folded := Fold(string(id))
	for ext := range recognizedExtensions {
		if len(folded) > len(ext) && folded[len(folded)-len(ext):] == ext {
			return true
		}
	}
	return false
}

// Metadata is a plugin's optional, best-effort header data. Absent fields
// are left at their zero value; presence is tracked with the boolean
// companions below rather than pointers, to keep Record cheap to copy.
type Metadata struct {
	Version        version.Version
	HasVersion     bool
	Author         string
	HasAuthor      bool
	Description    string
	HasDescription bool
	Size           int64
	HasSize        bool
	ModTime        time.Time
	HasModTime     bool
}

// Record is an immutable plugin entry: an identifier plus whatever
// metadata was recoverable for it. Once built, a Record is never mutated;
// Inventory stores Records by value.
type Record struct {
	ID       ID
	Metadata Metadata
}

// NewRecord builds a plugin Record. It is the only constructor: Records
// are immutable after this call returns.
func NewRecord(id ID, meta Metadata) Record {
	return Record{ID: id, Metadata: meta}
}

// Inventory is the user's current load order: an ordered sequence of
// plugin Records. It is built once per run and never mutated; every
// evaluator lookup is a read against the membership set derived from it.
type Inventory struct {
	records []Record
	index   map[string]int // Fold(id) -> position in records
}

// NewInventory builds an Inventory from records in load-order. Later
// entries with a duplicate identifier overwrite the index of earlier ones
// but every record is retained in Records() for diagnostic purposes.
func NewInventory(records []Record) Inventory {
	idx := make(map[string]int, len(records))
	for i, r := range records {
		idx[r.ID.Key()] = i
	}
	return Inventory{records: records, index: idx}
}

// Records returns the inventory in load order. The returned slice must
// not be mutated by callers.
func (inv Inventory) Records() []Record {
	return inv.records
}

// Len returns the number of plugins in the inventory.
func (inv Inventory) Len() int {
	return len(inv.records)
}

// Contains reports whether id is present in the inventory.
func (inv Inventory) Contains(id ID) bool {
	_, ok := inv.index[Fold(string(id))]
	return ok
}

// IndexOf returns id's position in load order, or -1 if absent.
func (inv Inventory) IndexOf(id ID) int {
	if i, ok := inv.index[Fold(string(id))]; ok {
		return i
	}
	return -1
}

// Lookup returns the Record for id and whether it was found.
func (inv Inventory) Lookup(id ID) (Record, bool) {
	i, ok := inv.index[Fold(string(id))]
	if !ok {
		return Record{}, false
	}
	return inv.records[i], true
}

// IDs returns the plugin identifiers in load order.
func (inv Inventory) IDs() []ID {
	ids := make([]ID, len(inv.records))
	for i, r := range inv.records {
		ids[i] = r.ID
	}
	return ids
}
