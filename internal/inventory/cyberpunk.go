package inventory

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/frederic-klein/plox/internal/plugin"
)

// CyberpunkSource enumerates a Cyberpunk 2077 mod install's
// archive/pc/mod/*.archive and r6/scripts/*.reds files. Unlike an ini or
// cfg file, the filesystem doesn't preserve a meaningful load order for
// this engine, so entries are sorted case-insensitively by filename to
// give a deterministic starting Inventory for the rule set to act on.
type CyberpunkSource struct {
	// Root is the game's install root (containing archive/ and r6/).
	Root string
	Meta MetadataReader
}

// NewCyberpunkSource creates a Source rooted at root.
func NewCyberpunkSource(root string, meta MetadataReader) *CyberpunkSource {
	return &CyberpunkSource{Root: root, Meta: meta}
}

func (s *CyberpunkSource) Load() (plugin.Inventory, error) {
	var names []string
	for _, pattern := range []string{
		filepath.Join(s.Root, "archive", "pc", "mod", "*.archive"),
		filepath.Join(s.Root, "r6", "scripts", "*.reds"),
	} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return plugin.Inventory{}, fmt.Errorf("globbing %s: %w", pattern, err)
		}
		for _, m := range matches {
			names = append(names, filepath.Base(m))
		}
	}

	sort.Slice(names, func(i, j int) bool {
		return plugin.Fold(names[i]) < plugin.Fold(names[j])
	})

	records := make([]plugin.Record, 0, len(names))
	for _, name := range names {
		id := plugin.ID(name)
		meta := plugin.Metadata{}
		if s.Meta != nil {
			if m, ok := s.Meta.Read(id); ok {
				meta = m
			}
		}
		records = append(records, plugin.NewRecord(id, meta))
	}
	return plugin.NewInventory(records), nil
}

// CyberpunkManifestWriter writes a plain ordered text manifest, one
// plugin identifier per line, since Cyberpunk's engine does not honour
// an explicit load order the way an ini-based engine does; the manifest
// is meant for a companion mod-order tool to consume.
type CyberpunkManifestWriter struct {
	ManifestPath string
}

func (w *CyberpunkManifestWriter) Write(order []plugin.ID) error {
	var b strings.Builder
	for _, id := range order {
		b.WriteString(string(id))
		b.WriteByte('\n')
	}
	if err := os.WriteFile(w.ManifestPath, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", w.ManifestPath, err)
	}
	return nil
}
