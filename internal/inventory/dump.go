package inventory

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/plox/internal/plugin"
)

// dumpEntry is the YAML-serializable projection of one plugin.Record: a
// small struct with explicit yaml tags, marshaled directly rather than
// through the domain type so the on-disk shape can evolve independently.
type dumpEntry struct {
	ID          string `yaml:"id"`
	Author      string `yaml:"author,omitempty"`
	Description string `yaml:"description,omitempty"`
	Version     string `yaml:"version,omitempty"`
	Size        int64  `yaml:"size,omitempty"`
}

// DumpYAML renders inv as a YAML document, one entry per plugin in load
// order, for the CLI's "list --format yaml" output.
func DumpYAML(inv plugin.Inventory) ([]byte, error) {
	entries := make([]dumpEntry, 0, inv.Len())
	for _, r := range inv.Records() {
		e := dumpEntry{ID: string(r.ID)}
		if r.Metadata.HasAuthor {
			e.Author = r.Metadata.Author
		}
		if r.Metadata.HasDescription {
			e.Description = r.Metadata.Description
		}
		if r.Metadata.HasVersion {
			e.Version = r.Metadata.Version.String()
		}
		if r.Metadata.HasSize {
			e.Size = r.Metadata.Size
		}
		entries = append(entries, e)
	}

	data, err := yaml.Marshal(struct {
		Plugins []dumpEntry `yaml:"plugins"`
	}{Plugins: entries})
	if err != nil {
		return nil, fmt.Errorf("marshaling inventory: %w", err)
	}
	return data, nil
}
