// Package inventory provides the concrete external collaborators PLOX's
// core treats abstractly: reading a game's current load order into a
// plugin.Inventory, and writing a resolved order back. The TES3 and
// OpenMW Source/Writer pairs read and rewrite one external flat-file
// format in place, line by line, preserving everything they don't own;
// the Cyberpunk pair enumerates mod directories and writes a separate
// manifest file.
package inventory

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/frederic-klein/plox/internal/plugin"
)

// Source loads the current plugin load order for one game engine.
type Source interface {
	Load() (plugin.Inventory, error)
}

// Writer persists a resolved load order back to the game's own
// configuration.
type Writer interface {
	Write(order []plugin.ID) error
}

var gameFileRe = regexp.MustCompile(`(?i)^GameFile(\d+)\s*=\s*(.+?)\s*$`)

// TES3Source reads Morrowind.ini's [Game Files] section, in ascending
// GameFileN order, scanning the flat text file line by line.
type TES3Source struct {
	// IniPath is the path to Morrowind.ini.
	IniPath string
	// Meta, if non-nil, is consulted to populate each Record's Metadata.
	Meta MetadataReader
}

// NewTES3Source creates a Source reading iniPath.
func NewTES3Source(iniPath string, meta MetadataReader) *TES3Source {
	return &TES3Source{IniPath: iniPath, Meta: meta}
}

func (s *TES3Source) Load() (plugin.Inventory, error) {
	f, err := os.Open(s.IniPath)
	if err != nil {
		return plugin.Inventory{}, fmt.Errorf("opening %s: %w", s.IniPath, err)
	}
	defer f.Close()

	type entry struct {
		index int
		name  string
	}
	var entries []entry
	inSection := false

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.EqualFold(line, "[Game Files]") {
			inSection = true
			continue
		}
		if inSection && strings.HasPrefix(line, "[") {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}
		m := gameFileRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		entries = append(entries, entry{index: n, name: m[2]})
	}
	if err := scanner.Err(); err != nil {
		return plugin.Inventory{}, fmt.Errorf("reading %s: %w", s.IniPath, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].index < entries[j].index })

	records := make([]plugin.Record, 0, len(entries))
	for _, e := range entries {
		id := plugin.ID(e.name)
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

// TES3Writer rewrites Morrowind.ini's [Game Files] block in place,
// preserving every other line of the file untouched, and gives each
// plugin a strictly increasing mtime in new-order sequence so the
// engine's own file-time-based load order (a legacy fallback some
// TES3 tooling still honours) agrees with the rewritten ini.
type TES3Writer struct {
	IniPath string
	// PluginDir is where the plugin files themselves live, for mtime
	// adjustment. If empty, mtime adjustment is skipped.
	PluginDir string
	// Now is the base time new mtimes are computed from; defaults to
	// time.Now if zero. Exposed for deterministic tests.
	Now time.Time
}

func (w *TES3Writer) Write(order []plugin.ID) error {
	content, err := os.ReadFile(w.IniPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.IniPath, err)
	}

	lines := strings.Split(string(content), "\n")
	var out []string
	inSection := false
	wroteBlock := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.EqualFold(trimmed, "[Game Files]") {
			out = append(out, line)
			out = append(out, gameFileLines(order)...)
			wroteBlock = true
			inSection = true
			continue
		}
		if inSection {
			if strings.HasPrefix(trimmed, "[") || trimmed == "" {
				inSection = false
			} else {
				continue // drop old GameFileN= lines
			}
		}
		out = append(out, line)
	}
	if !wroteBlock {
		out = append(out, "[Game Files]")
		out = append(out, gameFileLines(order)...)
	}

	if err := os.WriteFile(w.IniPath, []byte(strings.Join(out, "\n")), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", w.IniPath, err)
	}

	if w.PluginDir == "" {
		return nil
	}
	base := w.Now
	if base.IsZero() {
		base = time.Now()
	}
	for i, id := range order {
		path := filepath.Join(w.PluginDir, string(id))
		mtime := base.Add(time.Duration(i) * time.Second)
		if err := os.Chtimes(path, mtime, mtime); err != nil {
			return fmt.Errorf("setting mtime for %s: %w", id, err)
		}
	}
	return nil
}

func gameFileLines(order []plugin.ID) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[i] = fmt.Sprintf("GameFile%d=%s", i, string(id))
	}
	return out
}
