package inventory

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/frederic-klein/plox/internal/plugin"
)

// OpenMWSource reads openmw.cfg's content= lines in file order. Its
// data= lines are collected as directories a MetadataReader can be
// rooted at, since OpenMW plugins may live outside the config file's own
// directory.
type OpenMWSource struct {
	CfgPath string
	Meta    MetadataReader
}

// NewOpenMWSource creates a Source reading cfgPath.
func NewOpenMWSource(cfgPath string, meta MetadataReader) *OpenMWSource {
	return &OpenMWSource{CfgPath: cfgPath, Meta: meta}
}

// DataDirs returns the data= directories declared in cfgPath, in file
// order, without loading the inventory.
func (s *OpenMWSource) DataDirs() ([]string, error) {
	f, err := os.Open(s.CfgPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.CfgPath, err)
	}
	defer f.Close()

	var dirs []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if val, ok := cfgValue(line, "data"); ok {
			dirs = append(dirs, strings.Trim(val, `"`))
		}
	}
	return dirs, scanner.Err()
}

func (s *OpenMWSource) Load() (plugin.Inventory, error) {
	f, err := os.Open(s.CfgPath)
	if err != nil {
		return plugin.Inventory{}, fmt.Errorf("opening %s: %w", s.CfgPath, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if val, ok := cfgValue(line, "content"); ok {
			names = append(names, val)
		}
	}
	if err := scanner.Err(); err != nil {
		return plugin.Inventory{}, fmt.Errorf("reading %s: %w", s.CfgPath, err)
	}

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

func cfgValue(line, key string) (string, bool) {
	if strings.HasPrefix(line, "#") || line == "" {
		return "", false
	}
	prefix := key + "="
	if !strings.HasPrefix(line, prefix) {
		return "", false
	}
	return strings.TrimSpace(strings.TrimPrefix(line, prefix)), true
}

// OpenMWWriter rewrites openmw.cfg's content= lines in place in the new
// order, preserving every other line untouched (data=, fallback=,
// settings, etc). New content= entries are inserted where the first
// existing content= line was; entries with no prior content= line are
// appended at the end of the file.
type OpenMWWriter struct {
	CfgPath string
}

func (w *OpenMWWriter) Write(order []plugin.ID) error {
	content, err := os.ReadFile(w.CfgPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", w.CfgPath, err)
	}

	lines := strings.Split(string(content), "\n")
	var out []string
	inserted := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if _, ok := cfgValue(trimmed, "content"); ok {
			if !inserted {
				out = append(out, contentLines(order)...)
				inserted = true
			}
			continue // drop subsequent old content= lines
		}
		out = append(out, line)
	}
	if !inserted {
		out = append(out, contentLines(order)...)
	}

	return os.WriteFile(w.CfgPath, []byte(strings.Join(out, "\n")), 0644)
}

func contentLines(order []plugin.ID) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[i] = "content=" + string(id)
	}
	return out
}
