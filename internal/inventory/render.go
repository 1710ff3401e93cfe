package inventory

import (
	"fmt"
	"io"

	"github.com/frederic-klein/plox/internal/plugin"
)

// RenderPlain writes inv in load order, one plugin identifier per line,
// with author metadata appended in parentheses when known. This is the
// default "list" output format; DumpYAML is the structured alternative.
func RenderPlain(w io.Writer, inv plugin.Inventory) error {
	for _, r := range inv.Records() {
		if r.Metadata.HasAuthor {
			if _, err := fmt.Fprintf(w, "%s (%s)\n", r.ID, r.Metadata.Author); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", r.ID); err != nil {
			return err
		}
	}
	return nil
}
