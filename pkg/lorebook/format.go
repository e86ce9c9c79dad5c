package lorebook

import (
	"fmt"
	"strings"

	"storynexus/pkg/schema"
)

// FormatEntry renders one entry as prompt context text.
func FormatEntry(e schema.LorebookEntry) string {
	var b strings.Builder

	if e.Category != "" {
		fmt.Fprintf(&b, "[%s] ", e.Category)
	}
	b.WriteString(e.Name)
	if desc := strings.TrimSpace(e.Description); desc != "" {
		b.WriteString(": ")
		b.WriteString(desc)
	}

	var extras []string
	if e.Metadata.Importance != "" {
		extras = append(extras, "importance: "+e.Metadata.Importance)
	}
	if e.Metadata.Status != "" {
		extras = append(extras, "status: "+e.Metadata.Status)
	}
	if len(extras) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(extras, ", "))
		b.WriteString(")")
	}
	return b.String()
}

// FormatEntries renders enabled entries one per line, skipping disabled
// ones. Returns "" when nothing is formattable.
func FormatEntries(entries []schema.LorebookEntry) string {
	var lines []string
	for _, e := range entries {
		if e.IsDisabled {
			continue
		}
		lines = append(lines, FormatEntry(e))
	}
	return strings.Join(lines, "\n")
}
