// Package lorebook matches world-building entries against chapter text
// and formats them for prompt inclusion.
package lorebook

import (
	"strings"

	"storynexus/pkg/schema"
	"storynexus/pkg/utils"
)

// BuildTagMap scans text for occurrences of each entry's name or tags and
// returns the matched entries keyed by entry id, so an entry matched by
// several tags still appears exactly once. Matching is case-insensitive
// with whitespace runs collapsed; disabled entries never match.
func BuildTagMap(entries []schema.LorebookEntry, text string) map[string]schema.LorebookEntry {
	matched := make(map[string]schema.LorebookEntry)
	normText := utils.NormalizeSpace(text)
	if normText == "" {
		return matched
	}

	for _, entry := range entries {
		if entry.IsDisabled {
			continue
		}
		if matchesAny(normText, entry) {
			matched[entry.ID] = entry
		}
	}
	return matched
}

func matchesAny(normText string, entry schema.LorebookEntry) bool {
	terms := make([]string, 0, len(entry.Tags)+1)
	terms = append(terms, entry.Name)
	terms = append(terms, entry.Tags...)

	for _, term := range terms {
		t := utils.NormalizeSpace(term)
		if t == "" {
			continue
		}
		if containsTerm(normText, t) {
			return true
		}
	}
	return false
}

// containsTerm reports whether term occurs in text as a whole token run,
// not as the inside of a longer word ("Eris" must not match "perish").
func containsTerm(text, term string) bool {
	for start := 0; start+len(term) <= len(text); {
		i := strings.Index(text[start:], term)
		if i < 0 {
			return false
		}
		i += start
		end := i + len(term)
		before := i == 0 || !isWordByte(text[i-1])
		after := end == len(text) || !isWordByte(text[end])
		if before && after {
			return true
		}
		start = i + 1
	}
	return false
}

func isWordByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b >= 0x80
}
