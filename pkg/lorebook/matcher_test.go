package lorebook

import (
	"strings"
	"testing"

	"storynexus/pkg/schema"
)

func TestBuildTagMapMatchesNameCaseInsensitive(t *testing.T) {
	entries := []schema.LorebookEntry{{ID: "e1", Name: "Eris"}}

	matched := BuildTagMap(entries, "Then ERIS stepped out of the shadow.")
	if _, ok := matched["e1"]; !ok {
		t.Fatalf("expected a match, got %+v", matched)
	}
}

func TestBuildTagMapWordBoundary(t *testing.T) {
	entries := []schema.LorebookEntry{{ID: "e1", Name: "Eris"}}

	if matched := BuildTagMap(entries, "They watched the city perish slowly."); len(matched) != 0 {
		t.Fatalf("substring inside a longer word must not match, got %+v", matched)
	}
}

func TestBuildTagMapDeduplicatesByID(t *testing.T) {
	entries := []schema.LorebookEntry{{
		ID:   "e1",
		Name: "Eris",
		Tags: []string{"goddess", "the stranger"},
	}}

	matched := BuildTagMap(entries, "Eris, the goddess some called the stranger.")
	if len(matched) != 1 {
		t.Fatalf("expected one entry despite multiple tag hits, got %d", len(matched))
	}
}

func TestBuildTagMapSkipsDisabled(t *testing.T) {
	entries := []schema.LorebookEntry{{ID: "e1", Name: "Eris", IsDisabled: true}}

	if matched := BuildTagMap(entries, "Eris arrives."); len(matched) != 0 {
		t.Fatalf("disabled entries must never match, got %+v", matched)
	}
}

func TestBuildTagMapNormalizesWhitespace(t *testing.T) {
	entries := []schema.LorebookEntry{{ID: "e1", Name: "Iron  Keep"}}

	matched := BuildTagMap(entries, "north of the iron\nkeep walls")
	if _, ok := matched["e1"]; !ok {
		t.Fatalf("expected whitespace-normalized match, got %+v", matched)
	}
}

func TestFormatEntry(t *testing.T) {
	e := schema.LorebookEntry{
		Name:        "Eris",
		Category:    schema.CategoryCharacter,
		Description: "exiled goddess of discord",
		Metadata:    schema.EntryMetadata{Importance: "major", Status: "alive"},
	}

	got := FormatEntry(e)
	want := "[character] Eris: exiled goddess of discord (importance: major, status: alive)"
	if got != want {
		t.Fatalf("unexpected formatting: %q", got)
	}
}

func TestFormatEntriesSkipsDisabled(t *testing.T) {
	entries := []schema.LorebookEntry{
		{Name: "Eris"},
		{Name: "Hidden", IsDisabled: true},
		{Name: "Iron Keep"},
	}

	got := FormatEntries(entries)
	if strings.Contains(got, "Hidden") {
		t.Fatalf("disabled entry leaked into output: %q", got)
	}
	if len(strings.Split(got, "\n")) != 2 {
		t.Fatalf("expected two lines, got %q", got)
	}
}
