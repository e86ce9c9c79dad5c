package utils

import "testing"

func TestExtractPlainTextFlattensDocument(t *testing.T) {
	doc := `{
		"type": "doc",
		"content": [
			{"type": "paragraph", "content": [{"type": "text", "text": "First line."}]},
			{"type": "paragraph", "content": [
				{"type": "text", "text": "Second"},
				{"type": "hardBreak"},
				{"type": "text", "text": "third."}
			]}
		]
	}`

	got := ExtractPlainText(doc)
	want := "First line.\nSecond\nthird."
	if got != want {
		t.Fatalf("unexpected flattening: %q", got)
	}
}

func TestExtractPlainTextPassthrough(t *testing.T) {
	if got := ExtractPlainText("already plain text"); got != "already plain text" {
		t.Fatalf("plain input must pass through, got %q", got)
	}
	malformed := `{"type": "doc", "content": [`
	if got := ExtractPlainText(malformed); got != malformed {
		t.Fatalf("malformed input must pass through, got %q", got)
	}
}

func TestCountWords(t *testing.T) {
	if n := CountWords("  one two\nthree  "); n != 3 {
		t.Fatalf("expected 3 words, got %d", n)
	}
	if n := CountWords(""); n != 0 {
		t.Fatalf("expected 0 words, got %d", n)
	}
}

func TestNormalizeSpace(t *testing.T) {
	if got := NormalizeSpace("  The   Iron\n\tKeep "); got != "the iron keep" {
		t.Fatalf("unexpected normalization: %q", got)
	}
}
