package utils

import (
	"encoding/json"
	"strings"
)

// docNode is the subset of the editor's document JSON the server cares
// about: a node tree with text leaves and typed block containers.
type docNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []docNode `json:"content,omitempty"`
}

var blockTypes = map[string]bool{
	"paragraph":  true,
	"heading":    true,
	"blockquote": true,
	"listItem":   true,
	"codeBlock":  true,
}

// ExtractPlainText flattens the editor's native document JSON into plain
// text, one newline per block node. Input that is not a document (already
// plain text, or malformed JSON) is returned as-is so callers never lose
// content.
func ExtractPlainText(doc string) string {
	trimmed := strings.TrimSpace(doc)
	if !strings.HasPrefix(trimmed, "{") {
		return doc
	}
	var root docNode
	if err := json.Unmarshal([]byte(trimmed), &root); err != nil {
		return doc
	}
	var b strings.Builder
	flattenNode(&b, root)
	return strings.TrimRight(b.String(), "\n")
}

func flattenNode(b *strings.Builder, n docNode) {
	if n.Type == "hardBreak" {
		b.WriteByte('\n')
		return
	}
	if n.Text != "" {
		b.WriteString(n.Text)
	}
	for _, child := range n.Content {
		flattenNode(b, child)
	}
	if blockTypes[n.Type] {
		b.WriteByte('\n')
	}
}

// CountWords counts whitespace-delimited words.
func CountWords(s string) int {
	return len(strings.Fields(s))
}

// NormalizeSpace lowercases s and collapses all whitespace runs to single
// spaces. Used for case-insensitive substring matching.
func NormalizeSpace(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
