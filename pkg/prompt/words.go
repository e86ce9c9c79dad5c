package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"storynexus/pkg/utils"
)

const (
	defaultPreviousWords = 1000

	// newlineToken stands in for line breaks while the buffer is split
	// into words, so the selected window keeps its paragraph structure.
	newlineToken = "__NEWLINE__"

	// gapMarker separates previous-chapter text from the current buffer.
	gapMarker = "\n\n[...]\n\n"
)

// previousWords returns the last N words of the text preceding the
// generation point. When the buffer is short and the previous chapter is
// written from a matching point of view, its trailing words fill the
// remaining budget, prefixed and separated by a gap marker. The word
// budget is never exceeded.
func (r *Resolvers) previousWords(ctx context.Context, pc *Context, arg string) (string, error) {
	count := defaultPreviousWords
	if arg != "" {
		n, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil || n <= 0 {
			return "", fmt.Errorf("previousWords: invalid word count %q", arg)
		}
		count = n
	}

	buffer := pc.Additional.PlainTextContent
	text, got := lastWords(buffer, count)
	if got >= count || pc.CurrentChapter == nil {
		return text, nil
	}

	prev, err := r.chapters.PreviousChapter(ctx, pc.CurrentChapter.ID)
	if err != nil {
		return "", err
	}
	if prev == nil || !pc.POV.Matches(prev.POV()) {
		return text, nil
	}

	fill, _ := lastWords(utils.ExtractPlainText(prev.Content), count-got)
	if fill == "" {
		return text, nil
	}
	if text == "" {
		return fill, nil
	}
	return fill + gapMarker + text, nil
}

// lastWords returns the trailing n words of text plus the number of words
// actually found. Newlines survive the round trip through a sentinel
// token; sentinel tokens do not count against the word budget.
func lastWords(text string, n int) (string, int) {
	if strings.TrimSpace(text) == "" || n <= 0 {
		return "", 0
	}
	tokens := strings.Fields(strings.ReplaceAll(text, "\n", " "+newlineToken+" "))

	count := 0
	i := len(tokens)
	for i > 0 && count < n {
		i--
		if tokens[i] != newlineToken {
			count++
		}
	}
	window := tokens[i:]
	for len(window) > 0 && window[0] == newlineToken {
		window = window[1:]
	}
	return joinWords(window), count
}

func joinWords(tokens []string) string {
	var b strings.Builder
	prevNewline := true
	for _, tok := range tokens {
		if tok == newlineToken {
			b.WriteByte('\n')
			prevNewline = true
			continue
		}
		if !prevNewline && b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(tok)
		prevNewline = false
	}
	return b.String()
}
