package prompt

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"storynexus/pkg/schema"
)

// Fallback texts substituted when a resolver has nothing to say.
const (
	noOutlineText   = "No outline available"
	noHistoryText   = "No chat history available"
	noUserInputText = "No user input provided"
	noContextText   = "No additional context available"
)

// Resolver computes the text substituted for one template variable.
// Resolvers only read from the Context and their own sources; they never
// mutate shared state.
type Resolver func(ctx context.Context, pc *Context, arg string) (string, error)

// Registry maps variable names to resolvers.
type Registry struct {
	byName map[string]Resolver
}

func (r *Registry) Register(name string, fn Resolver) {
	r.byName[name] = fn
}

func (r *Registry) Lookup(name string) (Resolver, bool) {
	fn, ok := r.byName[name]
	return fn, ok
}

// Names returns the registered variable names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Resolvers bundles the data sources the built-in resolvers need.
type Resolvers struct {
	chapters ChapterSource
	lorebook LorebookSource
}

func NewResolvers(chapters ChapterSource, lorebook LorebookSource) *Resolvers {
	return &Resolvers{chapters: chapters, lorebook: lorebook}
}

// NewRegistry registers the built-in resolver set.
func NewRegistry(r *Resolvers) *Registry {
	reg := &Registry{byName: make(map[string]Resolver)}
	reg.Register("chapterSummaries", r.chapterSummaries)
	reg.Register("previousWords", r.previousWords)
	reg.Register("chapterContent", r.chapterContent)
	reg.Register("chapterOutline", r.chapterOutline)
	reg.Register("chatHistory", r.chatHistory)
	reg.Register("userInput", r.userInput)
	reg.Register("brainstormContext", r.brainstormContext)
	return reg
}

// chapterSummaries concatenates chapter summaries in reading order. With
// a current chapter only earlier chapters contribute; without one every
// chapter does. Chapters with empty summaries are skipped.
func (r *Resolvers) chapterSummaries(_ context.Context, pc *Context, _ string) (string, error) {
	return summariesBefore(pc.Chapters, pc.CurrentChapter), nil
}

func summariesBefore(chapters []schema.Chapter, current *schema.Chapter) string {
	sorted := slices.Clone(chapters)
	slices.SortFunc(sorted, func(a, b schema.Chapter) int { return a.Order - b.Order })

	var parts []string
	for _, ch := range sorted {
		if current != nil && ch.Order >= current.Order {
			continue
		}
		if s := strings.TrimSpace(ch.Summary); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// chapterContent returns the pre-extracted plain text supplied by the
// caller. Extraction happens upstream; resolving never reads documents.
func (r *Resolvers) chapterContent(_ context.Context, pc *Context, _ string) (string, error) {
	return pc.Additional.PlainTextContent, nil
}

func (r *Resolvers) chapterOutline(ctx context.Context, pc *Context, _ string) (string, error) {
	if pc.CurrentChapter == nil {
		return noOutlineText, nil
	}
	outline, err := r.chapters.Outline(ctx, pc.CurrentChapter.ID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(outline) == "" {
		return noOutlineText, nil
	}
	return outline, nil
}

func (r *Resolvers) chatHistory(_ context.Context, pc *Context, _ string) (string, error) {
	history := pc.Additional.ChatHistory
	if len(history) == 0 {
		return noHistoryText, nil
	}
	lines := make([]string, 0, len(history))
	for _, msg := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", strings.ToUpper(string(msg.Role)), msg.Content))
	}
	return strings.Join(lines, "\n\n"), nil
}

func (r *Resolvers) userInput(_ context.Context, pc *Context, _ string) (string, error) {
	input := strings.TrimSpace(pc.SceneBeat)
	if input == "" {
		return noUserInputText, nil
	}
	return input, nil
}
