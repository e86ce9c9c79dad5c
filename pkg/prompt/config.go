// Package prompt implements the prompt parsing pipeline: it builds a
// per-call context from story state, resolves template variables against
// it and produces the final message list handed to a provider.
package prompt

import (
	"context"

	"storynexus/pkg/schema"
)

// AllChapters is the sentinel accepted inside Additional.SelectedSummaries
// meaning "every chapter of the story". Its presence short-circuits any
// specific ids in the same list.
const AllChapters = "all"

// Additional carries the optional per-call context pieces. Each field is
// independently optional; Extra is the escape hatch for client-defined
// key/value pairs that no resolver interprets.
type Additional struct {
	IncludeFullContext     bool                 `json:"includeFullContext,omitempty"`
	SelectedSummaries      []string             `json:"selectedSummaries,omitempty"`
	SelectedChapterContent []string             `json:"selectedChapterContent,omitempty"`
	SelectedLorebookIDs    []string             `json:"selectedLorebookIds,omitempty"`
	ChatHistory            []schema.ChatMessage `json:"chatHistory,omitempty"`
	PlainTextContent       string               `json:"plainTextContent,omitempty"`
	Extra                  map[string]string    `json:"extra,omitempty"`
}

// ParserConfig is the immutable caller intent for a single parse.
type ParserConfig struct {
	StoryID        string                          `json:"storyId"`
	ChapterID      string                          `json:"chapterId,omitempty"`
	PromptID       string                          `json:"promptId"`
	SceneBeat      string                          `json:"sceneBeat,omitempty"`
	POVOverride    schema.POV                      `json:"povOverride,omitempty"`
	MatchedEntries map[string]schema.LorebookEntry `json:"matchedEntries,omitempty"`
	Additional     Additional                      `json:"additional,omitempty"`
}

// Context is the read-only snapshot a parse operation resolves against.
// It is built fresh per call, never mutated after construction and never
// shared across concurrent parses.
type Context struct {
	StoryID        string
	ChapterID      string
	SceneBeat      string
	Chapters       []schema.Chapter
	CurrentChapter *schema.Chapter
	MatchedEntries map[string]schema.LorebookEntry
	POV            schema.POV
	Additional     Additional
}

// ChapterSource is the slice of the chapter store the pipeline needs.
type ChapterSource interface {
	ChaptersByStory(ctx context.Context, storyID string) ([]schema.Chapter, error)
	ChapterByID(ctx context.Context, id string) (*schema.Chapter, error)
	PreviousChapter(ctx context.Context, chapterID string) (*schema.Chapter, error)
	Outline(ctx context.Context, chapterID string) (string, error)
}

// LorebookSource is the slice of the lorebook store the pipeline needs.
type LorebookSource interface {
	EntriesByStory(ctx context.Context, storyID string) ([]schema.LorebookEntry, error)
	EntriesByIDs(ctx context.Context, ids []string) ([]schema.LorebookEntry, error)
}

// PromptSource loads templates from the prompt catalog.
type PromptSource interface {
	PromptByID(ctx context.Context, id string) (*schema.Prompt, error)
}
