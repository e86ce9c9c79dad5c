package prompt

import (
	"context"
	"errors"
	"strings"
	"testing"

	"storynexus/pkg/schema"
)

type fakeChapters struct {
	chapters []schema.Chapter
	prev     map[string]*schema.Chapter
	outlines map[string]string
	listErr  error
	byIDErr  error
}

func (f *fakeChapters) ChaptersByStory(ctx context.Context, storyID string) ([]schema.Chapter, error) {
	return f.chapters, f.listErr
}

func (f *fakeChapters) ChapterByID(ctx context.Context, id string) (*schema.Chapter, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	for i := range f.chapters {
		if f.chapters[i].ID == id {
			return &f.chapters[i], nil
		}
	}
	return nil, errors.New("chapter not found: " + id)
}

func (f *fakeChapters) PreviousChapter(ctx context.Context, chapterID string) (*schema.Chapter, error) {
	return f.prev[chapterID], nil
}

func (f *fakeChapters) Outline(ctx context.Context, chapterID string) (string, error) {
	return f.outlines[chapterID], nil
}

type fakeLorebook struct {
	entries []schema.LorebookEntry
	err     error
}

func (f *fakeLorebook) EntriesByStory(ctx context.Context, storyID string) ([]schema.LorebookEntry, error) {
	return f.entries, f.err
}

func (f *fakeLorebook) EntriesByIDs(ctx context.Context, ids []string) ([]schema.LorebookEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []schema.LorebookEntry
	for _, id := range ids {
		for _, e := range f.entries {
			if e.ID == id {
				out = append(out, e)
			}
		}
	}
	return out, nil
}

func testResolvers(chapters *fakeChapters, entries *fakeLorebook) *Resolvers {
	if chapters == nil {
		chapters = &fakeChapters{}
	}
	if entries == nil {
		entries = &fakeLorebook{}
	}
	return NewResolvers(chapters, entries)
}

func TestChapterSummariesAggregateMode(t *testing.T) {
	r := testResolvers(nil, nil)
	pc := &Context{Chapters: []schema.Chapter{
		{ID: "c3", Order: 3, Summary: "third"},
		{ID: "c1", Order: 1, Summary: "first"},
		{ID: "c2", Order: 2, Summary: ""},
	}}

	got, err := r.chapterSummaries(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "first\n\nthird" {
		t.Fatalf("unexpected summaries: %q", got)
	}
}

func TestChapterSummariesExcludesCurrentAndLater(t *testing.T) {
	r := testResolvers(nil, nil)
	chapters := []schema.Chapter{
		{ID: "c1", Order: 1, Summary: "first"},
		{ID: "c2", Order: 2, Summary: "second"},
		{ID: "c3", Order: 3, Summary: "third"},
	}
	pc := &Context{Chapters: chapters, CurrentChapter: &chapters[1]}

	got, err := r.chapterSummaries(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "first" {
		t.Fatalf("expected only earlier chapters, got %q", got)
	}
}

func TestChapterSummariesNoChapters(t *testing.T) {
	r := testResolvers(nil, nil)
	got, err := r.chapterSummaries(context.Background(), &Context{}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestChapterOutlineFallback(t *testing.T) {
	chapters := &fakeChapters{outlines: map[string]string{"c1": "the plan"}}
	r := testResolvers(chapters, nil)

	got, err := r.chapterOutline(context.Background(), &Context{CurrentChapter: &schema.Chapter{ID: "c1"}}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != "the plan" {
		t.Fatalf("unexpected outline: %q", got)
	}

	got, err = r.chapterOutline(context.Background(), &Context{CurrentChapter: &schema.Chapter{ID: "c2"}}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != noOutlineText {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestChatHistoryRendering(t *testing.T) {
	r := testResolvers(nil, nil)
	pc := &Context{Additional: Additional{ChatHistory: []schema.ChatMessage{
		{Role: schema.RoleUser, Content: "what if the city floods?"},
		{Role: schema.RoleAssistant, Content: "then the canals matter"},
	}}}

	got, err := r.chatHistory(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "USER: what if the city floods?\n\nASSISTANT: then the canals matter"
	if got != want {
		t.Fatalf("unexpected history: %q", got)
	}

	got, _ = r.chatHistory(context.Background(), &Context{}, "")
	if got != noHistoryText {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestUserInputTrimAndFallback(t *testing.T) {
	r := testResolvers(nil, nil)

	got, _ := r.userInput(context.Background(), &Context{SceneBeat: "  write the duel  "}, "")
	if got != "write the duel" {
		t.Fatalf("expected trimmed input, got %q", got)
	}

	got, _ = r.userInput(context.Background(), &Context{SceneBeat: "   "}, "")
	if got != noUserInputText {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestBrainstormFullContext(t *testing.T) {
	chapters := &fakeChapters{chapters: []schema.Chapter{
		{ID: "c1", Order: 1, Summary: "A"},
		{ID: "c2", Order: 2, Summary: "B"},
	}}
	entries := &fakeLorebook{entries: []schema.LorebookEntry{
		{ID: "e1", Name: "Eris", Category: "character"},
	}}
	r := testResolvers(chapters, entries)
	pc := &Context{
		StoryID:    "s1",
		Chapters:   chapters.chapters,
		Additional: Additional{IncludeFullContext: true},
	}

	got, err := r.brainstormContext(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	summariesAt := strings.Index(got, summariesHeader)
	worldAt := strings.Index(got, worldInfoHeader)
	if summariesAt < 0 || worldAt < 0 || summariesAt > worldAt {
		t.Fatalf("expected summaries section before world info, got %q", got)
	}
	if !strings.Contains(got, "A") || !strings.Contains(got, "B") || !strings.Contains(got, "Eris") {
		t.Fatalf("missing context pieces: %q", got)
	}
}

func TestBrainstormSelectedAllSentinel(t *testing.T) {
	chapters := &fakeChapters{chapters: []schema.Chapter{
		{ID: "c1", Order: 1, Summary: "A"},
		{ID: "c2", Order: 2, Summary: "B"},
	}}
	r := testResolvers(chapters, nil)
	pc := &Context{
		Chapters:   chapters.chapters,
		Additional: Additional{SelectedSummaries: []string{"c2", AllChapters}},
	}

	got, err := r.brainstormContext(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "A") || !strings.Contains(got, "B") {
		t.Fatalf("expected the sentinel to include every summary, got %q", got)
	}
}

func TestBrainstormSelectedNothingFallback(t *testing.T) {
	r := testResolvers(nil, nil)
	got, err := r.brainstormContext(context.Background(), &Context{}, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got != noContextText {
		t.Fatalf("expected fallback text, got %q", got)
	}
}

func TestBrainstormSelectedContentSkipsFailedFetch(t *testing.T) {
	chapters := &fakeChapters{chapters: []schema.Chapter{
		{ID: "c1", Order: 1, Content: "the storm broke at dawn"},
	}}
	r := testResolvers(chapters, nil)
	pc := &Context{
		Additional: Additional{SelectedChapterContent: []string{"c1", "missing"}},
	}

	got, err := r.brainstormContext(context.Background(), pc, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.Contains(got, "the storm broke at dawn") {
		t.Fatalf("expected the fetched chapter to survive, got %q", got)
	}
}
