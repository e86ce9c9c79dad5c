package prompt

import (
	"context"
	"errors"
	"testing"

	"storynexus/pkg/schema"
)

type fakePrompts struct {
	prompts map[string]*schema.Prompt
}

func (f *fakePrompts) PromptByID(ctx context.Context, id string) (*schema.Prompt, error) {
	p, ok := f.prompts[id]
	if !ok {
		return nil, errors.New("prompt not found: " + id)
	}
	return p, nil
}

func testParser(chapters *fakeChapters, prompts *fakePrompts) *Parser {
	if chapters == nil {
		chapters = &fakeChapters{}
	}
	registry := NewRegistry(testResolvers(chapters, nil))
	return NewParser(NewBuilder(chapters), prompts, registry)
}

func TestParseSubstitutesPlaceholders(t *testing.T) {
	prompts := &fakePrompts{prompts: map[string]*schema.Prompt{
		"p1": {
			ID: "p1",
			Messages: []schema.PromptMessage{
				{Role: schema.RoleSystem, Content: "You are a writing assistant."},
				{Role: schema.RoleUser, Content: "Continue from: {{userInput}} (end)"},
			},
			Params: schema.GenerationParams{Temperature: 0.8},
		},
	}}
	parser := testParser(nil, prompts)

	parsed, err := parser.Parse(context.Background(), ParserConfig{
		StoryID:   "s1",
		PromptID:  "p1",
		SceneBeat: "the gate opens",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !parsed.OK() {
		t.Fatalf("expected success, got error %q", parsed.Error)
	}
	if len(parsed.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(parsed.Messages))
	}
	if parsed.Messages[0].Content != "You are a writing assistant." {
		t.Fatalf("literal message changed: %q", parsed.Messages[0].Content)
	}
	if parsed.Messages[1].Content != "Continue from: the gate opens (end)" {
		t.Fatalf("unexpected substitution: %q", parsed.Messages[1].Content)
	}
	if parsed.Params.Temperature != 0.8 {
		t.Fatalf("params not carried through: %+v", parsed.Params)
	}
}

func TestParseUnknownVariable(t *testing.T) {
	prompts := &fakePrompts{prompts: map[string]*schema.Prompt{
		"p1": {
			ID:       "p1",
			Messages: []schema.PromptMessage{{Role: schema.RoleUser, Content: "{{noSuchThing}}"}},
		},
	}}
	parser := testParser(nil, prompts)

	parsed, err := parser.Parse(context.Background(), ParserConfig{StoryID: "s1", PromptID: "p1"})
	if err != nil {
		t.Fatalf("resolution failures must not surface as returned errors, got %v", err)
	}
	if parsed.OK() {
		t.Fatal("expected a parse error")
	}
	if len(parsed.Messages) != 0 {
		t.Fatalf("expected empty message list, got %d messages", len(parsed.Messages))
	}
}

func TestParsePerOccurrenceArguments(t *testing.T) {
	prompts := &fakePrompts{prompts: map[string]*schema.Prompt{
		"p1": {
			ID:       "p1",
			Messages: []schema.PromptMessage{{Role: schema.RoleUser, Content: "[{{previousWords:2}}] [{{previousWords:1}}]"}},
		},
	}}
	parser := testParser(nil, prompts)

	parsed, err := parser.Parse(context.Background(), ParserConfig{
		StoryID:    "s1",
		PromptID:   "p1",
		Additional: Additional{PlainTextContent: "one two three"},
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !parsed.OK() {
		t.Fatalf("expected success, got error %q", parsed.Error)
	}
	if parsed.Messages[0].Content != "[two three] [three]" {
		t.Fatalf("occurrences must resolve independently, got %q", parsed.Messages[0].Content)
	}
}

func TestParseTemplateLoadFailure(t *testing.T) {
	parser := testParser(nil, &fakePrompts{prompts: map[string]*schema.Prompt{}})

	if _, err := parser.Parse(context.Background(), ParserConfig{StoryID: "s1", PromptID: "missing"}); err == nil {
		t.Fatal("expected a returned error for a missing template")
	}
}

func TestParseContextBuildFailure(t *testing.T) {
	chapters := &fakeChapters{listErr: errors.New("db down")}
	prompts := &fakePrompts{prompts: map[string]*schema.Prompt{
		"p1": {ID: "p1", Messages: []schema.PromptMessage{{Role: schema.RoleUser, Content: "hi"}}},
	}}
	parser := testParser(chapters, prompts)

	if _, err := parser.Parse(context.Background(), ParserConfig{StoryID: "s1", PromptID: "p1"}); err == nil {
		t.Fatal("expected a returned error for a failed context build")
	}
}
