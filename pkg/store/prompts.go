package store

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"

	"storynexus/pkg/schema"
)

// PromptStore provides access to the prompt catalog.
type PromptStore struct {
	db *gorm.DB
}

func (s *PromptStore) Create(ctx context.Context, p *schema.Prompt) error {
	if p.ID == "" {
		p.ID = ksuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create prompt: %w", err)
	}
	return nil
}

func (s *PromptStore) PromptByID(ctx context.Context, id string) (*schema.Prompt, error) {
	var p schema.Prompt
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "prompt", id)
	}
	return &p, nil
}

func (s *PromptStore) List(ctx context.Context) ([]schema.Prompt, error) {
	var prompts []schema.Prompt
	if err := s.db.WithContext(ctx).Order("name asc").Find(&prompts).Error; err != nil {
		return nil, fmt.Errorf("failed to list prompts: %w", err)
	}
	return prompts, nil
}

func (s *PromptStore) Update(ctx context.Context, p *schema.Prompt) error {
	tx := s.db.WithContext(ctx).Save(p)
	if tx.Error != nil {
		return fmt.Errorf("failed to update prompt %s: %w", p.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("prompt %s: %w", p.ID, ErrNotFound)
	}
	return nil
}

func (s *PromptStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&schema.Prompt{}, "id = ?", id).Error
}

// seedDefaults inserts the built-in prompt templates when the table is
// empty, so a fresh database can generate out of the box.
func (s *PromptStore) seedDefaults() error {
	var count int64
	if err := s.db.Model(&schema.Prompt{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	defaults := defaultPrompts()
	return s.db.Create(&defaults).Error
}

func defaultPrompts() []schema.Prompt {
	return []schema.Prompt{
		{
			ID:         "default-scene-beat",
			Name:       "Scene Beat Continuation",
			PromptType: schema.PromptTypeSceneBeat,
			Messages: []schema.PromptMessage{
				{
					Role: schema.RoleSystem,
					Content: "You are a skilled fiction co-writer. Continue the story naturally " +
						"from where it leaves off, following the scene beat. Match the established " +
						"prose style, tense and point of view. Write prose only, no commentary.\n\n" +
						"Story so far:\n{{chapterSummaries}}\n\n" +
						"Relevant world information:\n{{brainstormContext}}",
				},
				{
					Role:    schema.RoleUser,
					Content: "Recent text:\n{{previousWords:1000}}\n\nScene beat: {{userInput}}",
				},
			},
			Params: schema.GenerationParams{Temperature: 0.8, MaxTokens: 1024},
		},
		{
			ID:         "default-chat",
			Name:       "Brainstorm Chat",
			PromptType: schema.PromptTypeChat,
			Messages: []schema.PromptMessage{
				{
					Role: schema.RoleSystem,
					Content: "You are a creative brainstorming partner for a fiction writer. " +
						"Use the provided story context when answering, and keep responses focused " +
						"and practical.\n\nStory context:\n{{brainstormContext}}",
				},
				{
					Role:    schema.RoleUser,
					Content: "Conversation so far:\n{{chatHistory}}\n\n{{userInput}}",
				},
			},
			Params: schema.GenerationParams{Temperature: 0.9, MaxTokens: 2048},
		},
		{
			ID:         "default-summarize",
			Name:       "Chapter Summary",
			PromptType: schema.PromptTypeSummarize,
			Messages: []schema.PromptMessage{
				{
					Role: schema.RoleSystem,
					Content: "Summarize the chapter below in a compact paragraph covering plot " +
						"developments, character changes and new information. Write in present tense.",
				},
				{
					Role:    schema.RoleUser,
					Content: "{{chapterContent}}",
				},
			},
			Params: schema.GenerationParams{Temperature: 0.3, MaxTokens: 512},
		},
	}
}
