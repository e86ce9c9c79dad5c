package schema

import (
	"cmp"
	"time"
)

// Role tags a prompt or chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PromptMessage is one role-tagged message of a prompt template. Content
// may embed variable placeholders of the form {{name}} or {{name:arg}}.
type PromptMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Prompt types seeded on first run. PromptType is free text; clients may
// define their own.
const (
	PromptTypeSceneBeat  = "scene_beat"
	PromptTypeChat       = "chat"
	PromptTypeSummarize  = "summarize"
	PromptTypeBrainstorm = "brainstorm"
)

// Prompt is a stored template: an ordered message list plus the sampling
// defaults used when the caller does not override them.
type Prompt struct {
	ID          string           `json:"id" gorm:"primaryKey"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	PromptType  string           `json:"promptType" gorm:"index"`
	Messages    []PromptMessage  `json:"messages" gorm:"serializer:json"`
	Params      GenerationParams `json:"params" gorm:"serializer:json"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// GenerationParams is the provider-agnostic sampling configuration. Zero
// values mean "unset"; providers fall back to their own defaults.
type GenerationParams struct {
	Temperature       float64 `json:"temperature,omitempty"`
	MaxTokens         int     `json:"maxTokens,omitempty"`
	TopP              float64 `json:"topP,omitempty"`
	TopK              int     `json:"topK,omitempty"`
	RepetitionPenalty float64 `json:"repetitionPenalty,omitempty"`
	MinP              float64 `json:"minP,omitempty"`
}

// Merged overlays set fields of override onto p.
func (p GenerationParams) Merged(override GenerationParams) GenerationParams {
	return GenerationParams{
		Temperature:       cmp.Or(override.Temperature, p.Temperature),
		MaxTokens:         cmp.Or(override.MaxTokens, p.MaxTokens),
		TopP:              cmp.Or(override.TopP, p.TopP),
		TopK:              cmp.Or(override.TopK, p.TopK),
		RepetitionPenalty: cmp.Or(override.RepetitionPenalty, p.RepetitionPenalty),
		MinP:              cmp.Or(override.MinP, p.MinP),
	}
}

// ChatMessage is one turn of a brainstorming conversation.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// AIModel describes one model offered by a provider.
type AIModel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Provider string `json:"provider"`
}
