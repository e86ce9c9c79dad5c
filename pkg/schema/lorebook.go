package schema

import "time"

// EntryScope controls where a lorebook entry applies.
type EntryScope string

const (
	ScopeGlobal EntryScope = "global"
	ScopeSeries EntryScope = "series"
	ScopeStory  EntryScope = "story"
)

// Entry categories offered by the UI. Category is stored as free text.
const (
	CategoryCharacter = "character"
	CategoryLocation  = "location"
	CategoryItem      = "item"
	CategoryEvent     = "event"
	CategoryConcept   = "concept"
)

// LorebookEntry is one world-building fact usable as AI context. Global
// entries carry no scope id; series and story entries require one.
// Disabled entries are excluded from tag matching and prompt formatting.
type LorebookEntry struct {
	ID          string        `json:"id" gorm:"primaryKey"`
	Scope       EntryScope    `json:"scope" gorm:"index"`
	ScopeID     string        `json:"scopeId,omitempty" gorm:"index"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Category    string        `json:"category,omitempty"`
	Tags        []string      `json:"tags,omitempty" gorm:"serializer:json"`
	Metadata    EntryMetadata `json:"metadata,omitempty" gorm:"serializer:json"`
	IsDisabled  bool          `json:"isDisabled"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// EntryMetadata carries the structured extras attached to an entry.
type EntryMetadata struct {
	Importance    string              `json:"importance,omitempty"`
	Status        string              `json:"status,omitempty"`
	Relationships []EntryRelationship `json:"relationships,omitempty"`
	Custom        map[string]string   `json:"custom,omitempty"`
}

// EntryRelationship links one entry to another ("sister of", "located in").
type EntryRelationship struct {
	TargetID string `json:"targetId"`
	Kind     string `json:"kind"`
}
