package schema

import (
	"strings"
	"time"
)

// Story is the top-level container for chapters, scoped lorebook entries
// and generation settings. Stories may optionally belong to a series so
// that series-scoped lorebook entries apply across books.
type Story struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	Author    string    `json:"author,omitempty"`
	Synopsis  string    `json:"synopsis,omitempty"`
	SeriesID  string    `json:"seriesId,omitempty" gorm:"index"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Chapter holds the editor's native document JSON in Content; plain text
// is always derived through utils.ExtractPlainText, never stored twice.
// Order defines the reading sequence within a story.
type Chapter struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	StoryID      string    `json:"storyId" gorm:"index"`
	Title        string    `json:"title"`
	Order        int       `json:"order" gorm:"column:sort_order"`
	Summary      string    `json:"summary,omitempty"`
	Content      string    `json:"content,omitempty"`
	POVType      string    `json:"povType,omitempty"`
	POVCharacter string    `json:"povCharacter,omitempty"`
	WordCount    int       `json:"wordCount"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// POV returns the chapter's stored point of view. Unset fields stay
// empty; fallback to defaults happens during context building.
func (c *Chapter) POV() POV {
	return POV{Type: c.POVType, Character: c.POVCharacter}
}

// ChapterOutline is the free-form planning document attached to a chapter.
type ChapterOutline struct {
	ChapterID string    `json:"chapterId" gorm:"primaryKey"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Narrative perspective types. These are the values the UI offers; POVType
// is stored as free text so custom perspectives keep working.
const (
	POVFirstPerson        = "First Person"
	POVThirdPersonLimited = "Third Person Limited"
	POVThirdPersonOmni    = "Third Person Omniscient"
	DefaultPOVType        = POVThirdPersonOmni
)

// POV is a narrative perspective plus the optional viewpoint character.
type POV struct {
	Type      string `json:"type"`
	Character string `json:"character,omitempty"`
}

// IsZero reports whether neither field is set.
func (p POV) IsZero() bool { return p.Type == "" && p.Character == "" }

// IsOmniscient matches any perspective type naming an omniscient narrator.
func (p POV) IsOmniscient() bool {
	return strings.Contains(strings.ToLower(p.Type), "omniscient")
}

// Matches reports whether text written under o can be reused as context
// for a generation running under p. Omniscient narration matches
// omniscient narration regardless of character; any other perspective
// requires both the type and the viewpoint character to agree.
func (p POV) Matches(o POV) bool {
	if p.IsOmniscient() && o.IsOmniscient() {
		return true
	}
	return strings.EqualFold(p.Type, o.Type) && strings.EqualFold(p.Character, o.Character)
}
