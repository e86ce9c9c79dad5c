package store

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"

	"storynexus/pkg/schema"
)

// LorebookStore provides access to lorebook entries. Filtering by the
// disabled flag is left to callers; matching and formatting skip
// disabled entries themselves.
type LorebookStore struct {
	db *gorm.DB
}

func (s *LorebookStore) Create(ctx context.Context, e *schema.LorebookEntry) error {
	if e.Scope != schema.ScopeGlobal && e.ScopeID == "" {
		return fmt.Errorf("%s-scoped entry requires a scope id", e.Scope)
	}
	if e.Scope == schema.ScopeGlobal {
		e.ScopeID = ""
	}
	if e.ID == "" {
		e.ID = ksuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
		return fmt.Errorf("failed to create lorebook entry: %w", err)
	}
	return nil
}

func (s *LorebookStore) ByID(ctx context.Context, id string) (*schema.LorebookEntry, error) {
	var e schema.LorebookEntry
	if err := s.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "lorebook entry", id)
	}
	return &e, nil
}

func (s *LorebookStore) Update(ctx context.Context, e *schema.LorebookEntry) error {
	tx := s.db.WithContext(ctx).Save(e)
	if tx.Error != nil {
		return fmt.Errorf("failed to update lorebook entry %s: %w", e.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("lorebook entry %s: %w", e.ID, ErrNotFound)
	}
	return nil
}

func (s *LorebookStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&schema.LorebookEntry{}, "id = ?", id).Error
}

// Entries lists entries for one scope level.
func (s *LorebookStore) Entries(ctx context.Context, scope schema.EntryScope, scopeID string) ([]schema.LorebookEntry, error) {
	q := s.db.WithContext(ctx).Where("scope = ?", scope)
	if scope != schema.ScopeGlobal {
		q = q.Where("scope_id = ?", scopeID)
	}
	var entries []schema.LorebookEntry
	if err := q.Order("name asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s lorebook entries: %w", scope, err)
	}
	return entries, nil
}

// EntriesByStory returns every entry visible to a story: its own entries,
// its series' entries (when the story belongs to one), and global entries.
func (s *LorebookStore) EntriesByStory(ctx context.Context, storyID string) ([]schema.LorebookEntry, error) {
	var story schema.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", storyID).Error; err != nil {
		return nil, notFound(err, "story", storyID)
	}

	q := s.db.WithContext(ctx).Where("scope = ?", schema.ScopeGlobal).
		Or("scope = ? AND scope_id = ?", schema.ScopeStory, storyID)
	if story.SeriesID != "" {
		q = q.Or("scope = ? AND scope_id = ?", schema.ScopeSeries, story.SeriesID)
	}

	var entries []schema.LorebookEntry
	if err := s.db.WithContext(ctx).Where(q).Order("name asc").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to list lorebook entries for story %s: %w", storyID, err)
	}
	return entries, nil
}

// EntriesByIDs returns the entries for the given ids, preserving id order.
// Unknown ids are skipped.
func (s *LorebookStore) EntriesByIDs(ctx context.Context, ids []string) ([]schema.LorebookEntry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var entries []schema.LorebookEntry
	if err := s.db.WithContext(ctx).Find(&entries, "id IN ?", ids).Error; err != nil {
		return nil, fmt.Errorf("failed to load lorebook entries: %w", err)
	}

	byID := make(map[string]schema.LorebookEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	ordered := make([]schema.LorebookEntry, 0, len(entries))
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			ordered = append(ordered, e)
		}
	}
	return ordered, nil
}
