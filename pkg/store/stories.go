package store

import (
	"context"
	"fmt"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"

	"storynexus/pkg/schema"
)

// StoryStore provides access to the stories table.
type StoryStore struct {
	db *gorm.DB
}

func (s *StoryStore) Create(ctx context.Context, story *schema.Story) error {
	if story.ID == "" {
		story.ID = ksuid.New().String()
	}
	if err := s.db.WithContext(ctx).Create(story).Error; err != nil {
		return fmt.Errorf("failed to create story: %w", err)
	}
	return nil
}

func (s *StoryStore) ByID(ctx context.Context, id string) (*schema.Story, error) {
	var story schema.Story
	if err := s.db.WithContext(ctx).First(&story, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "story", id)
	}
	return &story, nil
}

func (s *StoryStore) List(ctx context.Context) ([]schema.Story, error) {
	var stories []schema.Story
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&stories).Error; err != nil {
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}
	return stories, nil
}

func (s *StoryStore) Update(ctx context.Context, story *schema.Story) error {
	tx := s.db.WithContext(ctx).Save(story)
	if tx.Error != nil {
		return fmt.Errorf("failed to update story %s: %w", story.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("story %s: %w", story.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a story along with its chapters and outlines.
func (s *StoryStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var chapterIDs []string
		if err := tx.Model(&schema.Chapter{}).Where("story_id = ?", id).Pluck("id", &chapterIDs).Error; err != nil {
			return err
		}
		if len(chapterIDs) > 0 {
			if err := tx.Delete(&schema.ChapterOutline{}, "chapter_id IN ?", chapterIDs).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&schema.Chapter{}, "story_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&schema.Story{}, "id = ?", id).Error
	})
}
