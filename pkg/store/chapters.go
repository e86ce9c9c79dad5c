package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/segmentio/ksuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"storynexus/pkg/schema"
	"storynexus/pkg/utils"
)

// ChapterStore provides access to chapters and their outlines.
type ChapterStore struct {
	db *gorm.DB
}

func (s *ChapterStore) Create(ctx context.Context, ch *schema.Chapter) error {
	if ch.ID == "" {
		ch.ID = ksuid.New().String()
	}
	ch.WordCount = utils.CountWords(utils.ExtractPlainText(ch.Content))
	if err := s.db.WithContext(ctx).Create(ch).Error; err != nil {
		return fmt.Errorf("failed to create chapter: %w", err)
	}
	return nil
}

func (s *ChapterStore) Update(ctx context.Context, ch *schema.Chapter) error {
	ch.WordCount = utils.CountWords(utils.ExtractPlainText(ch.Content))
	tx := s.db.WithContext(ctx).Save(ch)
	if tx.Error != nil {
		return fmt.Errorf("failed to update chapter %s: %w", ch.ID, tx.Error)
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("chapter %s: %w", ch.ID, ErrNotFound)
	}
	return nil
}

func (s *ChapterStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&schema.ChapterOutline{}, "chapter_id = ?", id).Error; err != nil {
			return err
		}
		return tx.Delete(&schema.Chapter{}, "id = ?", id).Error
	})
}

// ChaptersByStory returns every chapter of a story in reading order.
func (s *ChapterStore) ChaptersByStory(ctx context.Context, storyID string) ([]schema.Chapter, error) {
	var chapters []schema.Chapter
	if err := s.db.WithContext(ctx).
		Where("story_id = ?", storyID).
		Order("sort_order asc").
		Find(&chapters).Error; err != nil {
		return nil, fmt.Errorf("failed to list chapters for story %s: %w", storyID, err)
	}
	return chapters, nil
}

func (s *ChapterStore) ChapterByID(ctx context.Context, id string) (*schema.Chapter, error) {
	var ch schema.Chapter
	if err := s.db.WithContext(ctx).First(&ch, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "chapter", id)
	}
	return &ch, nil
}

// PreviousChapter returns the chapter immediately before the given one in
// reading order, or nil when the chapter is the first of its story.
func (s *ChapterStore) PreviousChapter(ctx context.Context, chapterID string) (*schema.Chapter, error) {
	ch, err := s.ChapterByID(ctx, chapterID)
	if err != nil {
		return nil, err
	}

	var prev schema.Chapter
	err = s.db.WithContext(ctx).
		Where("story_id = ? AND sort_order < ?", ch.StoryID, ch.Order).
		Order("sort_order desc").
		First(&prev).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find previous chapter of %s: %w", chapterID, err)
	}
	return &prev, nil
}

// Outline returns the outline body for a chapter, or "" when none exists.
func (s *ChapterStore) Outline(ctx context.Context, chapterID string) (string, error) {
	var outline schema.ChapterOutline
	err := s.db.WithContext(ctx).First(&outline, "chapter_id = ?", chapterID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load outline for chapter %s: %w", chapterID, err)
	}
	return outline.Content, nil
}

func (s *ChapterStore) SaveOutline(ctx context.Context, outline *schema.ChapterOutline) error {
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(outline).Error
	if err != nil {
		return fmt.Errorf("failed to save outline for chapter %s: %w", outline.ChapterID, err)
	}
	return nil
}
