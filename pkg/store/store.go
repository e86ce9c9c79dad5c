// Package store provides the sqlite-backed persistence layer for
// stories, chapters, lorebook entries and prompt templates.
package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"storynexus/pkg/schema"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// Store holds the DB handle and the per-entity stores.
type Store struct {
	db       *gorm.DB
	Stories  *StoryStore
	Chapters *ChapterStore
	Lorebook *LorebookStore
	Prompts  *PromptStore
}

// Open opens (creating if needed) the sqlite database at path, runs
// migrations and seeds the default prompt templates when the prompt
// table is empty.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if err := db.AutoMigrate(
		&schema.Story{},
		&schema.Chapter{},
		&schema.ChapterOutline{},
		&schema.LorebookEntry{},
		&schema.Prompt{},
	); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Store{
		db:       db,
		Stories:  &StoryStore{db: db},
		Chapters: &ChapterStore{db: db},
		Lorebook: &LorebookStore{db: db},
		Prompts:  &PromptStore{db: db},
	}
	if err := s.Prompts.seedDefaults(); err != nil {
		return nil, fmt.Errorf("failed to seed default prompts: %w", err)
	}
	return s, nil
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// notFound maps gorm's record-not-found onto the store sentinel.
func notFound(err error, what, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
	}
	return err
}
