package prompt

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"storynexus/pkg/schema"
)

// Builder assembles a Context from a ParserConfig and fresh story data.
type Builder struct {
	chapters ChapterSource
}

func NewBuilder(chapters ChapterSource) *Builder {
	return &Builder{chapters: chapters}
}

// Build fetches the story's chapters and, when a chapter id is set, the
// current chapter, both concurrently. Either fetch failing fails the
// whole build; no partial context is ever returned.
func (b *Builder) Build(ctx context.Context, cfg ParserConfig) (*Context, error) {
	var (
		chapters []schema.Chapter
		current  *schema.Chapter
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		chapters, err = b.chapters.ChaptersByStory(gctx, cfg.StoryID)
		return err
	})
	if cfg.ChapterID != "" {
		g.Go(func() error {
			var err error
			current, err = b.chapters.ChapterByID(gctx, cfg.ChapterID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build prompt context: %w", err)
	}

	return &Context{
		StoryID:        cfg.StoryID,
		ChapterID:      cfg.ChapterID,
		SceneBeat:      cfg.SceneBeat,
		Chapters:       chapters,
		CurrentChapter: current,
		MatchedEntries: cfg.MatchedEntries,
		POV:            resolvePOV(cfg, current),
		Additional:     cfg.Additional,
	}, nil
}

// resolvePOV applies the fallback chain: explicit override, then the
// current chapter's stored POV, then third person omniscient.
func resolvePOV(cfg ParserConfig, current *schema.Chapter) schema.POV {
	if !cfg.POVOverride.IsZero() {
		pov := cfg.POVOverride
		if pov.Type == "" {
			pov.Type = schema.DefaultPOVType
		}
		return pov
	}
	if current != nil && current.POVType != "" {
		return current.POV()
	}
	return schema.POV{Type: schema.DefaultPOVType}
}
