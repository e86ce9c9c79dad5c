package prompt

import (
	"context"
	"slices"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"storynexus/pkg/lorebook"
	"storynexus/pkg/schema"
	"storynexus/pkg/utils"
)

// Section headers used when assembling brainstorm context.
const (
	summariesHeader = "Chapter Summaries:"
	contentHeader   = "Chapter Content:"
	worldInfoHeader = "World Info:"
)

// brainstormContext assembles story context for brainstorming. With the
// full-context flag set it combines every chapter summary with every
// enabled lorebook entry; otherwise it resolves the three independently
// selectable pieces (summaries, chapter content, lorebook entries).
// Chapter content fetch failures degrade to an empty string for that
// chapter; every other failure propagates.
func (r *Resolvers) brainstormContext(ctx context.Context, pc *Context, _ string) (string, error) {
	if pc.Additional.IncludeFullContext {
		return r.fullContext(ctx, pc)
	}
	return r.selectedContext(ctx, pc)
}

func (r *Resolvers) fullContext(ctx context.Context, pc *Context) (string, error) {
	var sections []string

	if summaries := summariesBefore(pc.Chapters, nil); summaries != "" {
		sections = append(sections, summariesHeader+"\n"+summaries)
	}

	entries, err := r.lorebook.EntriesByStory(ctx, pc.StoryID)
	if err != nil {
		return "", err
	}
	if world := lorebook.FormatEntries(entries); world != "" {
		sections = append(sections, worldInfoHeader+"\n"+world)
	}

	return strings.Join(sections, "\n\n"), nil
}

func (r *Resolvers) selectedContext(ctx context.Context, pc *Context) (string, error) {
	var sections []string

	if summaries := selectedSummaries(pc); summaries != "" {
		sections = append(sections, summariesHeader+"\n"+summaries)
	}

	if content, err := r.selectedContent(ctx, pc.Additional.SelectedChapterContent); err != nil {
		return "", err
	} else if content != "" {
		sections = append(sections, contentHeader+"\n"+content)
	}

	if ids := pc.Additional.SelectedLorebookIDs; len(ids) > 0 {
		entries, err := r.lorebook.EntriesByIDs(ctx, ids)
		if err != nil {
			return "", err
		}
		if world := lorebook.FormatEntries(entries); world != "" {
			sections = append(sections, worldInfoHeader+"\n"+world)
		}
	}

	if len(sections) == 0 {
		return noContextText, nil
	}
	return strings.Join(sections, "\n\n"), nil
}

// selectedSummaries resolves the summary selection against the chapters
// already loaded into the context. The AllChapters sentinel wins over any
// specific ids listed alongside it.
func selectedSummaries(pc *Context) string {
	ids := pc.Additional.SelectedSummaries
	if len(ids) == 0 {
		return ""
	}
	if slices.Contains(ids, AllChapters) {
		return summariesBefore(pc.Chapters, nil)
	}

	byID := make(map[string]schema.Chapter, len(pc.Chapters))
	for _, ch := range pc.Chapters {
		byID[ch.ID] = ch
	}
	var parts []string
	for _, id := range ids {
		ch, ok := byID[id]
		if !ok {
			continue
		}
		if s := strings.TrimSpace(ch.Summary); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// selectedContent fetches and flattens the selected chapters concurrently,
// reassembling results in the original id order. A failed fetch logs and
// contributes nothing rather than aborting the other chapters.
func (r *Resolvers) selectedContent(ctx context.Context, ids []string) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}

	results := make([]string, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			ch, err := r.chapters.ChapterByID(gctx, id)
			if err != nil {
				log.Warn("skipping chapter content in brainstorm context", "chapter", id, "error", err)
				return nil
			}
			results[i] = utils.ExtractPlainText(ch.Content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	var parts []string
	for _, text := range results {
		if strings.TrimSpace(text) != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}
