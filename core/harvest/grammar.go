package harvest

import (
	"context"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/checkpoint"
	"github.com/gaurav-prasanna/senseiharvest/core/enrich"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
)

// GrammarOptions configures flashcard and notes enrichment.
type GrammarOptions struct {
	// MediaDir returns where a level's flashcards are written. Nil uses
	// grammar/flashcard_images/{level} under the working directory.
	MediaDir func(id core.CollectionID) string
	// Normalizer and NotesSelector enable Markdown notes when both are set.
	Normalizer    core.Normalizer
	NotesSelector string
}

type grammar struct {
	resolver *enrich.ImageResolver
}

func newGrammar(opts Options) func(core.CollectionID) enricher {
	mediaDir := opts.Grammar.MediaDir
	if mediaDir == nil {
		mediaDir = func(id core.CollectionID) string {
			return filepath.Join(string(core.Grammar), "flashcard_images", string(id.Level))
		}
	}
	return func(id core.CollectionID) enricher {
		return grammar{resolver: &enrich.ImageResolver{
			Fetcher:       opts.Fetcher,
			MediaDir:      mediaDir(id),
			Normalizer:    opts.Grammar.Normalizer,
			NotesSelector: opts.Grammar.NotesSelector,
		}}
	}
}

func (g grammar) key(rec *core.Record) string {
	return rec.Get(extract.GrammarField)
}

func (g grammar) resolve(ctx context.Context, _ core.CollectionID, rec *core.Record) checkpoint.Entry {
	d := g.resolver.ResolveDetail(ctx, rec.SourceURL, rec.Index)
	return checkpoint.Entry{MediaPath: d.MediaPath, Notes: d.Notes}
}

// reusable requires the flashcard to still be on disk.
func (g grammar) reusable(e checkpoint.Entry) bool {
	if e.MediaPath == "" {
		return false
	}
	_, err := os.Stat(e.MediaPath)
	return err == nil
}

func (g grammar) apply(rec *core.Record, e checkpoint.Entry) {
	rec.MediaPath = e.MediaPath
	rec.Notes = e.Notes
}
