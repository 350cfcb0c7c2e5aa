package harvest

import (
	"context"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/checkpoint"
	"github.com/gaurav-prasanna/senseiharvest/core/enrich"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
)

// VocabularyOptions configures example-sentence enrichment.
type VocabularyOptions struct {
	// Chooser picks among a page's example blocks. Nil picks at random.
	Chooser enrich.Chooser
	// Irregular maps terms to alternate detail slugs. Nil uses
	// crawl.DefaultIrregularTerms.
	Irregular     map[string][]string
	MaxCandidates int
}

type vocabulary struct {
	resolver *enrich.SentenceResolver
}

func newVocabulary(opts Options) func(core.CollectionID) enricher {
	r := enrich.NewSentenceResolver(opts.Fetcher, opts.BaseURL, opts.Vocabulary.Chooser)
	if opts.Vocabulary.Irregular != nil {
		r.Irregular = opts.Vocabulary.Irregular
	}
	if opts.Vocabulary.MaxCandidates > 0 {
		r.MaxCandidates = opts.Vocabulary.MaxCandidates
	}
	v := vocabulary{resolver: r}
	return func(core.CollectionID) enricher { return v }
}

func (v vocabulary) key(rec *core.Record) string {
	return rec.Get(extract.TermField)
}

func (v vocabulary) resolve(ctx context.Context, id core.CollectionID, rec *core.Record) checkpoint.Entry {
	s, ok := v.resolver.Resolve(ctx, rec.Get(extract.TermField), rec.Get(extract.ReadingField), id.Level)
	if !ok {
		return checkpoint.Entry{}
	}
	return checkpoint.Entry{
		SentenceSource: s.Source,
		SentenceTarget: s.Target,
		SentenceURL:    s.URL,
	}
}

func (v vocabulary) reusable(e checkpoint.Entry) bool {
	return e.SentenceSource != ""
}

func (v vocabulary) apply(rec *core.Record, e checkpoint.Entry) {
	rec.SentenceSource = e.SentenceSource
	rec.SentenceTarget = e.SentenceTarget
	if e.SentenceURL != "" {
		rec.SourceURL = e.SentenceURL
	}
}
