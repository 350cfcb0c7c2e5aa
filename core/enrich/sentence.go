// Package enrich resolves per-record detail pages and extracts the
// enrichment fields: example sentences for vocabulary and flashcard images
// for grammar. Failures are logged and never returned.
package enrich

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
	"github.com/gaurav-prasanna/senseiharvest/crawl"
)

// DefaultMaxCandidates caps detail URLs tried per term.
const DefaultMaxCandidates = 8

// Sentence is the picked example pair and the page it came from.
type Sentence struct {
	Source   string
	Target   string
	URL      string
	Strategy string
}

// SentenceResolver finds a vocabulary detail page and picks one example.
type SentenceResolver struct {
	Fetcher       core.Fetcher
	BaseURL       string
	Chooser       Chooser
	Irregular     map[string][]string
	MaxCandidates int
}

// NewSentenceResolver creates a resolver with the default irregular-term
// list and candidate cap.
func NewSentenceResolver(fetcher core.Fetcher, baseURL string, chooser Chooser) *SentenceResolver {
	return &SentenceResolver{
		Fetcher:       fetcher,
		BaseURL:       baseURL,
		Chooser:       chooser,
		Irregular:     crawl.DefaultIrregularTerms,
		MaxCandidates: DefaultMaxCandidates,
	}
}

// Resolve tries the candidate URLs for term in order and stops at the
// first page that loads. It reports false when no page loads or the page
// has no example sentences.
func (r *SentenceResolver) Resolve(ctx context.Context, term, reading string, level core.Level) (Sentence, bool) {
	candidates := crawl.SentenceCandidates(r.BaseURL, term, reading, level, r.Irregular, r.MaxCandidates)

	for _, c := range candidates {
		res := r.Fetcher.Fetch(ctx, c.URL)
		if ctx.Err() != nil {
			return Sentence{}, false
		}
		if res.Status != core.FetchSuccess {
			slog.DebugContext(ctx, "detail candidate missed", "term", term, "strategy", c.Strategy, "status", res.Status.String())
			continue
		}

		examples, err := extract.Examples(res.HTML())
		if err != nil {
			if errors.Is(err, core.ErrExtractionMiss) {
				slog.InfoContext(ctx, "no example sentences", "term", term, "url", c.URL)
			} else {
				slog.WarnContext(ctx, "failed to parse detail page", "term", term, "url", c.URL, "err", err)
			}
			return Sentence{URL: c.URL, Strategy: c.Strategy}, false
		}

		picked := examples[r.choose(len(examples))]
		return Sentence{
			Source:   picked.Source,
			Target:   picked.Target,
			URL:      c.URL,
			Strategy: c.Strategy,
		}, true
	}

	slog.InfoContext(ctx, "no detail page found", "term", term, "tried", len(candidates))
	return Sentence{}, false
}

func (r *SentenceResolver) choose(n int) int {
	if n <= 1 {
		return 0
	}
	chooser := r.Chooser
	if chooser == nil {
		chooser = globalChooser{}
	}
	return chooser.IntN(n)
}
