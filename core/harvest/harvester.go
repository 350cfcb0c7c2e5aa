// Package harvest drives one (level, lesson kind) collection from its list
// pages through enrichment to the sink.
package harvest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/checkpoint"
	"github.com/gaurav-prasanna/senseiharvest/crawl"
	"golang.org/x/sync/errgroup"
)

// RecordEvent is reported after each record's enrichment step, in
// completion order.
type RecordEvent struct {
	ID       core.CollectionID
	Index    int
	Total    int
	Key      string
	Enriched bool
	Cached   bool
}

// Options configures a harvester. Fetcher is required; everything else
// has a usable zero value.
type Options struct {
	Fetcher core.Fetcher
	// Sink receives the finished collection. Nil skips persistence.
	Sink    core.Sink
	BaseURL string

	MaxPages        int
	Retry           crawl.RetryPolicy
	AcceptTruncated bool
	OnPage          func(crawl.PageEvent)
	OnRecord        func(RecordEvent)

	// Workers bounds concurrent enrichment within the collection. Values
	// below 2 enrich one record at a time, in order.
	Workers int
	// Checkpoint, when set, supplies enrichment resolved by earlier runs.
	Checkpoint *checkpoint.Store

	Vocabulary VocabularyOptions
	Grammar    GrammarOptions
}

// enricher is the per-kind enrichment step.
type enricher interface {
	// key identifies the record's content for checkpoint validation.
	key(rec *core.Record) string
	resolve(ctx context.Context, id core.CollectionID, rec *core.Record) checkpoint.Entry
	// reusable reports whether a stored entry is still valid.
	reusable(e checkpoint.Entry) bool
	apply(rec *core.Record, e checkpoint.Entry)
}

type harvester struct {
	kind     core.LessonKind
	opts     Options
	enricher func(id core.CollectionID) enricher
}

// New returns the harvester variant for kind.
func New(kind core.LessonKind, opts Options) (core.Harvester, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("harvest: fetcher is required")
	}
	h := &harvester{kind: kind, opts: opts}
	switch kind {
	case core.Vocabulary:
		h.enricher = newVocabulary(opts)
	case core.Grammar:
		h.enricher = newGrammar(opts)
	default:
		return nil, fmt.Errorf("harvest: unsupported lesson kind %q", kind)
	}
	return h, nil
}

func (h *harvester) Kind() core.LessonKind {
	return h.kind
}

// Harvest paginates the collection, enriches every record, then hands the
// closed collection to the sink.
func (h *harvester) Harvest(ctx context.Context, level core.Level) (*core.Collection, error) {
	id := core.CollectionID{Level: level, Kind: h.kind}

	p := &crawl.Paginator{
		Fetcher:         h.opts.Fetcher,
		BaseURL:         h.opts.BaseURL,
		MaxPages:        h.opts.MaxPages,
		Retry:           h.opts.Retry,
		AcceptTruncated: h.opts.AcceptTruncated,
		OnPage:          h.opts.OnPage,
	}
	c, err := p.Paginate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Schema.IsZero() {
		return nil, fmt.Errorf("%s: %w", id, core.ErrEmptyCollection)
	}
	c.Close()
	slog.InfoContext(ctx, "collection paginated", "collection", id.String(), "records", c.Len())

	if err := h.enrichAll(ctx, c); err != nil {
		return nil, fmt.Errorf("%s enrichment: %w", id, err)
	}

	if h.opts.Sink == nil {
		return c, nil
	}
	if _, err := h.opts.Sink.PersistCollection(ctx, c); err != nil {
		return nil, fmt.Errorf("persisting %s: %w", id, err)
	}
	if err := h.opts.Sink.Emit(ctx, c, c.MediaFiles()); err != nil {
		return nil, fmt.Errorf("emitting %s: %w", id, err)
	}
	return c, nil
}

// enrichAll resolves every record and writes the results back by index.
func (h *harvester) enrichAll(ctx context.Context, c *core.Collection) error {
	e := h.enricher(c.ID)
	results := make([]checkpoint.Entry, c.Len())

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(h.opts.Workers, 1))
	for i, rec := range c.Records {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = h.enrichRecord(gctx, c, e, rec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	missing := 0
	for i, rec := range c.Records {
		e.apply(rec, results[i])
		if !rec.Enriched() {
			missing++
		}
	}
	slog.InfoContext(ctx, "collection enriched", "collection", c.ID.String(), "records", c.Len(), "missing", missing)
	return nil
}

func (h *harvester) enrichRecord(ctx context.Context, c *core.Collection, e enricher, rec *core.Record) checkpoint.Entry {
	key := e.key(rec)
	store := h.opts.Checkpoint

	if store != nil {
		entry, ok, err := store.Get(ctx, c.ID, rec.Index, key)
		if err != nil {
			slog.WarnContext(ctx, "checkpoint lookup failed", "collection", c.ID.String(), "index", rec.Index, "err", err)
		}
		if ok && e.reusable(entry) {
			h.report(c, rec, key, true, true)
			return entry
		}
	}

	entry := e.resolve(ctx, c.ID, rec)
	entry.Term = key
	enriched := entry.SentenceSource != "" || entry.MediaPath != "" || entry.Notes != ""
	if !enriched && ctx.Err() == nil {
		slog.InfoContext(ctx, "record not enriched", "collection", c.ID.String(), "index", rec.Index, "key", key)
	}

	if store != nil && enriched && ctx.Err() == nil {
		if err := store.Put(ctx, c.ID, rec.Index, entry); err != nil {
			slog.WarnContext(ctx, "checkpoint write failed", "collection", c.ID.String(), "index", rec.Index, "err", err)
		}
	}
	h.report(c, rec, key, enriched, false)
	return entry
}

func (h *harvester) report(c *core.Collection, rec *core.Record, key string, enriched, cached bool) {
	if h.opts.OnRecord == nil {
		return
	}
	h.opts.OnRecord(RecordEvent{
		ID:       c.ID,
		Index:    rec.Index,
		Total:    c.Len(),
		Key:      key,
		Enriched: enriched,
		Cached:   cached,
	})
}
