package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
)

// DefaultMaxPages bounds a collection that never signals its last page.
const DefaultMaxPages = 200

// RetryPolicy retries transient list-page failures. Attempts is the number
// of retries after the first try; the wait grows linearly by Backoff.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// PageEvent is reported after each list page has been appended.
type PageEvent struct {
	ID     core.CollectionID
	Page   int
	URL    string
	Rows   int
	Total  int
	Schema core.ColumnSchema
}

// Paginator walks list pages 1, 2, ... until a page is missing, has no
// rows, or MaxPages is reached.
type Paginator struct {
	Fetcher  core.Fetcher
	BaseURL  string
	MaxPages int
	Retry    RetryPolicy
	// AcceptTruncated ends the collection on a page that stays transient
	// after retries instead of failing it.
	AcceptTruncated bool
	OnPage          func(PageEvent)

	// Discover and Extract default to the extract package.
	Discover func(markup string, kind core.LessonKind) (core.ColumnSchema, error)
	Extract  func(markup string, schema core.ColumnSchema) ([]map[string]string, error)
}

// Paginate harvests every list page of id into a new collection. The
// schema is discovered from page 1 only and reused for later pages.
func (p *Paginator) Paginate(ctx context.Context, id core.CollectionID) (*core.Collection, error) {
	discover := p.Discover
	if discover == nil {
		discover = extract.DiscoverSchema
	}
	extractRows := p.Extract
	if extractRows == nil {
		extractRows = extract.ExtractRows
	}
	maxPages := p.MaxPages
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}

	coll := core.NewCollection(id)

	for page := 1; ; page++ {
		if page > maxPages {
			slog.WarnContext(ctx, "page cap reached, ending collection", "collection", id.String(), "max_pages", maxPages)
			return coll, nil
		}

		pageURL := ListPageURL(p.BaseURL, id, page)
		res, attempts := p.fetch(ctx, pageURL)
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch res.Status {
		case core.FetchNotFound:
			slog.DebugContext(ctx, "list page missing, collection complete", "collection", id.String(), "page", page, "status", res.StatusCode)
			return coll, nil
		case core.FetchTransient:
			if !p.AcceptTruncated {
				return nil, &core.TransientError{URL: pageURL, Attempts: attempts, Err: res.Err}
			}
			slog.WarnContext(ctx, "list page kept failing, ending collection early",
				"collection", id.String(), "page", page, "attempts", attempts, "err", res.Err)
			return coll, nil
		}

		markup := res.HTML()
		if page == 1 {
			schema, err := discover(markup, id.Kind)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", id, err)
			}
			coll.Schema = schema
		}

		rows, err := extractRows(markup, coll.Schema)
		if errors.Is(err, core.ErrNoMoreRows) {
			slog.DebugContext(ctx, "no more table rows", "collection", id.String(), "page", page)
			return coll, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%s page %d: %w", id, page, err)
		}

		for _, row := range rows {
			for _, col := range coll.Schema.Columns {
				if col.Rule != core.RuleRowLink {
					continue
				}
				if abs := ResolveURL(row[col.Name], pageURL); abs != "" {
					row[col.Name] = abs
				}
			}
			if _, err := coll.Append(row); err != nil {
				return nil, err
			}
		}

		if p.OnPage != nil {
			p.OnPage(PageEvent{ID: id, Page: page, URL: pageURL, Rows: len(rows), Total: coll.Len(), Schema: coll.Schema})
		}
	}
}

// fetch tries url once plus the configured retries while the result stays
// transient. It returns the last result and the number of attempts made.
func (p *Paginator) fetch(ctx context.Context, url string) (core.FetchResult, int) {
	var res core.FetchResult
	attempts := 0
	for attempts <= p.Retry.Attempts {
		attempts++
		res = p.Fetcher.Fetch(ctx, url)
		if res.Status != core.FetchTransient || attempts > p.Retry.Attempts {
			break
		}
		slog.InfoContext(ctx, "retrying list page", "url", url, "attempt", attempts, "err", res.Err)
		if err := wait(ctx, time.Duration(attempts)*p.Retry.Backoff); err != nil {
			break
		}
	}
	return res, attempts
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
