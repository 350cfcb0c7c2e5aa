package crawl

import (
	"context"
	"errors"
	"testing"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
	"github.com/gaurav-prasanna/senseiharvest/core/extract/extracttest"
	"github.com/gaurav-prasanna/senseiharvest/core/fetch/fetchtest"
	"github.com/stretchr/testify/require"
)

const testBase = "https://jlptsensei.test"

var n5Vocab = core.CollectionID{Level: "n5", Kind: core.Vocabulary}

func TestPaginateAccumulatesUntilNotFound(t *testing.T) {
	site := fetchtest.New().
		Page(ListPageURL(testBase, n5Vocab, 1), extracttest.VocabPage(extracttest.VocabRows(1, 20))).
		Page(ListPageURL(testBase, n5Vocab, 2), extracttest.VocabPage(extracttest.VocabRows(21, 15)))

	p := &Paginator{Fetcher: site, BaseURL: testBase}
	coll, err := p.Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)

	require.Equal(t, 35, coll.Len())
	for i, rec := range coll.Records {
		require.Equal(t, i+1, rec.Index)
	}
	require.Equal(t, "語35", coll.Records[34].Get("Vocabulary"))
	require.Equal(t, []string{
		ListPageURL(testBase, n5Vocab, 1),
		ListPageURL(testBase, n5Vocab, 2),
		ListPageURL(testBase, n5Vocab, 3),
	}, site.Calls())
}

func TestPaginateStopsOnNoMoreRows(t *testing.T) {
	site := fetchtest.New().
		Page(ListPageURL(testBase, n5Vocab, 1), extracttest.VocabPage(extracttest.VocabRows(1, 4))).
		Page(ListPageURL(testBase, n5Vocab, 2), extracttest.EmptyTablePage("jl-vocab")).
		Page(ListPageURL(testBase, n5Vocab, 3), extracttest.VocabPage(extracttest.VocabRows(5, 4)))

	coll, err := (&Paginator{Fetcher: site, BaseURL: testBase}).Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)
	require.Equal(t, 4, coll.Len())
	require.Equal(t, 0, site.Count(ListPageURL(testBase, n5Vocab, 3)))
}

func TestPaginateDiscoversSchemaOnce(t *testing.T) {
	site := fetchtest.New()
	for page := 1; page <= 4; page++ {
		site.Page(ListPageURL(testBase, n5Vocab, page), extracttest.VocabPage(extracttest.VocabRows(page*10, 3)))
	}

	discovered := 0
	var first core.ColumnSchema
	var used []core.ColumnSchema
	p := &Paginator{
		Fetcher: site,
		BaseURL: testBase,
		Discover: func(markup string, kind core.LessonKind) (core.ColumnSchema, error) {
			discovered++
			s, err := extract.DiscoverSchema(markup, kind)
			first = s
			return s, err
		},
		Extract: func(markup string, schema core.ColumnSchema) ([]map[string]string, error) {
			used = append(used, schema)
			return extract.ExtractRows(markup, schema)
		},
	}

	coll, err := p.Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)
	require.Equal(t, 12, coll.Len())
	require.Equal(t, 1, discovered)
	require.Len(t, used, 4)
	for _, s := range used {
		require.True(t, first.Equal(s))
	}
	require.True(t, first.Equal(coll.Schema))
}

func TestPaginateRetriesTransient(t *testing.T) {
	site := fetchtest.New().
		Page(ListPageURL(testBase, n5Vocab, 1), extracttest.VocabPage(extracttest.VocabRows(1, 2))).
		Sequence(ListPageURL(testBase, n5Vocab, 2),
			fetchtest.Failure(),
			fetchtest.Failure(),
			fetchtest.Success(extracttest.VocabPage(extracttest.VocabRows(3, 2))),
		)

	p := &Paginator{Fetcher: site, BaseURL: testBase, Retry: RetryPolicy{Attempts: 2}}
	coll, err := p.Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)
	require.Equal(t, 4, coll.Len())
	require.Equal(t, 3, site.Count(ListPageURL(testBase, n5Vocab, 2)))
}

func TestPaginateTransientExhausted(t *testing.T) {
	newSite := func() *fetchtest.Scripted {
		return fetchtest.New().
			Page(ListPageURL(testBase, n5Vocab, 1), extracttest.VocabPage(extracttest.VocabRows(1, 2))).
			Transient(ListPageURL(testBase, n5Vocab, 2))
	}

	t.Run("fails the collection", func(t *testing.T) {
		site := newSite()
		_, err := (&Paginator{Fetcher: site, BaseURL: testBase, Retry: RetryPolicy{Attempts: 1}}).Paginate(context.Background(), n5Vocab)

		var transient *core.TransientError
		require.True(t, errors.As(err, &transient))
		require.Equal(t, 2, transient.Attempts)
		require.Equal(t, 2, site.Count(ListPageURL(testBase, n5Vocab, 2)))
	})

	t.Run("accept truncated", func(t *testing.T) {
		p := &Paginator{Fetcher: newSite(), BaseURL: testBase, AcceptTruncated: true}
		coll, err := p.Paginate(context.Background(), n5Vocab)
		require.NoError(t, err)
		require.Equal(t, 2, coll.Len())
	})
}

func TestPaginateHonoursPageCap(t *testing.T) {
	site := fetchtest.New()
	for page := 1; page <= 10; page++ {
		site.Page(ListPageURL(testBase, n5Vocab, page), extracttest.VocabPage(extracttest.VocabRows(page, 1)))
	}

	var events []PageEvent
	p := &Paginator{Fetcher: site, BaseURL: testBase, MaxPages: 5, OnPage: func(e PageEvent) { events = append(events, e) }}
	coll, err := p.Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)
	require.Equal(t, 5, coll.Len())
	require.Len(t, site.Calls(), 5)
	require.Len(t, events, 5)
	require.Equal(t, 5, events[4].Total)
}

func TestPaginateResolvesRelativeRowLinks(t *testing.T) {
	n4Grammar := core.CollectionID{Level: "n4", Kind: core.Grammar}
	rows := extracttest.GrammarRows("", 1, 2)
	rows[1].Href = "https://cdn.example.com/bunpou-2/"
	site := fetchtest.New().Page(ListPageURL(testBase, n4Grammar, 1), extracttest.GrammarPage(rows))

	coll, err := (&Paginator{Fetcher: site, BaseURL: testBase}).Paginate(context.Background(), n4Grammar)
	require.NoError(t, err)
	require.Equal(t, 2, coll.Len())
	require.Equal(t, testBase+"/learn-japanese-grammar/bunpou-1/", coll.Records[0].Get(extract.SourceField))
	require.Equal(t, "https://cdn.example.com/bunpou-2/", coll.Records[1].Get(extract.SourceField))
}

func TestPaginateSchemaErrorIsFatal(t *testing.T) {
	site := fetchtest.New().Page(ListPageURL(testBase, n5Vocab, 1), extracttest.NoTablePage())

	_, err := (&Paginator{Fetcher: site, BaseURL: testBase}).Paginate(context.Background(), n5Vocab)
	var schemaErr *core.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	require.Len(t, site.Calls(), 1)
}

func TestPaginateMissingFirstPage(t *testing.T) {
	coll, err := (&Paginator{Fetcher: fetchtest.New(), BaseURL: testBase}).Paginate(context.Background(), n5Vocab)
	require.NoError(t, err)
	require.Equal(t, 0, coll.Len())
	require.True(t, coll.Schema.IsZero())
}

func TestPaginateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Paginator{Fetcher: fetchtest.New(), BaseURL: testBase}).Paginate(ctx, n5Vocab)
	require.ErrorIs(t, err, context.Canceled)
}
