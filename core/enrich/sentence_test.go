package enrich

import (
	"context"
	"testing"

	"github.com/gaurav-prasanna/senseiharvest/core/extract/extracttest"
	"github.com/gaurav-prasanna/senseiharvest/core/fetch/fetchtest"
	"github.com/gaurav-prasanna/senseiharvest/crawl"
	"github.com/stretchr/testify/require"
)

const base = "https://jlptsensei.test"

func candidateURLs(term, reading string) []string {
	var out []string
	for _, c := range crawl.SentenceCandidates(base, term, reading, "n5", crawl.DefaultIrregularTerms, 0) {
		out = append(out, c.URL)
	}
	return out
}

func TestSentenceResolverStopsAtFirstSuccess(t *testing.T) {
	urls := candidateURLs("水", "みず")
	site := fetchtest.New().
		Page(urls[2], extracttest.VocabDetail(extracttest.Sentence{JP: "水を飲みます。", EN: "I drink water."})).
		Page(urls[3], extracttest.VocabDetail(extracttest.Sentence{JP: "unused", EN: "unused"}))

	r := NewSentenceResolver(site, base, FixedChooser(0))
	got, ok := r.Resolve(context.Background(), "水", "みず", "n5")

	require.True(t, ok)
	require.Equal(t, "水を飲みます。", got.Source)
	require.Equal(t, "I drink water.", got.Target)
	require.Equal(t, crawl.StrategyLevel, got.Strategy)
	require.Equal(t, urls[:3], site.Calls())
}

func TestSentenceResolverIrregularTerm(t *testing.T) {
	urls := candidateURLs("晩ご飯", "ばんごはん")
	require.Len(t, urls, 5)
	site := fetchtest.New().
		Page(urls[4], extracttest.VocabDetail(extracttest.Sentence{JP: "晩御飯を食べました。", EN: "I ate dinner."}))

	r := NewSentenceResolver(site, base, FixedChooser(0))
	got, ok := r.Resolve(context.Background(), "晩ご飯", "ばんごはん", "n5")

	require.True(t, ok)
	require.Equal(t, "晩御飯を食べました。", got.Source)
	require.Equal(t, crawl.StrategyIrregular, got.Strategy)
	require.Len(t, site.Calls(), 5)
}

func TestSentenceResolverUsesChooser(t *testing.T) {
	urls := candidateURLs("本", "ほん")
	site := fetchtest.New().Page(urls[0], extracttest.VocabDetail(
		extracttest.Sentence{JP: "一", EN: "one"},
		extracttest.Sentence{JP: "二", EN: "two"},
		extracttest.Sentence{JP: "三", EN: "three"},
	))

	r := NewSentenceResolver(site, base, FixedChooser(2))
	got, ok := r.Resolve(context.Background(), "本", "ほん", "n5")
	require.True(t, ok)
	require.Equal(t, "三", got.Source)
	require.Equal(t, "three", got.Target)
}

func TestSentenceResolverSeededChooserIsReproducible(t *testing.T) {
	urls := candidateURLs("本", "ほん")
	page := extracttest.VocabDetail(
		extracttest.Sentence{JP: "一", EN: "one"},
		extracttest.Sentence{JP: "二", EN: "two"},
		extracttest.Sentence{JP: "三", EN: "three"},
		extracttest.Sentence{JP: "四", EN: "four"},
	)

	pick := func() []string {
		site := fetchtest.New().Page(urls[0], page)
		r := NewSentenceResolver(site, base, NewChooser(42))
		var picked []string
		for i := 0; i < 8; i++ {
			got, ok := r.Resolve(context.Background(), "本", "ほん", "n5")
			require.True(t, ok)
			picked = append(picked, got.Source)
		}
		return picked
	}
	require.Equal(t, pick(), pick())
}

func TestSentenceResolverEmpty(t *testing.T) {
	t.Run("no page", func(t *testing.T) {
		site := fetchtest.New()
		r := NewSentenceResolver(site, base, FixedChooser(0))
		_, ok := r.Resolve(context.Background(), "水", "みず", "n5")
		require.False(t, ok)
		require.Len(t, site.Calls(), 4)
	})

	t.Run("page without examples ends the search", func(t *testing.T) {
		urls := candidateURLs("水", "みず")
		site := fetchtest.New().
			Page(urls[0], extracttest.VocabDetail()).
			Page(urls[1], extracttest.VocabDetail(extracttest.Sentence{JP: "x", EN: "y"}))
		r := NewSentenceResolver(site, base, FixedChooser(0))
		got, ok := r.Resolve(context.Background(), "水", "みず", "n5")
		require.False(t, ok)
		require.Empty(t, got.Source)
		require.Equal(t, urls[:1], site.Calls())
	})

	t.Run("transient candidate falls through", func(t *testing.T) {
		urls := candidateURLs("水", "みず")
		site := fetchtest.New().
			Transient(urls[0]).
			Page(urls[1], extracttest.VocabDetail(extracttest.Sentence{JP: "x", EN: "y"}))
		r := NewSentenceResolver(site, base, FixedChooser(0))
		got, ok := r.Resolve(context.Background(), "水", "みず", "n5")
		require.True(t, ok)
		require.Equal(t, "x", got.Source)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		site := fetchtest.New()
		r := NewSentenceResolver(site, base, FixedChooser(0))
		_, ok := r.Resolve(ctx, "水", "みず", "n5")
		require.False(t, ok)
		require.Len(t, site.Calls(), 1)
	})
}

func TestFixedChooserClamps(t *testing.T) {
	require.Equal(t, 1, FixedChooser(5).IntN(2))
	require.Equal(t, 0, FixedChooser(-1).IntN(3))
}
