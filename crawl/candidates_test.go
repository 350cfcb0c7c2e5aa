package crawl

import (
	"testing"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/stretchr/testify/require"
)

func urls(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.URL
	}
	return out
}

func TestSentenceCandidatesOrder(t *testing.T) {
	got := SentenceCandidates("https://jlptsensei.com/", "晩ご飯", "ばんごはん", "n5", DefaultIrregularTerms, 0)

	require.Equal(t, []string{
		"https://jlptsensei.com/learn-japanese-vocabulary/%E6%99%A9%E3%81%94%E9%A3%AF",
		"https://jlptsensei.com/learn-japanese-vocabulary/japanese-meaning-of-%E6%99%A9%E3%81%94%E9%A3%AF",
		"https://jlptsensei.com/learn-japanese-vocabulary/jlpt-n5-vocabulary-%E6%99%A9%E3%81%94%E9%A3%AF",
		"https://jlptsensei.com/learn-japanese-vocabulary/%E3%81%B0%E3%82%93%E3%81%94%E3%81%AF%E3%82%93",
		"https://jlptsensei.com/learn-japanese-vocabulary/%E6%99%A9%E5%BE%A1%E9%A3%AF",
	}, urls(got))

	strategies := make([]string, len(got))
	for i, c := range got {
		strategies[i] = c.Strategy
	}
	require.Equal(t, []string{StrategyTerm, StrategyMeaningOf, StrategyLevel, StrategyReading, StrategyIrregular}, strategies)
}

func TestSentenceCandidatesSkipsDuplicatesAndBlankReading(t *testing.T) {
	same := SentenceCandidates(DefaultBaseURL, "すし", "すし", "n4", nil, 0)
	require.Len(t, same, 3)

	blank := SentenceCandidates(DefaultBaseURL, "水", "", "n5", nil, 0)
	require.Len(t, blank, 3)

	require.Nil(t, SentenceCandidates(DefaultBaseURL, "", "みず", "n5", nil, 0))
}

func TestSentenceCandidatesLimit(t *testing.T) {
	got := SentenceCandidates(DefaultBaseURL, "水", "みず", core.Level("n5"), nil, 2)
	require.Len(t, got, 2)
	require.Equal(t, StrategyMeaningOf, got[1].Strategy)
}

func TestListPageURL(t *testing.T) {
	require.Equal(t,
		"https://jlptsensei.com/jlpt-n3-grammar-list/page/7",
		ListPageURL("", core.CollectionID{Level: "n3", Kind: core.Grammar}, 7))
}

func TestVocabularyURLKeepsSlashes(t *testing.T) {
	require.Equal(t,
		"https://jlptsensei.com/learn-japanese-vocabulary/%E4%B8%8A/%E4%B8%8B",
		VocabularyURL("", "上/下"))
	require.Equal(t,
		"https://jlptsensei.com/learn-japanese-vocabulary/a%20b",
		VocabularyURL("https://jlptsensei.com/", "a b"))
}

func TestResolveURL(t *testing.T) {
	page := "https://jlptsensei.com/learn-japanese-grammar/ni-tsuite/"
	require.Equal(t, "https://jlptsensei.com/wp-content/a.jpg", ResolveURL("/wp-content/a.jpg", page))
	require.Equal(t, "https://cdn.example.com/b.jpg", ResolveURL("https://cdn.example.com/b.jpg#x", page))
	require.Equal(t, "", ResolveURL("  ", page))
}

func TestCandidateQueueDedup(t *testing.T) {
	q := NewCandidateQueue(0)
	require.True(t, q.Add("a", "https://x.test/p/"))
	require.False(t, q.Add("b", "https://x.test/p"))
	require.False(t, q.Add("c", ""))
	require.True(t, q.Add("d", "https://x.test/q"))

	var seen []string
	for q.HasNext() {
		seen = append(seen, q.Next().Strategy)
	}
	require.Equal(t, []string{"a", "d"}, seen)
}
