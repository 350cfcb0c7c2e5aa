package crawl

import (
	"github.com/gaurav-prasanna/senseiharvest/core"
)

// Strategy names, in the order they are tried.
const (
	StrategyTerm      = "term"
	StrategyMeaningOf = "japanese-meaning-of"
	StrategyLevel     = "jlpt-level"
	StrategyReading   = "reading"
	StrategyIrregular = "irregular"
)

// DefaultIrregularTerms maps terms whose detail slug uses another spelling.
var DefaultIrregularTerms = map[string][]string{
	"晩ご飯": {"晩御飯"},
}

// SentenceCandidates returns the ordered detail-page candidates for a
// vocabulary term:
//  1. /learn-japanese-vocabulary/{term}
//  2. /learn-japanese-vocabulary/japanese-meaning-of-{term}
//  3. /learn-japanese-vocabulary/jlpt-{level}-vocabulary-{term}
//  4. /learn-japanese-vocabulary/{reading}
//  5. /learn-japanese-vocabulary/{alternate} for known irregular terms
//
// Duplicate URLs are skipped. limit <= 0 means no cap.
func SentenceCandidates(base, term, reading string, level core.Level, irregular map[string][]string, limit int) []Candidate {
	if term == "" {
		return nil
	}
	q := NewCandidateQueue(limit)

	q.Add(StrategyTerm, VocabularyURL(base, term))
	q.Add(StrategyMeaningOf, VocabularyURL(base, "japanese-meaning-of-"+term))
	q.Add(StrategyLevel, VocabularyURL(base, "jlpt-"+string(level)+"-vocabulary-"+term))
	if reading != "" {
		q.Add(StrategyReading, VocabularyURL(base, reading))
	}
	for _, alt := range irregular[term] {
		q.Add(StrategyIrregular, VocabularyURL(base, alt))
	}

	return q.All()
}
