// Package core defines the harvesting pipeline types and interfaces.
// Each stage of the pipeline (fetch, extract, paginate, enrich, sink) is a
// small interface so it can be scripted in tests.
package core

import (
	"context"
	"fmt"
	"strings"
)

// LessonKind selects the table layout, schema rules and enrichment strategy.
type LessonKind string

const (
	Vocabulary LessonKind = "vocabulary"
	Grammar    LessonKind = "grammar"
)

// LessonKinds lists every supported kind in harvest order.
var LessonKinds = []LessonKind{Vocabulary, Grammar}

// ParseLessonKind accepts "vocabulary"/"vocab" and "grammar".
func ParseLessonKind(s string) (LessonKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "vocabulary", "vocab":
		return Vocabulary, nil
	case "grammar":
		return Grammar, nil
	}
	return "", fmt.Errorf("unknown lesson kind %q (want vocabulary or grammar)", s)
}

// Level is a JLPT difficulty tier, n5 (easiest) to n1.
type Level string

// Levels lists every JLPT level from easiest to hardest.
var Levels = []Level{"n5", "n4", "n3", "n2", "n1"}

// ParseLevel accepts "n3", "N3" or "3".
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) == 1 {
		s = "n" + s
	}
	for _, l := range Levels {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unknown level %q (want one of n5, n4, n3, n2, n1)", s)
}

// CollectionID identifies one harvest: a (level, lesson kind) pair.
type CollectionID struct {
	Level Level
	Kind  LessonKind
}

func (id CollectionID) String() string {
	return fmt.Sprintf("%s %s", strings.ToUpper(string(id.Level)), id.Kind)
}

// FetchStatus classifies the outcome of a single GET.
type FetchStatus int

const (
	FetchSuccess FetchStatus = iota
	FetchNotFound
	FetchTransient
)

func (s FetchStatus) String() string {
	switch s {
	case FetchSuccess:
		return "success"
	case FetchNotFound:
		return "not found"
	case FetchTransient:
		return "transient error"
	}
	return fmt.Sprintf("FetchStatus(%d)", int(s))
}

// FetchResult holds the raw body and classification of a fetch.
// Body is only set for FetchSuccess; Err is set for FetchTransient.
type FetchResult struct {
	URL        string
	Status     FetchStatus
	StatusCode int
	Body       []byte
	Err        error
}

// HTML returns the body as a string.
func (r FetchResult) HTML() string {
	return string(r.Body)
}

// Fetcher issues one GET per call and never retries.
type Fetcher interface {
	Fetch(ctx context.Context, url string) FetchResult
}

// Normalizer converts an HTML fragment into Markdown.
type Normalizer interface {
	Normalize(html string) (string, error)
}

// Renderer converts a closed collection into an export format.
type Renderer interface {
	Render(c *Collection) ([]byte, error)
	// Extension returns the file suffix for this renderer (e.g. ".json").
	Extension() string
}

// Sink accepts finished collections. Packaging is the sink's concern.
type Sink interface {
	// PersistCollection writes the intermediate tabular artifact and
	// returns its path.
	PersistCollection(ctx context.Context, c *Collection) (string, error)
	// Emit hands off the records with their media files. mediaFiles is
	// aligned with c.Records; an empty entry means no media for that record.
	Emit(ctx context.Context, c *Collection, mediaFiles []string) error
}

// Harvester produces one enriched collection of its kind per level.
type Harvester interface {
	Kind() LessonKind
	Harvest(ctx context.Context, level Level) (*Collection, error)
}
