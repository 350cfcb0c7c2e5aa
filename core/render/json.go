package render

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/senseiharvest/core"
)

// JSONRenderer produces structured JSON output. Markdown notes are kept
// verbatim and also reduced to plain text and a heading outline.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// CollectionJSON is the top level of the JSON export.
type CollectionJSON struct {
	Level   string       `json:"level"`
	Kind    string       `json:"kind"`
	Title   string       `json:"title"`
	Fields  []string     `json:"fields"`
	Records []RecordJSON `json:"records"`
}

// RecordJSON is one exported record. Values follow CollectionJSON.Fields.
type RecordJSON struct {
	Index     int           `json:"index"`
	Values    []string      `json:"values"`
	Source    string        `json:"source,omitempty"`
	Sentence  *SentenceJSON `json:"sentence,omitempty"`
	MediaPath string        `json:"media_path,omitempty"`
	Notes     *NotesJSON    `json:"notes,omitempty"`
}

type SentenceJSON struct {
	Japanese string `json:"japanese"`
	English  string `json:"english"`
}

type NotesJSON struct {
	Markdown string   `json:"markdown"`
	Text     string   `json:"text"`
	Headings []string `json:"headings,omitempty"`
}

// Render converts the collection into CollectionJSON.
func (r *JSONRenderer) Render(c *core.Collection) ([]byte, error) {
	out := CollectionJSON{
		Level:   string(c.ID.Level),
		Kind:    string(c.ID.Kind),
		Title:   Title(c.ID),
		Fields:  c.Schema.Fields(),
		Records: make([]RecordJSON, 0, c.Len()),
	}

	for _, rec := range c.Records {
		rj := RecordJSON{
			Index:     rec.Index,
			Values:    rec.Values(c.Schema),
			Source:    rec.SourceURL,
			MediaPath: rec.MediaPath,
		}
		if rec.SentenceSource != "" {
			rj.Sentence = &SentenceJSON{Japanese: rec.SentenceSource, English: rec.SentenceTarget}
		}
		if rec.Notes != "" {
			rj.Notes = &NotesJSON{
				Markdown: rec.Notes,
				Text:     stripMarkdown(rec.Notes),
				Headings: extractHeadings(rec.Notes),
			}
		}
		out.Records = append(out.Records, rj)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// --- Markdown helpers ---

var headingRegex = regexp.MustCompile(`(?m)^(#{1,6})\s+(.+)$`)

func extractHeadings(md string) []string {
	matches := headingRegex.FindAllStringSubmatch(md, -1)
	headings := make([]string, 0, len(matches))
	for _, m := range matches {
		headings = append(headings, strings.TrimSpace(m[2]))
	}
	return headings
}

var (
	linkRegex     = regexp.MustCompile(`!?\[([^\]]*)\]\(([^)]+)\)`)
	emphasisRegex = regexp.MustCompile(`\*{1,3}([^*]+)\*{1,3}`)
	codeRegex     = regexp.MustCompile("`([^`]+)`")
	blankRegex    = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common Markdown formatting to produce plain text.
func stripMarkdown(md string) string {
	text := headingRegex.ReplaceAllString(md, "$2")
	text = emphasisRegex.ReplaceAllString(text, "$1")
	text = linkRegex.ReplaceAllString(text, "$1")
	text = strings.ReplaceAll(text, "```", "")
	text = codeRegex.ReplaceAllString(text, "$1")
	text = blankRegex.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
