// Package render provides export renderers for finished collections.
// This file implements the Markdown renderer: one table of every record,
// followed by per-lesson notes when any were collected.
package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/senseiharvest/core"
)

// MarkdownRenderer writes a collection as a Markdown study list.
type MarkdownRenderer struct {
	// MediaBase is the directory image links are made relative to. Empty
	// keeps media paths as stored.
	MediaBase string
}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer(mediaBase string) *MarkdownRenderer {
	return &MarkdownRenderer{MediaBase: mediaBase}
}

// Render returns the collection as a Markdown document.
func (r *MarkdownRenderer) Render(c *core.Collection) ([]byte, error) {
	if c.Schema.IsZero() {
		return nil, fmt.Errorf("%s: %w", c.ID, core.ErrEmptyCollection)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", Title(c.ID))
	fmt.Fprintf(&b, "%d entries\n\n", c.Len())

	fields := c.Schema.Fields()
	b.WriteString("| " + strings.Join(escapeCells(fields), " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(fields)) + "\n")
	for _, rec := range c.Records {
		b.WriteString("| " + strings.Join(escapeCells(rec.Values(c.Schema)), " | ") + " |\n")
	}

	var details []*core.Record
	for _, rec := range c.Records {
		if rec.Notes != "" || rec.MediaPath != "" {
			details = append(details, rec)
		}
	}
	if len(details) == 0 {
		return []byte(b.String()), nil
	}

	b.WriteString("\n## Lessons\n")
	for _, rec := range details {
		fmt.Fprintf(&b, "\n### %d. %s\n\n", rec.Index, headline(c.Schema, rec))
		if rec.MediaPath != "" {
			fmt.Fprintf(&b, "![flashcard %d](%s)\n\n", rec.Index, r.mediaLink(rec.MediaPath))
		}
		if rec.Notes != "" {
			b.WriteString(demoteHeadings(rec.Notes, 3))
			b.WriteString("\n")
		}
	}
	return []byte(b.String()), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

func (r *MarkdownRenderer) mediaLink(path string) string {
	if r.MediaBase != "" {
		if rel, err := filepath.Rel(r.MediaBase, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(path)
}

// escapeCells makes values safe inside a pipe table row.
func escapeCells(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, "|", `\|`)
		v = strings.ReplaceAll(v, "\r\n", "<br>")
		out[i] = strings.ReplaceAll(v, "\n", "<br>")
	}
	return out
}

// demoteHeadings pushes note headings below the lesson heading so the
// document outline stays intact.
func demoteHeadings(md string, by int) string {
	return headingRegex.ReplaceAllStringFunc(md, func(h string) string {
		m := headingRegex.FindStringSubmatch(h)
		level := min(len(m[1])+by, 6)
		return strings.Repeat("#", level) + " " + m[2]
	})
}
