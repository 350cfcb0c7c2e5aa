// Package normalize implements the Normalizer interface.
// It converts cleaned detail-page fragments into Markdown notes suitable
// for a study card's Notes field.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct {
	// MaxRunes truncates the result; 0 keeps everything.
	MaxRunes int
}

// New creates a MarkdownNormalizer.
func New(maxRunes int) *MarkdownNormalizer {
	return &MarkdownNormalizer{MaxRunes: maxRunes}
}

// Normalize converts a cleaned HTML fragment into trimmed Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	markdown = strings.TrimSpace(markdown)

	if n.MaxRunes > 0 {
		runes := []rune(markdown)
		if len(runes) > n.MaxRunes {
			markdown = strings.TrimSpace(string(runes[:n.MaxRunes])) + "…"
		}
	}
	return markdown, nil
}
