package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/senseiharvest/core"
)

// noiseSelectors are removed from a fragment before it is normalized.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header",
	"img", "picture", "figure", "figcaption",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".sharedaddy", ".jp-relatedposts",
}

// Fragment returns the cleaned outer HTML of the first element matching
// selector, or core.ErrExtractionMiss when nothing matches.
func Fragment(markup, selector string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	content := doc.Find(selector).First()
	if content.Length() == 0 {
		return "", fmt.Errorf("%s: %w", selector, core.ErrExtractionMiss)
	}

	for _, sel := range noiseSelectors {
		content.Find(sel).Remove()
	}

	result, err := goquery.OuterHtml(content)
	if err != nil {
		return "", fmt.Errorf("serializing %s: %w", selector, err)
	}
	return result, nil
}
