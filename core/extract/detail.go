package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/senseiharvest/core"
)

// Example is one example sentence block of a vocabulary detail page.
type Example struct {
	Source string
	Target string
}

// Examples returns every example block that has a source sentence, in page
// order. A page without blocks is core.ErrExtractionMiss.
func Examples(markup string) ([]Example, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	blocks := doc.Find("div.example-cont")
	if blocks.Length() == 0 {
		return nil, fmt.Errorf("example sentences: %w", core.ErrExtractionMiss)
	}

	var examples []Example
	blocks.Each(func(i int, block *goquery.Selection) {
		source := collapse(block.Find("div.example-main").First().Text())
		if source == "" {
			return
		}
		// Translations are numbered from 1 in page order.
		target := block.Find(fmt.Sprintf("#example_%d_en", i+1)).First()
		examples = append(examples, Example{
			Source: source,
			Target: collapse(target.Text()),
		})
	})

	if len(examples) == 0 {
		return nil, fmt.Errorf("example sentences: %w", core.ErrExtractionMiss)
	}
	return examples, nil
}

// HeaderImage returns the src of the grammar flashcard header image.
func HeaderImage(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parsing HTML: %w", err)
	}

	img := doc.Find("img#header-image").First()
	if img.Length() == 0 {
		return "", fmt.Errorf("header image: %w", core.ErrExtractionMiss)
	}

	src := strings.TrimSpace(img.AttrOr("src", ""))
	if src == "" {
		src = strings.TrimSpace(img.AttrOr("data-src", ""))
	}
	if src == "" {
		return "", fmt.Errorf("header image src: %w", core.ErrExtractionMiss)
	}
	return src, nil
}
