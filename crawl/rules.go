// Package crawl builds jlptsensei URLs and drives paginated list harvests.
package crawl

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gaurav-prasanna/senseiharvest/core"
)

// DefaultBaseURL is the study site every path is resolved against.
const DefaultBaseURL = "https://jlptsensei.com"

const vocabularyPath = "learn-japanese-vocabulary"

// ListPageURL returns the URL of page n of a level's lesson list.
// Example: https://jlptsensei.com/jlpt-n5-grammar-list/page/1
func ListPageURL(base string, id core.CollectionID, page int) string {
	return fmt.Sprintf("%s/jlpt-%s-%s-list/page/%d", trimBase(base), id.Level, id.Kind, page)
}

// VocabularyURL returns the detail URL for a slug. Each path segment is
// percent-encoded; "/" inside the slug is kept as a separator.
func VocabularyURL(base, slug string) string {
	segments := strings.Split(slug, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/%s/%s", trimBase(base), vocabularyPath, strings.Join(segments, "/"))
}

// ResolveURL resolves a possibly relative href against the page it was
// found on. Unparseable hrefs yield "".
func ResolveURL(href, pageURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return ref.String()
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// NormalizeURL strips fragments and trailing slashes for deduplication.
func NormalizeURL(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}

	parsed.Fragment = ""
	if parsed.Path != "/" {
		parsed.Path = strings.TrimSuffix(parsed.Path, "/")
		parsed.RawPath = strings.TrimSuffix(parsed.RawPath, "/")
	}

	return parsed.String()
}

func trimBase(base string) string {
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimSuffix(base, "/")
}
