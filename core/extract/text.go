package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// cellString returns the text a cell "holds": its direct text nodes, or,
// when it has none, the string of its only element child. Cells with mixed
// children and no direct text yield "".
func cellString(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	return nodeString(sel.Nodes[0])
}

func nodeString(n *html.Node) string {
	var direct strings.Builder
	var only *html.Node
	elements := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			direct.WriteString(c.Data)
		case html.ElementNode:
			elements++
			only = c
		}
	}

	if text := collapse(direct.String()); text != "" {
		return text
	}
	if elements == 1 {
		return nodeString(only)
	}
	return ""
}

// collapse trims and folds inner runs of whitespace to one space.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
