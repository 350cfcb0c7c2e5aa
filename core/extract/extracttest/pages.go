// Package extracttest builds jlptsensei-shaped markup for tests.
package extracttest

import (
	"fmt"
	"html"
	"strings"
)

// VocabRow is one row of a vocabulary list table. An empty Reading renders
// a romaji-only reading cell.
type VocabRow struct {
	Num     int
	Term    string
	Reading string
	Romaji  string
	Type    string
	Meaning string
}

// GrammarRow is one row of a grammar list table.
type GrammarRow struct {
	Num     int
	Romaji  string
	Grammar string
	Reading string
	Meaning string
	Href    string
}

// Sentence is one example block of a vocabulary detail page.
type Sentence struct {
	JP string
	EN string
}

// VocabRows generates n distinct rows numbered from start.
func VocabRows(start, n int) []VocabRow {
	rows := make([]VocabRow, n)
	for i := range rows {
		num := start + i
		rows[i] = VocabRow{
			Num:     num,
			Term:    fmt.Sprintf("語%d", num),
			Reading: fmt.Sprintf("ご%d", num),
			Romaji:  fmt.Sprintf("go%d", num),
			Type:    "Noun",
			Meaning: fmt.Sprintf("word %d", num),
		}
	}
	return rows
}

// GrammarRows generates n distinct rows numbered from start whose detail
// links point under base.
func GrammarRows(base string, start, n int) []GrammarRow {
	rows := make([]GrammarRow, n)
	for i := range rows {
		num := start + i
		rows[i] = GrammarRow{
			Num:     num,
			Romaji:  fmt.Sprintf("bunpou %d", num),
			Grammar: fmt.Sprintf("文法%d", num),
			Reading: fmt.Sprintf("ぶんぽう%d", num),
			Meaning: fmt.Sprintf("grammar point %d", num),
			Href:    fmt.Sprintf("%s/learn-japanese-grammar/bunpou-%d/", base, num),
		}
	}
	return rows
}

// VocabPage renders a vocabulary list page.
func VocabPage(rows []VocabRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="jl-list"><table id="jl-vocab" class="jl-table">
<thead><tr><th>#</th><th>語彙</th><th>読み方</th><th>Type</th><th>Meaning</th></tr></thead>
<tbody>
`)
	for _, r := range rows {
		reading := fmt.Sprintf(`<a href="#"><p>%s</p>%s</a>`, html.EscapeString(r.Reading), html.EscapeString(r.Romaji))
		if r.Reading == "" {
			reading = html.EscapeString(r.Romaji)
		}
		fmt.Fprintf(&b, `<tr class="jl-row">
  <td class="jl-td-num">%d</td>
  <td class="jl-td-v"><a href="/learn-japanese-vocabulary/%s">%s</a></td>
  <td class="jl-td-vr">%s</td>
  <td class="jl-td-vt">%s</td>
  <td class="jl-td-vm">%s</td>
</tr>
`, r.Num, html.EscapeString(r.Term), html.EscapeString(r.Term), reading, html.EscapeString(r.Type), html.EscapeString(r.Meaning))
	}
	b.WriteString("</tbody></table></div></body></html>")
	return b.String()
}

// GrammarPage renders a grammar list page.
func GrammarPage(rows []GrammarRow) string {
	var b strings.Builder
	b.WriteString(`<html><body><table id="jl-grammar" class="jl-table">
<thead><tr><th>#</th><th>Grammar Lesson</th><th>文法</th><th>Reading</th><th>Meaning</th></tr></thead>
<tbody>
`)
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr class="jl-row">
  <td class="jl-td-num">%d</td>
  <td class="jl-td-gr"><a href="%s">%s</a></td>
  <td class="jl-td-gj">%s</td>
  <td class="jl-td-gf">%s</td>
  <td class="jl-td-gm">%s</td>
</tr>
`, r.Num, html.EscapeString(r.Href), html.EscapeString(r.Romaji), html.EscapeString(r.Grammar), html.EscapeString(r.Reading), html.EscapeString(r.Meaning))
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

// EmptyTablePage renders a list page whose table has no rows.
func EmptyTablePage(tableID string) string {
	return fmt.Sprintf(`<html><body><table id="%s"><thead><tr><th>#</th></tr></thead><tbody></tbody></table></body></html>`, tableID)
}

// NoTablePage renders a page without any list table.
func NoTablePage() string {
	return `<html><body><h1>Nothing found</h1><p>Sorry, no posts matched your criteria.</p></body></html>`
}

// VocabDetail renders a vocabulary detail page with the given examples.
func VocabDetail(sentences ...Sentence) string {
	var b strings.Builder
	b.WriteString(`<html><body><article><h1>Learn Japanese vocabulary</h1>`)
	for i, s := range sentences {
		fmt.Fprintf(&b, `<div class="example-cont">
  <div class="example-main"><p>%s</p></div>
  <div id="example_%d_en" class="example-en">%s</div>
</div>
`, html.EscapeString(s.JP), i+1, html.EscapeString(s.EN))
	}
	b.WriteString(`</article></body></html>`)
	return b.String()
}

// GrammarDetail renders a grammar detail page. An empty imgSrc omits the
// header image.
func GrammarDetail(imgSrc, notes string) string {
	var b strings.Builder
	b.WriteString(`<html><body><header><nav>menu</nav></header><article>`)
	if imgSrc != "" {
		fmt.Fprintf(&b, `<img id="header-image" src="%s" alt="flashcard">`, html.EscapeString(imgSrc))
	}
	if notes != "" {
		fmt.Fprintf(&b, `<div id="jl-grammar-meaning"><script>track()</script><h2>Meaning</h2><p><strong>%s</strong></p></div>`, html.EscapeString(notes))
	}
	b.WriteString(`</article></body></html>`)
	return b.String()
}
