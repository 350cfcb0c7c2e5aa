// Package extract turns jlptsensei markup into schemas, rows and detail
// page fragments. It never fetches anything.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/senseiharvest/core"
)

// DiscoverSchema derives the column schema from the first page of a
// collection. A missing table or header row is a *core.SchemaError.
func DiscoverSchema(markup string, kind core.LessonKind) (core.ColumnSchema, error) {
	l, ok := layouts[kind]
	if !ok {
		return core.ColumnSchema{}, &core.SchemaError{Kind: kind, Reason: "no table layout for this lesson kind"}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return core.ColumnSchema{}, &core.SchemaError{Kind: kind, Reason: fmt.Sprintf("parsing HTML: %v", err)}
	}

	table := doc.Find(l.TableSelector).First()
	if table.Length() == 0 {
		return core.ColumnSchema{}, &core.SchemaError{Kind: kind, Reason: fmt.Sprintf("table %s not found", l.TableSelector)}
	}

	headings := table.Find("thead th")
	if headings.Length() == 0 {
		return core.ColumnSchema{}, &core.SchemaError{Kind: kind, Reason: "table has no header row"}
	}

	cols := make([]core.Column, headings.Length())
	headings.Each(func(i int, th *goquery.Selection) {
		header := collapse(th.Text())
		name := header
		if name == "" {
			name = fmt.Sprintf("Column %d", i+1)
		}
		cols[i] = core.Column{Name: name, Header: header, Rule: core.RuleVerbatim}
	})

	renamed := make([]bool, len(cols))
	firstRow := table.Find(l.RowSelector).First()
	for _, cr := range l.ClassRules {
		pos := cr.DefaultPosition
		if j := cellWithClass(firstRow, cr.Class); j >= 0 {
			pos = j
		}
		if pos >= len(cols) {
			return core.ColumnSchema{}, &core.SchemaError{
				Kind:   kind,
				Reason: fmt.Sprintf("column for cell class %s is outside the %d-column header", cr.Class, len(cols)),
			}
		}
		cols[pos].Rule = cr.Rule
		if cr.Rename != "" {
			cols[pos].Name = cr.Rename
			renamed[pos] = true
		}
	}

	kept := 0
	for i := range cols {
		if cols[i].Rule == core.RuleDrop {
			continue
		}
		if name, ok := l.Renames[kept]; ok && !renamed[i] {
			cols[i].Name = name
		}
		kept++
	}

	schema := core.ColumnSchema{Kind: kind, Columns: append(cols, l.Appended...)}

	seen := make(map[string]bool)
	for _, name := range schema.Fields() {
		if seen[name] {
			return core.ColumnSchema{}, &core.SchemaError{Kind: kind, Reason: fmt.Sprintf("duplicate column %q", name)}
		}
		seen[name] = true
	}

	return schema, nil
}

// cellWithClass returns the index of the first td in row carrying class,
// or -1.
func cellWithClass(row *goquery.Selection, class string) int {
	found := -1
	row.ChildrenFiltered("td").EachWithBreak(func(i int, td *goquery.Selection) bool {
		if td.HasClass(class) {
			found = i
			return false
		}
		return true
	})
	return found
}
