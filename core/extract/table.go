package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/senseiharvest/core"
)

// ExtractRows parses one list page against schema. It returns
// core.ErrNoMoreRows when the table or its row marker is absent.
func ExtractRows(markup string, schema core.ColumnSchema) ([]map[string]string, error) {
	l, ok := layouts[schema.Kind]
	if !ok {
		return nil, fmt.Errorf("no table layout for lesson kind %q", schema.Kind)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	table := doc.Find(l.TableSelector).First()
	if table.Length() == 0 {
		return nil, core.ErrNoMoreRows
	}
	trs := table.Find("tbody").First().Find(l.RowSelector)
	if trs.Length() == 0 {
		return nil, core.ErrNoMoreRows
	}

	var cellCols, synthetic []core.Column
	for _, c := range schema.Columns {
		if c.Rule.CellBacked() {
			cellCols = append(cellCols, c)
		} else {
			synthetic = append(synthetic, c)
		}
	}

	rows := make([]map[string]string, 0, trs.Length())
	trs.Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		fields := make(map[string]string, len(schema.Columns))

		for i, col := range cellCols {
			if col.Rule == core.RuleDrop {
				continue
			}
			if i >= cells.Length() {
				fields[col.Name] = ""
				continue
			}
			fields[col.Name] = cellValue(cells.Eq(i), col.Rule)
		}

		for _, col := range synthetic {
			if col.Rule == core.RuleRowLink {
				fields[col.Name] = tr.Find("a[href]").First().AttrOr("href", "")
			}
		}

		rows = append(rows, fields)
	})

	return rows, nil
}

func cellValue(td *goquery.Selection, rule core.ColumnRule) string {
	switch rule {
	case core.RuleFirstParagraphOfLink:
		// Romaji-only readings have no <a><p> and are left blank.
		p := td.Find("a").First().Find("p").First()
		if p.Length() == 0 {
			return ""
		}
		return cellString(p)
	default:
		return cellString(td)
	}
}
