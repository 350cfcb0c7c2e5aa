package extract

import "github.com/gaurav-prasanna/senseiharvest/core"

// classRule binds a rule to the column whose cells carry Class. When the
// first page has no body row to inspect, DefaultPosition is used.
type classRule struct {
	Class           string
	DefaultPosition int
	Rule            core.ColumnRule
	Rename          string
}

// layout is the fixed per-kind table configuration.
type layout struct {
	TableSelector string
	RowSelector   string
	ClassRules    []classRule
	// Renames maps a kept-column position (0-based, dropped columns not
	// counted) to its canonical name.
	Renames  map[int]string
	Appended []core.Column
}

var layouts = map[core.LessonKind]layout{
	core.Vocabulary: {
		TableSelector: "table#jl-vocab",
		RowSelector:   "tr.jl-row",
		ClassRules: []classRule{
			{Class: "jl-td-vr", DefaultPosition: 2, Rule: core.RuleFirstParagraphOfLink, Rename: "Reading"},
		},
		Renames: map[int]string{1: "Vocabulary"},
		Appended: []core.Column{
			{Name: "Sentence JP", Rule: core.RuleSentenceSource},
			{Name: "Sentence EN", Rule: core.RuleSentenceTarget},
		},
	},
	core.Grammar: {
		TableSelector: "table#jl-grammar",
		RowSelector:   "tr.jl-row",
		ClassRules: []classRule{
			{Class: "jl-td-gr", DefaultPosition: 1, Rule: core.RuleDrop},
		},
		Renames: map[int]string{1: "Grammar Lesson"},
		Appended: []core.Column{
			{Name: "Source", Rule: core.RuleRowLink},
		},
	},
}

// TermField and ReadingField name the vocabulary columns the sentence
// resolver keys on. GrammarField names the grammar lesson column.
const (
	TermField    = "Vocabulary"
	ReadingField = "Reading"
	GrammarField = "Grammar Lesson"
	SourceField  = "Source"
)

// SchemaFromFields rebuilds a schema from a persisted header row. Synthetic
// columns get their rules back by name; everything else is verbatim.
func SchemaFromFields(kind core.LessonKind, names []string) core.ColumnSchema {
	synthetic := make(map[string]core.ColumnRule)
	for _, c := range layouts[kind].Appended {
		synthetic[c.Name] = c.Rule
	}

	schema := core.ColumnSchema{Kind: kind, Columns: make([]core.Column, 0, len(names))}
	for _, name := range names {
		if rule, ok := synthetic[name]; ok {
			schema.Columns = append(schema.Columns, core.Column{Name: name, Rule: rule})
			continue
		}
		schema.Columns = append(schema.Columns, core.Column{Name: name, Header: name, Rule: core.RuleVerbatim})
	}
	return schema
}
