package core

import (
	"fmt"
	"slices"
)

// ColumnRule says how a column's value is produced.
type ColumnRule int

const (
	// RuleVerbatim takes the cell's direct text.
	RuleVerbatim ColumnRule = iota
	// RuleFirstParagraphOfLink takes the text of <a><p> inside the cell,
	// or "" when that structure is absent.
	RuleFirstParagraphOfLink
	// RuleDrop reads the cell and discards it.
	RuleDrop
	// RuleRowLink stores the row's detail-page href. It has no cell.
	RuleRowLink
	// RuleSentenceSource and RuleSentenceTarget project the record's
	// attached example sentence into the tabular artifact. They have no cell.
	RuleSentenceSource
	RuleSentenceTarget
)

func (r ColumnRule) String() string {
	switch r {
	case RuleVerbatim:
		return "verbatim"
	case RuleFirstParagraphOfLink:
		return "first-paragraph-of-link"
	case RuleDrop:
		return "drop"
	case RuleRowLink:
		return "row-link"
	case RuleSentenceSource:
		return "sentence-source"
	case RuleSentenceTarget:
		return "sentence-target"
	}
	return fmt.Sprintf("ColumnRule(%d)", int(r))
}

// CellBacked reports whether the column consumes a table cell.
func (r ColumnRule) CellBacked() bool {
	return r == RuleVerbatim || r == RuleFirstParagraphOfLink || r == RuleDrop
}

// Column is one entry of a ColumnSchema. Header is the text seen on the
// site and is empty for synthetic columns.
type Column struct {
	Name   string
	Header string
	Rule   ColumnRule
}

// ColumnSchema is discovered once per collection and never changes after.
// Cell-backed columns come first, in table order.
type ColumnSchema struct {
	Kind    LessonKind
	Columns []Column
}

// Fields returns the persisted column names in order. Dropped columns are
// excluded.
func (s ColumnSchema) Fields() []string {
	names := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Rule == RuleDrop {
			continue
		}
		names = append(names, c.Name)
	}
	return names
}

// Equal compares two schemas column by column.
func (s ColumnSchema) Equal(o ColumnSchema) bool {
	return s.Kind == o.Kind && slices.Equal(s.Columns, o.Columns)
}

// IsZero reports whether no schema has been discovered.
func (s ColumnSchema) IsZero() bool {
	return len(s.Columns) == 0
}

// Record is one normalized vocabulary or grammar entry.
type Record struct {
	// Index is the 1-based position within the collection.
	Index  int
	Fields map[string]string

	SourceURL      string
	SentenceSource string
	SentenceTarget string
	MediaPath      string
	Notes          string
}

// Get returns a schema field value, "" when absent.
func (r *Record) Get(name string) string {
	return r.Fields[name]
}

// Value returns the value a column persists for this record.
func (r *Record) Value(col Column) string {
	switch col.Rule {
	case RuleSentenceSource:
		return r.SentenceSource
	case RuleSentenceTarget:
		return r.SentenceTarget
	}
	return r.Fields[col.Name]
}

// Set is the inverse of Value and is used when re-reading an artifact.
func (r *Record) Set(col Column, v string) {
	switch col.Rule {
	case RuleSentenceSource:
		r.SentenceSource = v
		return
	case RuleSentenceTarget:
		r.SentenceTarget = v
		return
	case RuleRowLink:
		r.SourceURL = v
	}
	if r.Fields == nil {
		r.Fields = make(map[string]string)
	}
	r.Fields[col.Name] = v
}

// Values returns the persisted values in schema order.
func (r *Record) Values(s ColumnSchema) []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Rule == RuleDrop {
			continue
		}
		out = append(out, r.Value(c))
	}
	return out
}

// Enriched reports whether any enrichment field was filled.
func (r *Record) Enriched() bool {
	return r.SentenceSource != "" || r.SentenceTarget != "" || r.MediaPath != "" || r.Notes != ""
}

// Collection is an ordered set of records sharing one schema.
type Collection struct {
	ID      CollectionID
	Schema  ColumnSchema
	Records []*Record

	closed bool
}

// NewCollection opens an empty collection.
func NewCollection(id CollectionID) *Collection {
	return &Collection{ID: id}
}

// Append adds a row and assigns it the next index.
func (c *Collection) Append(fields map[string]string) (*Record, error) {
	if c.closed {
		return nil, ErrCollectionClosed
	}
	rec := &Record{
		Index:  len(c.Records) + 1,
		Fields: fields,
	}
	for _, col := range c.Schema.Columns {
		if col.Rule == RuleRowLink {
			rec.SourceURL = fields[col.Name]
		}
	}
	c.Records = append(c.Records, rec)
	return rec, nil
}

// Close freezes the collection. It is idempotent.
func (c *Collection) Close() {
	c.closed = true
}

// Closed reports whether Close has been called.
func (c *Collection) Closed() bool {
	return c.closed
}

// Len returns the number of records.
func (c *Collection) Len() int {
	return len(c.Records)
}

// MediaFiles returns the media path of every record, aligned by index.
func (c *Collection) MediaFiles() []string {
	files := make([]string, len(c.Records))
	for i, r := range c.Records {
		files[i] = r.MediaPath
	}
	return files
}
