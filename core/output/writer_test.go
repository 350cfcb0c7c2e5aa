package output

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type stubRenderer struct {
	ext  string
	err  error
	seen *core.Collection
}

func (s *stubRenderer) Render(c *core.Collection) ([]byte, error) {
	s.seen = c
	if s.err != nil {
		return nil, s.err
	}
	return []byte(c.ID.String()), nil
}

func (s *stubRenderer) Extension() string { return s.ext }

func vocabCollection(t *testing.T) *core.Collection {
	t.Helper()
	c := core.NewCollection(core.CollectionID{Level: "n5", Kind: core.Vocabulary})
	c.Schema = core.ColumnSchema{
		Kind: core.Vocabulary,
		Columns: []core.Column{
			{Name: "#", Header: "#", Rule: core.RuleVerbatim},
			{Name: "Vocabulary", Header: "語彙", Rule: core.RuleVerbatim},
			{Name: "Reading", Header: "読み方", Rule: core.RuleFirstParagraphOfLink},
			{Name: "Meaning", Header: "Meaning", Rule: core.RuleVerbatim},
			{Name: "Sentence JP", Rule: core.RuleSentenceSource},
			{Name: "Sentence EN", Rule: core.RuleSentenceTarget},
		},
	}
	rows := []struct {
		fields   map[string]string
		src, tgt string
	}{
		{map[string]string{"#": "1", "Vocabulary": "会う", "Reading": "あう", "Meaning": "to meet, to see"}, "友達に会う。", `to meet a "friend"`},
		{map[string]string{"#": "2", "Vocabulary": "青い", "Reading": "", "Meaning": "blue\ngreen"}, "", ""},
	}
	for _, r := range rows {
		rec, err := c.Append(r.fields)
		require.NoError(t, err)
		rec.SentenceSource, rec.SentenceTarget = r.src, r.tgt
	}
	c.Close()
	return c
}

func TestPersistCollectionRoundTrip(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	c := vocabCollection(t)

	path, err := w.PersistCollection(context.Background(), c)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(w.OutputDir, "vocabulary", "n5_vocabulary_list.csv"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "#,Vocabulary,Reading,Meaning,Sentence JP,Sentence EN\n")

	back, err := w.ReadCollection(c.ID)
	require.NoError(t, err)
	require.True(t, back.Closed())
	require.Equal(t, c.Schema.Fields(), back.Schema.Fields())
	require.Equal(t, c.Len(), back.Len())
	for i, rec := range c.Records {
		if diff := cmp.Diff(rec.Values(c.Schema), back.Records[i].Values(back.Schema)); diff != "" {
			t.Errorf("record %d mismatch (-want +got):\n%s", rec.Index, diff)
		}
	}
	require.Equal(t, "友達に会う。", back.Records[0].SentenceSource)
}

func TestReadCollectionAttachesFlashcards(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	id := core.CollectionID{Level: "n3", Kind: core.Grammar}

	c := core.NewCollection(id)
	c.Schema = core.ColumnSchema{Kind: core.Grammar, Columns: []core.Column{
		{Name: "#", Header: "#", Rule: core.RuleVerbatim},
		{Name: "Grammar Lesson", Header: "文法", Rule: core.RuleVerbatim},
		{Name: "Source", Rule: core.RuleRowLink},
	}}
	for _, g := range []string{"について", "によって"} {
		_, err := c.Append(map[string]string{"Grammar Lesson": g, "Source": "https://jlptsensei.com/g/" + g})
		require.NoError(t, err)
	}
	c.Close()
	stale := filepath.Join(w.NotesDir(id), "notes2.md")
	require.NoError(t, os.MkdirAll(w.NotesDir(id), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0644))
	c.Records[0].Notes = "**について** means *about*."
	_, err = w.PersistCollection(context.Background(), c)
	require.NoError(t, err)
	_, err = os.Stat(stale)
	require.True(t, os.IsNotExist(err), "notes of a record without notes are removed")

	require.NoError(t, os.MkdirAll(w.MediaDir(id), 0755))
	card := filepath.Join(w.MediaDir(id), "flashcard2.jpg")
	require.NoError(t, os.WriteFile(card, []byte("jpg"), 0644))

	back, err := w.ReadCollection(id)
	require.NoError(t, err)
	require.Equal(t, "", back.Records[0].MediaPath)
	require.Equal(t, card, back.Records[1].MediaPath)
	require.Equal(t, "https://jlptsensei.com/g/によって", back.Records[1].SourceURL)
	require.Equal(t, "**について** means *about*.", back.Records[0].Notes)
	require.Empty(t, back.Records[1].Notes)
}

func TestPersistEmptySchema(t *testing.T) {
	w, err := New(t.TempDir())
	require.NoError(t, err)
	_, err = w.PersistCollection(context.Background(), core.NewCollection(core.CollectionID{Level: "n1", Kind: core.Grammar}))
	require.ErrorIs(t, err, core.ErrEmptyCollection)
}

func TestEmitRunsRenderers(t *testing.T) {
	ok := &stubRenderer{ext: ".json"}
	bad := &stubRenderer{ext: ".pdf", err: errors.New("font missing")}
	w, err := New(t.TempDir(), ok, bad)
	require.NoError(t, err)
	c := vocabCollection(t)
	gone := filepath.Join(w.OutputDir, "gone.jpg")
	c.Records[1].MediaPath = gone

	err = w.Emit(context.Background(), c, c.MediaFiles())
	require.ErrorContains(t, err, "font missing")
	require.NotSame(t, c, ok.seen)
	require.Equal(t, c.ID, ok.seen.ID)
	require.Len(t, ok.seen.Records, 2)
	require.Empty(t, ok.seen.Records[1].MediaPath)
	require.Equal(t, gone, c.Records[1].MediaPath, "caller's collection is left untouched")
	require.True(t, c.Closed())

	data, err := os.ReadFile(w.RenderPath(c.ID, ".json"))
	require.NoError(t, err)
	require.Equal(t, "N5 vocabulary", string(data))
	_, err = os.Stat(w.RenderPath(c.ID, ".pdf"))
	require.True(t, os.IsNotExist(err))

	require.Error(t, w.Emit(context.Background(), c, nil))
}
