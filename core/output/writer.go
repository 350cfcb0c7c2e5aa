// Package output is the filesystem sink. It lays files out per collection:
//
//	{dir}/{kind}/{level}_{kind}_list.csv      tabular artifact
//	{dir}/{kind}/{level}_{kind}{ext}          rendered exports
//	{dir}/grammar/flashcard_images/{level}/  grammar media
//	{dir}/{kind}/notes/{level}/notes{n}.md    per-record notes
package output

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/enrich"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
)

// Writer writes collections under OutputDir and implements core.Sink.
type Writer struct {
	OutputDir string
	Renderers []core.Renderer
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string, renderers ...core.Renderer) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir, Renderers: renderers}, nil
}

// CSVPath returns where the tabular artifact of id is written.
func (w *Writer) CSVPath(id core.CollectionID) string {
	return filepath.Join(w.OutputDir, string(id.Kind), fmt.Sprintf("%s_%s_list.csv", id.Level, id.Kind))
}

// RenderPath returns where a rendered export of id is written.
func (w *Writer) RenderPath(id core.CollectionID, ext string) string {
	return filepath.Join(w.OutputDir, string(id.Kind), fmt.Sprintf("%s_%s%s", id.Level, id.Kind, ext))
}

// MediaDir returns the directory holding the flashcard images of a level.
func (w *Writer) MediaDir(id core.CollectionID) string {
	return filepath.Join(w.OutputDir, string(core.Grammar), "flashcard_images", string(id.Level))
}

// NotesDir returns the directory holding the per-record notes of id. The
// CSV has no notes column, so notes live beside it.
func (w *Writer) NotesDir(id core.CollectionID) string {
	return filepath.Join(w.OutputDir, string(id.Kind), "notes", string(id.Level))
}

func notesName(index int) string {
	return fmt.Sprintf("notes%d.md", index)
}

// PersistCollection writes the header row and one row per record in
// schema field order, then each record's notes.
func (w *Writer) PersistCollection(ctx context.Context, c *core.Collection) (string, error) {
	if c.Schema.IsZero() {
		return "", fmt.Errorf("%s: %w", c.ID, core.ErrEmptyCollection)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, c); err != nil {
		return "", fmt.Errorf("encoding %s: %w", c.ID, err)
	}

	path := w.CSVPath(c.ID)
	if err := writeFile(path, buf.Bytes()); err != nil {
		return "", err
	}
	if err := w.persistNotes(c); err != nil {
		return "", err
	}
	slog.InfoContext(ctx, "collection persisted", "collection", c.ID.String(), "records", c.Len(), "path", path)
	return path, nil
}

// persistNotes writes non-empty notes and removes files left over from an
// earlier run for records that no longer carry any.
func (w *Writer) persistNotes(c *core.Collection) error {
	dir := w.NotesDir(c.ID)
	for _, rec := range c.Records {
		path := filepath.Join(dir, notesName(rec.Index))
		if rec.Notes == "" {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("removing stale notes %s: %w", path, err)
			}
			continue
		}
		if err := writeFile(path, []byte(rec.Notes)); err != nil {
			return err
		}
	}
	return nil
}

// WriteCSV encodes c as CSV.
func WriteCSV(out io.Writer, c *core.Collection) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(c.Schema.Fields()); err != nil {
		return err
	}
	for _, rec := range c.Records {
		if err := cw.Write(rec.Values(c.Schema)); err != nil {
			return fmt.Errorf("record %d: %w", rec.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Emit runs every renderer over the finished collection. mediaFiles must be
// aligned with c.Records; listed files that no longer exist are reported
// and left out of the exports. c itself is not modified.
func (w *Writer) Emit(ctx context.Context, c *core.Collection, mediaFiles []string) error {
	if len(mediaFiles) != c.Len() {
		return fmt.Errorf("%s: %d media entries for %d records", c.ID, len(mediaFiles), c.Len())
	}
	view := *c
	view.Records = make([]*core.Record, len(c.Records))
	for i, rec := range c.Records {
		r := *rec
		r.MediaPath = mediaFiles[i]
		if r.MediaPath != "" {
			if _, err := os.Stat(r.MediaPath); err != nil {
				slog.WarnContext(ctx, "media file missing", "collection", c.ID.String(), "index", rec.Index, "path", r.MediaPath)
				r.MediaPath = ""
			}
		}
		view.Records[i] = &r
	}

	var errs []error
	for _, r := range w.Renderers {
		data, err := r.Render(&view)
		if err != nil {
			errs = append(errs, fmt.Errorf("rendering %s%s: %w", c.ID, r.Extension(), err))
			continue
		}
		path := w.RenderPath(c.ID, r.Extension())
		if err := writeFile(path, data); err != nil {
			errs = append(errs, err)
			continue
		}
		slog.InfoContext(ctx, "export written", "collection", c.ID.String(), "path", path)
	}
	return errors.Join(errs...)
}

// ReadCollection re-reads a persisted artifact. The schema is rebuilt from
// the header row; grammar flashcards found in MediaDir and notes found in
// NotesDir are re-attached.
func (w *Writer) ReadCollection(id core.CollectionID) (*core.Collection, error) {
	f, err := os.Open(w.CSVPath(id))
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", id, err)
	}
	defer f.Close()

	c, err := ReadCSV(f, id)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}

	if id.Kind == core.Grammar {
		for _, rec := range c.Records {
			path := filepath.Join(w.MediaDir(id), enrich.MediaName(rec.Index))
			if _, err := os.Stat(path); err == nil {
				rec.MediaPath = path
			}
		}
	}
	for _, rec := range c.Records {
		data, err := os.ReadFile(filepath.Join(w.NotesDir(id), notesName(rec.Index)))
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading notes of %s record %d: %w", id, rec.Index, err)
		}
		rec.Notes = string(data)
	}
	return c, nil
}

// ReadCSV decodes a collection written by WriteCSV. The result is closed.
func ReadCSV(in io.Reader, id core.CollectionID) (*core.Collection, error) {
	cr := csv.NewReader(in)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	c := core.NewCollection(id)
	c.Schema = extract.SchemaFromFields(id.Kind, header)

	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := c.Append(make(map[string]string, len(row)))
		if err != nil {
			return nil, err
		}
		for i, col := range c.Schema.Columns {
			rec.Set(col, row[i])
		}
	}
	c.Close()
	return c, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("writing file %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return nil
}
