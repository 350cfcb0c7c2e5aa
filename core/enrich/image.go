package enrich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/gaurav-prasanna/senseiharvest/core/extract"
	"github.com/gaurav-prasanna/senseiharvest/crawl"
)

// GrammarDetail is what a grammar detail page contributes to its record.
type GrammarDetail struct {
	MediaPath string
	Notes     string
}

// ImageResolver downloads the flashcard header image of a grammar lesson
// and, when NotesSelector is set, converts that section into Markdown notes.
type ImageResolver struct {
	Fetcher  core.Fetcher
	MediaDir string

	Normalizer    core.Normalizer
	NotesSelector string
}

// MediaName is the deterministic file name of a record's flashcard.
func MediaName(index int) string {
	return fmt.Sprintf("flashcard%d.jpg", index)
}

// Resolve downloads the flashcard for the record at index and returns its
// local path. It reports false when the page, the image element or the
// image itself is unavailable.
func (r *ImageResolver) Resolve(ctx context.Context, sourceURL string, index int) (string, bool) {
	d := r.ResolveDetail(ctx, sourceURL, index)
	return d.MediaPath, d.MediaPath != ""
}

// ResolveDetail fetches sourceURL once and extracts both the flashcard
// image and the optional notes.
func (r *ImageResolver) ResolveDetail(ctx context.Context, sourceURL string, index int) GrammarDetail {
	var d GrammarDetail
	if sourceURL == "" {
		slog.InfoContext(ctx, "grammar record has no source link", "index", index)
		return d
	}

	res := r.Fetcher.Fetch(ctx, sourceURL)
	if res.Status != core.FetchSuccess {
		slog.WarnContext(ctx, "failed to fetch grammar page", "index", index, "url", sourceURL, "status", res.Status.String(), "err", res.Err)
		return d
	}
	markup := res.HTML()

	d.Notes = r.notes(ctx, markup, index)

	src, err := extract.HeaderImage(markup)
	if err != nil {
		slog.InfoContext(ctx, "no flashcard image found", "index", index, "url", sourceURL, "err", err)
		return d
	}
	imageURL := crawl.ResolveURL(src, sourceURL)

	img := r.Fetcher.Fetch(ctx, imageURL)
	if img.Status != core.FetchSuccess || len(img.Body) == 0 {
		slog.WarnContext(ctx, "failed to download flashcard image", "index", index, "url", imageURL, "status", img.Status.String(), "err", img.Err)
		return d
	}

	path, err := r.save(index, img.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to save flashcard image", "index", index, "err", err)
		return d
	}
	d.MediaPath = path
	return d
}

func (r *ImageResolver) notes(ctx context.Context, markup string, index int) string {
	if r.NotesSelector == "" || r.Normalizer == nil {
		return ""
	}
	frag, err := extract.Fragment(markup, r.NotesSelector)
	if err != nil {
		if !errors.Is(err, core.ErrExtractionMiss) {
			slog.WarnContext(ctx, "failed to extract grammar notes", "index", index, "err", err)
		}
		return ""
	}
	md, err := r.Normalizer.Normalize(frag)
	if err != nil {
		slog.WarnContext(ctx, "failed to normalize grammar notes", "index", index, "err", err)
		return ""
	}
	return md
}

func (r *ImageResolver) save(index int, data []byte) (string, error) {
	if err := os.MkdirAll(r.MediaDir, 0755); err != nil {
		return "", fmt.Errorf("creating media directory: %w", err)
	}
	path := filepath.Join(r.MediaDir, MediaName(index))
	tmp := path + ".part"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("renaming %s: %w", tmp, err)
	}
	return path, nil
}
