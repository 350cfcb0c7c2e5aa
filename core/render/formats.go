package render

import (
	"fmt"
	"strings"

	"github.com/gaurav-prasanna/senseiharvest/core"
)

// Options configures the renderers built by ForFormats.
type Options struct {
	// PDFFont is a TrueType font with Japanese glyphs. Without it PDF
	// exports fall back to Helvetica and non-Latin text is replaced.
	PDFFont string
	// MediaBase is where Markdown image links are made relative to.
	MediaBase string
}

// Formats lists the accepted format names.
var Formats = []string{"json", "markdown", "pdf"}

// ForFormats builds one renderer per format name. Duplicates are ignored.
func ForFormats(formats []string, opts Options) ([]core.Renderer, error) {
	seen := make(map[string]bool)
	var out []core.Renderer
	for _, f := range formats {
		name := strings.ToLower(strings.TrimSpace(f))
		if name == "md" {
			name = "markdown"
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		switch name {
		case "json":
			out = append(out, NewJSONRenderer())
		case "markdown":
			out = append(out, NewMarkdownRenderer(opts.MediaBase))
		case "pdf":
			out = append(out, NewPDFRenderer(opts.PDFFont))
		default:
			return nil, fmt.Errorf("unknown output format %q (want one of %s)", f, strings.Join(Formats, ", "))
		}
	}
	return out, nil
}

// Title is the human heading for a collection, e.g. "JLPT N5 Vocabulary".
func Title(id core.CollectionID) string {
	kind := string(id.Kind)
	if kind != "" {
		kind = strings.ToUpper(kind[:1]) + kind[1:]
	}
	return fmt.Sprintf("JLPT %s %s", strings.ToUpper(string(id.Level)), kind)
}

// headline picks the record's main term: the first persisted field that
// is not the row number.
func headline(s core.ColumnSchema, rec *core.Record) string {
	for _, name := range s.Fields() {
		if name == "#" {
			continue
		}
		if v := rec.Get(name); v != "" {
			return v
		}
	}
	return fmt.Sprintf("#%d", rec.Index)
}
