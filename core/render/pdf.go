package render

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/jung-kurt/gofpdf"
)

const (
	utf8Family = "studyfont"
	coreFamily = "Helvetica"
	cardWidth  = 80.0
)

// cardFields are shown on their own lines rather than in the detail row.
var cardFields = map[string]bool{"#": true, "Sentence JP": true, "Sentence EN": true, "Source": true}

// PDFRenderer lays a collection out as a printable study sheet: one block
// per record with its fields, example sentence, flashcard and notes.
type PDFRenderer struct {
	// FontPath is a TrueType font with CJK glyphs. With no font the core
	// Helvetica face is used and characters outside cp1252 become ".".
	FontPath string
}

// NewPDFRenderer creates a PDFRenderer.
func NewPDFRenderer(fontPath string) *PDFRenderer {
	return &PDFRenderer{FontPath: fontPath}
}

type sheet struct {
	pdf    *gofpdf.Fpdf
	family string
	tr     func(string) string
}

// Render converts the collection into PDF bytes.
func (r *PDFRenderer) Render(c *core.Collection) ([]byte, error) {
	if c.Schema.IsZero() {
		return nil, fmt.Errorf("%s: %w", c.ID, core.ErrEmptyCollection)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetTitle(Title(c.ID), true)

	s := &sheet{pdf: pdf, family: coreFamily, tr: pdf.UnicodeTranslatorFromDescriptor("")}
	if r.FontPath != "" {
		if _, err := os.Stat(r.FontPath); err != nil {
			return nil, fmt.Errorf("pdf font: %w", err)
		}
		pdf.AddUTF8Font(utf8Family, "", r.FontPath)
		pdf.AddUTF8Font(utf8Family, "B", r.FontPath)
		s.family = utf8Family
		s.tr = func(v string) string { return v }
	}
	pdf.AddPage()

	s.font("B", 18)
	pdf.MultiCell(0, 8, s.tr(Title(c.ID)), "", "L", false)
	s.font("", 9)
	pdf.SetTextColor(100, 100, 100)
	pdf.MultiCell(0, 5, fmt.Sprintf("%d entries", c.Len()), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, rec := range c.Records {
		s.record(c.Schema, rec)
		if err := pdf.Error(); err != nil {
			return nil, fmt.Errorf("record %d: %w", rec.Index, err)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Extension returns the file extension for PDF output.
func (r *PDFRenderer) Extension() string {
	return ".pdf"
}

func (s *sheet) font(style string, size float64) {
	if s.family == utf8Family && style != "" && style != "B" {
		style = ""
	}
	s.pdf.SetFont(s.family, style, size)
}

func (s *sheet) record(schema core.ColumnSchema, rec *core.Record) {
	pdf := s.pdf
	head := headline(schema, rec)

	s.font("B", 13)
	pdf.MultiCell(0, 7, s.tr(fmt.Sprintf("%d. %s", rec.Index, head)), "", "L", false)

	var details []string
	for _, name := range schema.Fields() {
		if cardFields[name] {
			continue
		}
		if v := rec.Get(name); v != "" && v != head {
			details = append(details, v)
		}
	}
	if len(details) > 0 {
		s.font("", 10)
		pdf.MultiCell(0, 5, s.tr(strings.Join(details, "  /  ")), "", "L", false)
	}

	if rec.SentenceSource != "" {
		s.font("", 10)
		pdf.SetFillColor(245, 245, 245)
		pdf.MultiCell(0, 5, s.tr(rec.SentenceSource), "", "L", true)
		if rec.SentenceTarget != "" {
			s.font("I", 9)
			pdf.MultiCell(0, 5, s.tr(rec.SentenceTarget), "", "L", false)
		}
	}

	if rec.MediaPath != "" {
		s.image(rec)
	}

	if rec.Notes != "" {
		s.notes(rec.Notes)
	}
	pdf.Ln(4)
}

func (s *sheet) image(rec *core.Record) {
	f, err := os.Open(rec.MediaPath)
	if err != nil {
		slog.Warn("flashcard unreadable", "index", rec.Index, "path", rec.MediaPath, "err", err)
		return
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil || cfg.Width == 0 {
		slog.Warn("flashcard is not a JPEG, skipping", "index", rec.Index, "path", rec.MediaPath)
		return
	}

	pdf := s.pdf
	height := cardWidth * float64(cfg.Height) / float64(cfg.Width)
	_, pageHeight := pdf.GetPageSize()
	_, _, _, bottom := pdf.GetMargins()
	if pdf.GetY()+height > pageHeight-bottom {
		pdf.AddPage()
	}
	pdf.ImageOptions(rec.MediaPath, pdf.GetX(), pdf.GetY(), cardWidth, 0, true,
		gofpdf.ImageOptions{ImageType: "JPG", ReadDpi: true}, 0, "")
	pdf.Ln(2)
}

func (s *sheet) notes(md string) {
	pdf := s.pdf
	for _, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case trimmed == "":
			pdf.Ln(2)
		case strings.HasPrefix(trimmed, "#"):
			s.font("B", 11)
			pdf.MultiCell(0, 6, s.tr(cleanInlineMarkdown(strings.TrimLeft(trimmed, "# "))), "", "L", false)
		case strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
			s.font("", 10)
			pdf.MultiCell(0, 5, s.tr("- "+cleanInlineMarkdown(trimmed[2:])), "", "L", false)
		default:
			s.font("", 10)
			pdf.MultiCell(0, 5, s.tr(cleanInlineMarkdown(trimmed)), "", "L", false)
		}
	}
}

var (
	italicRegex = regexp.MustCompile(`(?:^|\s)\*([^*]+)\*(?:\s|$)`)
	pdfLinkRe   = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]+\)`)
)

// cleanInlineMarkdown strips inline Markdown formatting for PDF rendering.
func cleanInlineMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "__", "")
	text = italicRegex.ReplaceAllString(text, " $1 ")
	text = codeRegex.ReplaceAllString(text, "$1")
	text = pdfLinkRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}
