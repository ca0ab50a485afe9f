// CLAUDE:SUMMARY PDF importer: pdfcpu validates and counts pages, ledongthuc/pdf yields positioned glyphs, pages laid out independently.
// CLAUDE:DEPENDS docpipe/pdflayout.go, docpipe/quality.go
package docpipe

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// pageSource yields positioned text for 1-based page numbers.
type pageSource interface {
	NumPages() int
	Fragments(page int) ([]Fragment, error)
}

// pdfHeaderWindow is how far into the file the %PDF- marker may start.
const pdfHeaderWindow = 1024

var disableConfigDir sync.Once

// openPDFContext parses and validates data with pdfcpu.
func openPDFContext(data []byte, password string) (*model.Context, error) {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	if password != "" {
		conf.UserPW = password
		conf.OwnerPW = password
	}
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}
	return ctx, nil
}

// importPDF lays out every page of a PDF into b.
func importPDF(ctx context.Context, data []byte, cfg *Config, b *builder) (*ExtractionQuality, []Warning, error) {
	if !bytes.Contains(data[:min(len(data), pdfHeaderWindow)], []byte("%PDF-")) {
		return nil, nil, fmt.Errorf("no %%PDF- header in the first %d bytes", pdfHeaderWindow)
	}
	pctx, err := openPDFContext(data, cfg.PDF.Password)
	if err != nil {
		return nil, nil, err
	}
	if pctx.PageCount == 0 {
		return nil, nil, ErrNoPages
	}

	src, err := newGlyphSource(data, cfg.PDF.Password)
	if err != nil {
		return nil, nil, err
	}
	pages, warnings, err := importPDFSource(ctx, src, cfg.PDF, b)
	if err != nil {
		return nil, warnings, err
	}

	hasImages := pageImages(pctx)
	for i := range pages {
		pages[i].HasImages = hasImages(pages[i].Page)
	}
	quality := newExtractionQuality(pages)
	return quality, append(warnings, quality.ocrWarnings()...), nil
}

// importPDFSource lays out each page inside its own page container and
// scores the text of every page. A page that cannot be read gets a
// placeholder paragraph and a warning; the other pages are still imported.
// Multi-page documents get a "Page N" heading before each container.
func importPDFSource(ctx context.Context, src pageSource, cfg PDFConfig, b *builder) ([]PageQuality, []Warning, error) {
	n := src.NumPages()
	if n <= 0 {
		return nil, nil, ErrNoPages
	}

	var (
		pages    []PageQuality
		warnings []Warning
	)
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return pages, warnings, err
		}
		if n > 1 {
			b.headingClass(2, "pdf-page-number", fmt.Sprintf("Page %d", page))
		}
		b.beginPage(page)

		frags, err := src.Fragments(page)
		if err != nil {
			b.paragraph(plain(fmt.Sprintf("[Page %d could not be extracted]", page)))
			warnings = append(warnings, Warning{
				Code:    WarnPageFailed,
				Page:    page,
				Message: err.Error(),
			})
			pages = append(pages, PageQuality{Page: page, Failed: true})
			b.endPage()
			continue
		}
		pages = append(pages, scorePage(page, layoutPage(frags, cfg, b), false))
		b.endPage()
	}
	return pages, warnings, nil
}

// glyphSource reads positioned glyphs with ledongthuc/pdf.
type glyphSource struct {
	r *pdf.Reader
}

func newGlyphSource(data []byte, password string) (*glyphSource, error) {
	ra := bytes.NewReader(data)
	size := int64(len(data))

	var (
		r   *pdf.Reader
		err error
	)
	if password == "" {
		r, err = pdf.NewReader(ra, size)
	} else {
		// The callback is asked repeatedly until it returns "".
		offered := false
		r, err = pdf.NewReaderEncrypted(ra, size, func() string {
			if offered {
				return ""
			}
			offered = true
			return password
		})
	}
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}
	return &glyphSource{r: r}, nil
}

func (s *glyphSource) NumPages() int { return s.r.NumPage() }

// Fragments recovers from panics in the content stream interpreter so a
// malformed page never takes down the whole import.
func (s *glyphSource) Fragments(page int) (frags []Fragment, err error) {
	defer func() {
		if r := recover(); r != nil {
			frags, err = nil, fmt.Errorf("page %d: %v", page, r)
		}
	}()

	p := s.r.Page(page)
	if p.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", page)
	}
	texts := p.Content().Text
	gs := make([]glyph, len(texts))
	for i, t := range texts {
		gs[i] = glyph{X: t.X, Y: t.Y, W: t.W, FontSize: t.FontSize, S: t.S}
	}
	return coalesceGlyphs(gs), nil
}

// pageImages reports, per 1-based page, whether the page draws an image
// XObject. Without pdfcpu's optimize pass there is no per-page resource
// map, so any image stream in the file counts for every page.
func pageImages(ctx *model.Context) func(page int) bool {
	if ctx.Optimize != nil {
		return func(page int) bool { return len(pdfcpu.ImageObjNrs(ctx, page)) > 0 }
	}
	found := hasImageStream(ctx)
	return func(int) bool { return found }
}

func hasImageStream(ctx *model.Context) bool {
	for _, entry := range ctx.Table {
		if entry == nil || entry.Free || entry.Compressed {
			continue
		}
		sd, ok := entry.Object.(types.StreamDict)
		if !ok {
			continue
		}
		if subtype, found := sd.Find("Subtype"); found {
			if name, isName := subtype.(types.Name); isName && name == "Image" {
				return true
			}
		}
	}
	return false
}
