// CLAUDE:SUMMARY PDF extraction quality: scores each laid-out page and lists the pages whose text layer looks scanned or garbled.
// CLAUDE:EXPORTS ExtractionQuality, PageQuality
package docpipe

import "unicode"

// Thresholds for a page whose text layer is not the real content.
const (
	minPageChars      = 50   // below this, an image-bearing page is a scan
	minPrintableRatio = 0.85 // below this, the font has no usable ToUnicode map
)

// PageQuality scores the text extracted from one PDF page.
type PageQuality struct {
	Page           int     `json:"page"`
	Chars          int     `json:"chars"`
	PrintableRatio float64 `json:"printable_ratio"`
	HasImages      bool    `json:"has_images"`
	Failed         bool    `json:"failed,omitempty"`
}

// NeedsOCR reports an image page with almost no text, or text that is
// mostly unprintable. Failed pages are reported separately.
func (p PageQuality) NeedsOCR() bool {
	if p.Failed {
		return false
	}
	return (p.Chars < minPageChars && p.HasImages) || p.PrintableRatio < minPrintableRatio
}

// ExtractionQuality summarizes the pages of one PDF import.
type ExtractionQuality struct {
	PageCount    int           `json:"page_count"`
	CharsPerPage float64       `json:"chars_per_page"`
	Pages        []PageQuality `json:"pages"`
	ScannedPages []int         `json:"scanned_pages,omitempty"`
}

// NeedsOCR reports whether any page needs OCR.
func (q *ExtractionQuality) NeedsOCR() bool { return len(q.ScannedPages) > 0 }

// scorePage measures the text layoutPage returned for one page.
func scorePage(page int, text string, hasImages bool) PageQuality {
	var chars, printable int
	for _, r := range text {
		if r == '\n' {
			continue
		}
		chars++
		if isPrintableGlyph(r) {
			printable++
		}
	}
	pq := PageQuality{Page: page, Chars: chars, PrintableRatio: 1, HasImages: hasImages}
	if chars > 0 {
		pq.PrintableRatio = float64(printable) / float64(chars)
	}
	return pq
}

// isPrintableGlyph rejects what broken font encodings produce: private use
// code points, U+FFFD and control characters.
func isPrintableGlyph(r rune) bool {
	switch {
	case r >= 0xE000 && r <= 0xF8FF, r == unicode.ReplacementChar:
		return false
	case r == '\t':
		return true
	}
	return unicode.IsPrint(r)
}

// newExtractionQuality aggregates page scores in page order.
func newExtractionQuality(pages []PageQuality) *ExtractionQuality {
	q := &ExtractionQuality{PageCount: len(pages), Pages: pages}
	total, scored := 0, 0
	for _, p := range pages {
		if p.Failed {
			continue
		}
		total += p.Chars
		scored++
		if p.NeedsOCR() {
			q.ScannedPages = append(q.ScannedPages, p.Page)
		}
	}
	if scored > 0 {
		q.CharsPerPage = float64(total) / float64(scored)
	}
	return q
}

// ocrWarnings returns one WarnNeedsOCR per scanned page.
func (q *ExtractionQuality) ocrWarnings() []Warning {
	var out []Warning
	for _, p := range q.ScannedPages {
		out = append(out, Warning{
			Code:    WarnNeedsOCR,
			Page:    p,
			Message: "little extractable text on this page; it is probably scanned",
		})
	}
	return out
}
