package docpipe

import (
	"strings"
	"testing"
)

func TestScorePage(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		images    bool
		wantChars int
		wantOCR   bool
	}{
		{"text page", strings.Repeat("Plain sentence of body text.\n", 3), false, 84, false},
		{"short text, no images", "Title\n", false, 5, false},
		{"scan with a caption", "Figure 1\n", true, 8, true},
		{"empty scan", "", true, 0, true},
		{"empty page without images", "", false, 0, false},
		{"garbled font", "ab\uE000\uE001\uE002\uE003\uE004cd\uFFFD\x01\n", false, 10, true},
		{"tabs are printable", "a\tb\n", false, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := scorePage(4, tt.text, tt.images)
			if p.Page != 4 || p.Chars != tt.wantChars {
				t.Fatalf("score = %+v, want page 4 with %d chars", p, tt.wantChars)
			}
			if p.NeedsOCR() != tt.wantOCR {
				t.Fatalf("NeedsOCR = %v, want %v (%+v)", p.NeedsOCR(), tt.wantOCR, p)
			}
		})
	}
}

func TestNewExtractionQuality(t *testing.T) {
	// WHAT: Scanned pages are listed by number and each gets its own warning.
	// WHY: A mostly-text PDF with one scanned annex should point the author at that page.
	pages := []PageQuality{
		scorePage(1, strings.Repeat("x", 120)+"\n", true),
		scorePage(2, "", true),
		{Page: 3, Failed: true},
		scorePage(4, strings.Repeat("y", 60)+"\n", false),
	}
	q := newExtractionQuality(pages)

	if q.PageCount != 4 {
		t.Errorf("PageCount = %d", q.PageCount)
	}
	if q.CharsPerPage != 60 {
		t.Errorf("CharsPerPage = %v, want 60 over the three readable pages", q.CharsPerPage)
	}
	if !q.NeedsOCR() || len(q.ScannedPages) != 1 || q.ScannedPages[0] != 2 {
		t.Fatalf("ScannedPages = %v, want [2]", q.ScannedPages)
	}
	ws := q.ocrWarnings()
	if len(ws) != 1 || ws[0].Code != WarnNeedsOCR || ws[0].Page != 2 {
		t.Fatalf("warnings = %+v", ws)
	}

	if empty := newExtractionQuality(nil); empty.NeedsOCR() || empty.CharsPerPage != 0 {
		t.Fatalf("empty = %+v", empty)
	}
}
