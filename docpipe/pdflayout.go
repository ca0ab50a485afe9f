// CLAUDE:SUMMARY Rebuilds lines and paragraphs from positioned PDF text: y-rounding line grouping, x ordering, vertical-gap paragraph breaks.
package docpipe

import (
	"math"
	"sort"
	"strings"
)

// Fragment is a run of text positioned at its baseline origin, in PDF user
// space (y grows upward).
type Fragment struct {
	X, Y     float64
	FontSize float64
	Text     string
}

type pdfLine struct {
	y        float64
	fontSize float64
	text     string
}

// groupLines buckets fragments by rounded baseline, orders buckets top to
// bottom and fragments left to right, and joins fragment text with single
// spaces.
func groupLines(frags []Fragment, rounding float64) []pdfLine {
	if rounding <= 0 {
		rounding = DefaultLineRounding
	}
	buckets := make(map[int64][]Fragment)
	for _, f := range frags {
		key := int64(math.Round(f.Y / rounding))
		buckets[key] = append(buckets[key], f)
	}

	keys := make([]int64, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] > keys[j] })

	lines := make([]pdfLine, 0, len(keys))
	for _, k := range keys {
		fs := buckets[k]
		sort.SliceStable(fs, func(i, j int) bool { return fs[i].X < fs[j].X })

		parts := make([]string, 0, len(fs))
		var size float64
		for _, f := range fs {
			if t := strings.TrimSpace(f.Text); t != "" {
				parts = append(parts, t)
			}
			size = math.Max(size, f.FontSize)
		}
		lines = append(lines, pdfLine{
			y:        float64(k) * rounding,
			fontSize: size,
			text:     strings.Join(strings.Fields(strings.Join(parts, " ")), " "),
		})
	}
	return lines
}

// gapThreshold is the baseline distance above which a new paragraph starts.
func (c PDFConfig) gapThreshold(fontSize float64) float64 {
	t := c.ParagraphGap
	if c.GapFontRatio > 0 && fontSize > 0 {
		t = math.Max(t, c.GapFontRatio*fontSize)
	}
	return t
}

// layoutPage appends the paragraphs of one page to b and returns the page
// text, one line per row, for quality scoring.
//
// Blank lines become one spacer paragraph (runs collapse). A baseline gap
// larger than the threshold after a non-blank line closes the current
// paragraph even without a blank line in between; smaller gaps continue the
// paragraph with a space.
func layoutPage(frags []Fragment, cfg PDFConfig, b *builder) string {
	var (
		para      []inline
		prevY     float64
		havePrev  bool
		lastBlank bool
		text      strings.Builder
	)
	flush := func() {
		if len(para) > 0 {
			b.paragraph(para...)
			para = nil
		}
	}

	for _, ln := range groupLines(frags, cfg.LineRounding) {
		if ln.text == "" {
			flush()
			if !lastBlank {
				b.spacer()
			}
			lastBlank = true
			continue
		}
		if havePrev && !lastBlank && prevY-ln.y > cfg.gapThreshold(ln.fontSize) {
			flush()
		}
		if len(para) > 0 {
			para = append(para, plain(" "))
		}
		para = append(para, plain(ln.text))

		text.WriteString(ln.text)
		text.WriteByte('\n')
		prevY, havePrev, lastBlank = ln.y, true, false
	}
	flush()
	return text.String()
}

// glyph is one positioned character run as reported by the PDF library.
type glyph struct {
	X, Y, W  float64
	FontSize float64
	S        string
}

// coalesceGlyphs merges adjacent glyphs on the same baseline into
// fragments. A space glyph or a horizontal gap wider than 15% of the font
// size starts a new fragment.
func coalesceGlyphs(gs []glyph) []Fragment {
	var (
		out    []Fragment
		cur    *Fragment
		curEnd float64
	)
	for _, g := range gs {
		if strings.TrimSpace(g.S) == "" {
			cur = nil
			continue
		}
		tol := 0.15 * g.FontSize
		if tol <= 0 {
			tol = 1
		}
		if cur != nil && math.Abs(g.Y-cur.Y) < 0.5 && math.Abs(g.X-curEnd) <= tol {
			cur.Text += g.S
			curEnd = g.X + g.W
			continue
		}
		out = append(out, Fragment{X: g.X, Y: g.Y, FontSize: g.FontSize, Text: g.S})
		cur = &out[len(out)-1]
		curEnd = g.X + g.W
	}
	return out
}
