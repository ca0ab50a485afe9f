package docpipe

import (
	"testing"
)

func layoutHTML(frags []Fragment, cfg PDFConfig) string {
	cfg.defaults()
	var b builder
	layoutPage(frags, cfg, &b)
	return b.String()
}

func TestLayoutPage_ParagraphGap(t *testing.T) {
	// WHAT: A 30pt baseline gap splits paragraphs, a 10pt gap does not.
	// WHY: The default threshold is 20; ordinary line spacing must reflow into one paragraph.
	tests := []struct {
		name  string
		frags []Fragment
		want  string
	}{
		{
			"gap above threshold",
			[]Fragment{{X: 50, Y: 700, Text: "A"}, {X: 50, Y: 670, Text: "B"}},
			"<p>A</p>\n\n<p>B</p>",
		},
		{
			"gap below threshold",
			[]Fragment{{X: 50, Y: 700, Text: "A"}, {X: 50, Y: 690, Text: "B"}},
			"<p>A B</p>",
		},
		{
			"gap exactly at threshold",
			[]Fragment{{X: 50, Y: 700, Text: "A"}, {X: 50, Y: 680, Text: "B"}},
			"<p>A B</p>",
		},
		{
			"input order does not matter",
			[]Fragment{{X: 50, Y: 670, Text: "B"}, {X: 50, Y: 700, Text: "A"}},
			"<p>A</p>\n\n<p>B</p>",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := layoutHTML(tt.frags, PDFConfig{}); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLayoutPage_LineOrdering(t *testing.T) {
	frags := []Fragment{
		{X: 200, Y: 700, Text: "world"},
		{X: 50, Y: 700.3, Text: "Hello"},
		{X: 120, Y: 699.8, Text: " big "},
	}
	if got, want := layoutHTML(frags, PDFConfig{}), "<p>Hello big world</p>"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLayoutPage_BlankLines(t *testing.T) {
	// WHAT: Whitespace-only lines become one spacer, however many there are.
	// WHY: Spacer runs would otherwise inflate the paragraph count.
	frags := []Fragment{
		{X: 50, Y: 700, Text: "A"},
		{X: 50, Y: 690, Text: "  "},
		{X: 50, Y: 680, Text: "\t"},
		{X: 50, Y: 670, Text: "B"},
	}
	want := "<p>A</p>\n\n<p>&nbsp;</p>\n\n<p>B</p>"
	if got := layoutHTML(frags, PDFConfig{}); got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestLayoutPage_GapFontRatio(t *testing.T) {
	frags := []Fragment{
		{X: 50, Y: 700, FontSize: 24, Text: "Large"},
		{X: 50, Y: 670, FontSize: 24, Text: "type"},
	}
	if got, want := layoutHTML(frags, PDFConfig{}), "<p>Large</p>\n\n<p>type</p>"; got != want {
		t.Fatalf("fixed gap: got %q, want %q", got, want)
	}
	if got, want := layoutHTML(frags, PDFConfig{GapFontRatio: 2}), "<p>Large type</p>"; got != want {
		t.Fatalf("font ratio: got %q, want %q", got, want)
	}
}

func TestLayoutPage_LineRounding(t *testing.T) {
	frags := []Fragment{
		{X: 50, Y: 702, Text: "A"},
		{X: 90, Y: 699, Text: "B"},
	}
	if got, want := layoutHTML(frags, PDFConfig{}), "<p>A B</p>"; got != want {
		t.Fatalf("integer rounding: got %q, want %q", got, want)
	}
	lines := groupLines(frags, 5)
	if len(lines) != 1 || lines[0].text != "A B" {
		t.Fatalf("rounding 5: got %+v, want one line %q", lines, "A B")
	}
	if lines := groupLines(frags, 1); len(lines) != 2 {
		t.Fatalf("rounding 1: got %d lines, want 2", len(lines))
	}
}

func TestLayoutPage_Text(t *testing.T) {
	var b builder
	cfg := PDFConfig{}
	cfg.defaults()
	text := layoutPage([]Fragment{{Y: 700, Text: "one"}, {Y: 600, Text: "two"}}, cfg, &b)
	if text != "one\ntwo\n" {
		t.Fatalf("text = %q", text)
	}
}

func TestLayoutPage_Empty(t *testing.T) {
	if got := layoutHTML(nil, PDFConfig{}); got != "" {
		t.Fatalf("got %q, want empty", got)
	}
}

func TestCoalesceGlyphs(t *testing.T) {
	tests := []struct {
		name string
		in   []glyph
		want []string
	}{
		{
			"adjacent glyphs merge",
			[]glyph{
				{X: 10, Y: 700, W: 7, FontSize: 12, S: "H"},
				{X: 17, Y: 700, W: 3, FontSize: 12, S: "i"},
			},
			[]string{"Hi"},
		},
		{
			"space glyph splits",
			[]glyph{
				{X: 10, Y: 700, W: 6, FontSize: 12, S: "a"},
				{X: 16, Y: 700, W: 3, FontSize: 12, S: " "},
				{X: 19, Y: 700, W: 6, FontSize: 12, S: "b"},
			},
			[]string{"a", "b"},
		},
		{
			"wide gap splits",
			[]glyph{
				{X: 10, Y: 700, W: 6, FontSize: 12, S: "a"},
				{X: 40, Y: 700, W: 6, FontSize: 12, S: "b"},
			},
			[]string{"a", "b"},
		},
		{
			"baseline change splits",
			[]glyph{
				{X: 10, Y: 700, W: 6, FontSize: 12, S: "a"},
				{X: 16, Y: 680, W: 6, FontSize: 12, S: "b"},
			},
			[]string{"a", "b"},
		},
		{
			"zero-width glyphs at one origin merge",
			[]glyph{
				{X: 72, Y: 692, FontSize: 12, S: "o"},
				{X: 72, Y: 692, FontSize: 12, S: "k"},
			},
			[]string{"ok"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := coalesceGlyphs(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d fragments %+v, want %v", len(got), got, tt.want)
			}
			for i, f := range got {
				if f.Text != tt.want[i] {
					t.Errorf("fragment %d = %q, want %q", i, f.Text, tt.want[i])
				}
			}
		})
	}
}
