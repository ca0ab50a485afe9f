// CLAUDE:SUMMARY Append-only block/inline node builder serialized once into well-formed HTML by every importer.
package docpipe

import (
	"html"
	"strconv"
	"strings"
)

// Mark is a set of inline emphasis flags.
type Mark uint8

const (
	MarkBold Mark = 1 << iota
	MarkItalic
	MarkUnderline
	MarkStrike
)

// markTags lists inline tags from outermost to innermost.
var markTags = []struct {
	mark Mark
	tag  string
}{
	{MarkBold, "strong"},
	{MarkItalic, "em"},
	{MarkUnderline, "u"},
	{MarkStrike, "s"},
}

type inline struct {
	text  string
	marks Mark
	br    bool
}

func plain(s string) inline { return inline{text: s} }

func styled(s string, m Mark) inline { return inline{text: s, marks: m} }

func lineBreak() inline { return inline{br: true} }

type blockKind uint8

const (
	blockParagraph blockKind = iota
	blockHeading
	blockSpacer
	blockPage
)

type block struct {
	kind     blockKind
	level    int // heading level, or page number for blockPage
	class    string
	inlines  []inline
	children []block
}

// builder accumulates blocks. Blocks are only appended; HTML is produced
// once by String.
type builder struct {
	blocks []block
	page   *block
}

func (b *builder) add(bl block) {
	if b.page != nil {
		b.page.children = append(b.page.children, bl)
		return
	}
	b.blocks = append(b.blocks, bl)
}

func (b *builder) last() *block {
	list := b.blocks
	if b.page != nil {
		list = b.page.children
	}
	if len(list) == 0 {
		return nil
	}
	return &list[len(list)-1]
}

// paragraph appends a paragraph. A paragraph with no visible text becomes
// an empty paragraph, kept one for one.
func (b *builder) paragraph(inl ...inline) {
	if !hasText(inl) {
		b.emptyParagraph()
		return
	}
	b.add(block{kind: blockParagraph, inlines: mergeInlines(trimBreaks(inl))})
}

// heading appends a heading. Empty headings are dropped.
func (b *builder) heading(level int, inl ...inline) {
	if !hasText(inl) {
		return
	}
	if level < 1 {
		level = 1
	}
	if level > 6 {
		level = 6
	}
	b.add(block{kind: blockHeading, level: level, inlines: mergeInlines(trimBreaks(inl))})
}

// headingClass appends a heading carrying a class attribute.
func (b *builder) headingClass(level int, class string, s string) {
	b.add(block{kind: blockHeading, level: level, class: class, inlines: []inline{plain(s)}})
}

// emptyParagraph appends an empty visual line. Runs are kept as written.
func (b *builder) emptyParagraph() {
	b.add(block{kind: blockSpacer})
}

// spacer appends an empty visual line unless the previous block already is
// one. PDF layout uses it for blank rows.
func (b *builder) spacer() {
	if l := b.last(); l != nil && l.kind == blockSpacer {
		return
	}
	b.add(block{kind: blockSpacer})
}

// beginPage opens a page container; following blocks go inside it.
func (b *builder) beginPage(n int) {
	b.endPage()
	b.page = &block{kind: blockPage, level: n, class: "pdf-page"}
}

// endPage closes the open page container, if any.
func (b *builder) endPage() {
	if b.page == nil {
		return
	}
	pg := *b.page
	b.page = nil
	b.blocks = append(b.blocks, pg)
}

// firstText returns the text of the first heading, or of the first
// paragraph when there is no heading.
func (b *builder) firstText() string {
	var para string
	var walk func([]block) string
	walk = func(blocks []block) string {
		for _, bl := range blocks {
			switch bl.kind {
			case blockHeading:
				if bl.class == "" {
					return plainText(bl.inlines)
				}
			case blockParagraph:
				if para == "" {
					para = plainText(bl.inlines)
				}
			case blockPage:
				if t := walk(bl.children); t != "" {
					return t
				}
			}
		}
		return ""
	}
	if t := walk(b.blocks); t != "" {
		return t
	}
	return para
}

// String serializes all blocks. Top-level blocks are separated by a blank
// line so block boundaries stay visible in the stored source.
func (b *builder) String() string {
	b.endPage()
	var sb strings.Builder
	writeBlocks(&sb, b.blocks)
	return sb.String()
}

func writeBlocks(sb *strings.Builder, blocks []block) {
	for i, bl := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		writeBlock(sb, bl)
	}
}

func writeBlock(sb *strings.Builder, bl block) {
	switch bl.kind {
	case blockParagraph:
		sb.WriteString("<p>")
		writeInlines(sb, bl.inlines)
		sb.WriteString("</p>")
	case blockSpacer:
		sb.WriteString("<p>&nbsp;</p>")
	case blockHeading:
		tag := "h" + strconv.Itoa(bl.level)
		sb.WriteString("<" + tag)
		if bl.class != "" {
			sb.WriteString(` class="` + html.EscapeString(bl.class) + `"`)
		}
		sb.WriteByte('>')
		writeInlines(sb, bl.inlines)
		sb.WriteString("</" + tag + ">")
	case blockPage:
		sb.WriteString(`<div class="` + bl.class + `" data-page="` + strconv.Itoa(bl.level) + `">`)
		sb.WriteByte('\n')
		writeBlocks(sb, bl.children)
		sb.WriteString("\n</div>")
	}
}

func writeInlines(sb *strings.Builder, inl []inline) {
	for _, in := range inl {
		if in.br {
			sb.WriteString("<br>")
			continue
		}
		if in.text == "" {
			continue
		}
		for _, mt := range markTags {
			if in.marks&mt.mark != 0 {
				sb.WriteString("<" + mt.tag + ">")
			}
		}
		sb.WriteString(html.EscapeString(in.text))
		for i := len(markTags) - 1; i >= 0; i-- {
			if in.marks&markTags[i].mark != 0 {
				sb.WriteString("</" + markTags[i].tag + ">")
			}
		}
	}
}

func hasText(inl []inline) bool {
	for _, in := range inl {
		if !in.br && strings.TrimSpace(in.text) != "" {
			return true
		}
	}
	return false
}

// mergeInlines joins adjacent text runs that carry the same marks, so split
// runs from office formats do not produce <strong>a</strong><strong>b</strong>.
func mergeInlines(inl []inline) []inline {
	out := make([]inline, 0, len(inl))
	for _, in := range inl {
		if n := len(out); n > 0 && !in.br && !out[n-1].br && out[n-1].marks == in.marks {
			out[n-1].text += in.text
			continue
		}
		out = append(out, in)
	}
	return out
}

// trimBreaks drops leading and trailing line breaks.
func trimBreaks(inl []inline) []inline {
	for len(inl) > 0 && inl[0].br {
		inl = inl[1:]
	}
	for len(inl) > 0 && inl[len(inl)-1].br {
		inl = inl[:len(inl)-1]
	}
	return inl
}

func plainText(inl []inline) string {
	var sb strings.Builder
	for _, in := range inl {
		if in.br {
			sb.WriteByte(' ')
			continue
		}
		sb.WriteString(in.text)
	}
	return strings.Join(strings.Fields(sb.String()), " ")
}
