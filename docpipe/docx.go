// CLAUDE:SUMMARY Word importer: streams word/document.xml, maps paragraph styles to headings and run properties to inline emphasis.
// CLAUDE:DEPENDS docpipe/builder.go, docpipe/zip.go
package docpipe

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// maxXMLDepth bounds element nesting in office XML parts.
const maxXMLDepth = 256

var ole2Magic = []byte{0xD0, 0xCF, 0x11, 0xE0}

// importDocx decodes an OOXML word-processing document into b.
func importDocx(ctx context.Context, data []byte, cfg *Config, b *builder) error {
	if bytes.HasPrefix(data, ole2Magic) {
		return ErrLegacyWord
	}
	zr, err := openZip(data)
	if err != nil {
		return err
	}
	doc, err := readZipPart(zr, "word/document.xml", cfg.MaxDecompressedSize)
	if err != nil {
		return err
	}

	// styles.xml is optional; without it only style ids are matched.
	styles := map[string]string{}
	if raw, err := readZipPart(zr, "word/styles.xml", cfg.MaxDecompressedSize); err == nil {
		styles = parseDocxStyles(raw)
	}

	p := &docxParser{b: b, styles: styles}
	return p.parse(ctx, bytes.NewReader(doc))
}

type docxParser struct {
	b      *builder
	styles map[string]string // style id → style name

	depth int

	paraNest  int
	inPPr     bool
	paraStyle string
	inl       []inline

	inRun    bool
	inRPr    bool
	runMarks Mark
	inText   bool
}

func (p *docxParser) parse(ctx context.Context, r io.Reader) error {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			p.depth++
			if p.depth > maxXMLDepth {
				return fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			p.start(t)

		case xml.EndElement:
			p.depth--
			if t.Name.Local == "p" && p.paraNest == 1 {
				p.flush()
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			p.end(t)

		case xml.CharData:
			if p.inText && p.paraNest > 0 {
				p.inl = append(p.inl, styled(string(t), p.runMarks))
			}
		}
	}
	return nil
}

func (p *docxParser) start(t xml.StartElement) {
	switch t.Name.Local {
	case "p":
		if p.paraNest == 0 {
			p.paraStyle = ""
			p.inl = nil
		}
		p.paraNest++
	case "pPr":
		p.inPPr = true
	case "pStyle":
		if p.inPPr && p.paraNest == 1 {
			p.paraStyle = attr(t, "val")
		}
	case "r":
		p.inRun = true
		p.runMarks = 0
	case "rPr":
		p.inRPr = true
	case "b":
		p.toggle(t, MarkBold)
	case "i":
		p.toggle(t, MarkItalic)
	case "u":
		p.toggle(t, MarkUnderline)
	case "strike", "dstrike":
		p.toggle(t, MarkStrike)
	case "t":
		p.inText = p.inRun
	case "tab":
		if p.inRun && !p.inRPr {
			p.inl = append(p.inl, styled(" ", p.runMarks))
		}
	case "br", "cr":
		if p.inRun && attr(t, "type") != "page" {
			p.inl = append(p.inl, lineBreak())
		}
	}
}

func (p *docxParser) end(t xml.EndElement) {
	switch t.Name.Local {
	case "p":
		if p.paraNest > 0 {
			p.paraNest--
		}
	case "pPr":
		p.inPPr = false
	case "r":
		p.inRun = false
		p.runMarks = 0
	case "rPr":
		p.inRPr = false
	case "t":
		p.inText = false
	}
}

// toggle applies a run property. Properties inside the paragraph mark
// (pPr/rPr) describe the pilcrow, not the text, and are ignored.
func (p *docxParser) toggle(t xml.StartElement, m Mark) {
	if !p.inRun || !p.inRPr || p.inPPr {
		return
	}
	switch strings.ToLower(attr(t, "val")) {
	case "0", "false", "off", "none":
		p.runMarks &^= m
	default:
		p.runMarks |= m
	}
}

func (p *docxParser) flush() {
	inl := p.inl
	p.inl = nil
	if level := p.headingLevel(); level > 0 && hasText(inl) {
		p.b.heading(level, inl...)
		return
	}
	p.b.paragraph(inl...)
}

func (p *docxParser) headingLevel() int {
	if p.paraStyle == "" {
		return 0
	}
	if level := docxHeadingLevel(p.paraStyle); level > 0 {
		return level
	}
	return docxHeadingLevel(p.styles[p.paraStyle])
}

// docxHeadingLevel extracts the heading level from a paragraph style id or
// name, e.g. "Heading1" → 1, "heading 2" → 2, "Title" → 1.
func docxHeadingLevel(style string) int {
	lower := strings.ToLower(strings.ReplaceAll(style, " ", ""))

	switch lower {
	case "":
		return 0
	case "title":
		return 1
	case "subtitle":
		return 2
	}

	for _, prefix := range []string{"heading", "titre", "überschrift", "berschrift"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}

type docxStyles struct {
	Styles []struct {
		ID   string `xml:"styleId,attr"`
		Name struct {
			Val string `xml:"val,attr"`
		} `xml:"name"`
	} `xml:"style"`
}

// parseDocxStyles maps style ids to their display names.
func parseDocxStyles(raw []byte) map[string]string {
	var s docxStyles
	if err := xml.Unmarshal(raw, &s); err != nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(s.Styles))
	for _, st := range s.Styles {
		if st.ID != "" {
			out[st.ID] = st.Name.Val
		}
	}
	return out
}

func attr(t xml.StartElement, local string) string {
	for _, a := range t.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}
