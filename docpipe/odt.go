// CLAUDE:SUMMARY OpenDocument Text importer: reads content.xml from the ZIP archive, maps text:h outline levels to headings.
package docpipe

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// importODT decodes an .odt file into b.
func importODT(ctx context.Context, data []byte, cfg *Config, b *builder) error {
	zr, err := openZip(data)
	if err != nil {
		return err
	}
	content, err := readZipPart(zr, "content.xml", cfg.MaxDecompressedSize)
	if err != nil {
		return err
	}

	dec := xml.NewDecoder(bytes.NewReader(content))
	var (
		depth        int
		blockNest    int
		headingLevel int
		inl          []inline
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse content.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if depth > maxXMLDepth {
				return fmt.Errorf("xml nesting depth exceeds %d", maxXMLDepth)
			}
			switch t.Name.Local {
			case "h", "p":
				if blockNest == 0 {
					inl = nil
					headingLevel = 0
					if t.Name.Local == "h" {
						headingLevel = 1
						if n, err := strconv.Atoi(attr(t, "outline-level")); err == nil {
							headingLevel = n
						}
					}
				}
				blockNest++
			case "line-break":
				if blockNest > 0 {
					inl = append(inl, lineBreak())
				}
			case "tab", "s":
				if blockNest > 0 {
					inl = append(inl, plain(" "))
				}
			}

		case xml.CharData:
			if blockNest > 0 {
				inl = append(inl, plain(string(t)))
			}

		case xml.EndElement:
			depth--
			if t.Name.Local != "h" && t.Name.Local != "p" || blockNest == 0 {
				continue
			}
			blockNest--
			if blockNest > 0 {
				continue
			}
			if headingLevel > 0 && hasText(inl) {
				b.heading(headingLevel, inl...)
			} else {
				b.paragraph(inl...)
			}
			inl = nil
			if err := ctx.Err(); err != nil {
				return err
			}
		}
	}
	return nil
}
