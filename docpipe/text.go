// CLAUDE:SUMMARY Plain-text importer: blank-line paragraphs, explicit line breaks inside a paragraph, spacer paragraphs for empty blocks.
package docpipe

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ImportText reads plain text from r and returns it as normalized HTML.
// Any text is valid input; only a failing reader produces an error.
func ImportText(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	var b builder
	importText(decodeText(data), &b)
	return finish(FormatText, &b, nil), nil
}

// importText splits content on blank-line pairs. Inside a block every
// non-empty line is kept and joined to the next with a line break; each
// block without any non-empty line becomes its own &nbsp; paragraph.
func importText(content string, b *builder) {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	for _, chunk := range strings.Split(content, "\n\n") {
		var inl []inline
		for _, line := range strings.Split(chunk, "\n") {
			line = strings.TrimRight(line, " \t")
			if strings.TrimSpace(line) == "" {
				continue
			}
			if len(inl) > 0 {
				inl = append(inl, lineBreak())
			}
			inl = append(inl, plain(line))
		}
		b.paragraph(inl...)
	}
}

// decodeText returns data as a UTF-8 string. Invalid UTF-8 is decoded as
// Windows-1252, the usual encoding of legacy .txt exports.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return strings.ToValidUTF8(string(data), "\uFFFD")
	}
	return string(out)
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}
