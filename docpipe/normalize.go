// CLAUDE:SUMMARY Idempotent HTML normalizer: collapses blank-line runs, keeps empty paragraphs as &nbsp;, trims.
package docpipe

import (
	"regexp"
	"strings"
)

var (
	newlineRunRe = regexp.MustCompile(`\n{3,}`)
	emptyParaRe  = regexp.MustCompile(`(?i)<p(\s[^>]*)?>\s*</p>`)
	paraOpenRe   = regexp.MustCompile(`(?i)<p(\s[^>]*)?>`)

	// lineEnds maps CRLF and lone CR to LF in a single pass.
	lineEnds = strings.NewReplacer("\r\n", "\n", "\r", "\n")
)

// Normalize cleans importer output. Line endings become LF first. It then
// collapses three or more
// newlines to two, rewrites whitespace-only paragraphs to &nbsp; paragraphs
// so the empty line survives browser whitespace collapsing, and trims the
// result. Normalize(Normalize(s)) == Normalize(s).
func Normalize(html string) string {
	html = lineEnds.Replace(html)
	html = newlineRunRe.ReplaceAllString(html, "\n\n")
	html = emptyParaRe.ReplaceAllString(html, "<p${1}>&nbsp;</p>")
	return strings.TrimSpace(html)
}

// CountParagraphs returns the number of <p> elements in html.
func CountParagraphs(html string) int {
	return len(paraOpenRe.FindAllStringIndex(html, -1))
}
