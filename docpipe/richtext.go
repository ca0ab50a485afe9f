// CLAUDE:SUMMARY Rich-text input: bluemonday sanitizing, wrapping of top-level bare text into paragraphs, and goldmark Markdown import.
package docpipe

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// richTextPolicy keeps the markup a rich-text editor produces plus the
// attributes this package emits itself (page containers, heading ids).
var richTextPolicy = func() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)).OnElements("p", "div", "span", "h2", "pre", "code")
	p.AllowAttrs("data-page").Matching(bluemonday.Integer).OnElements("div")
	return p
}()

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// unsafeTags are removed by the policy along with their content.
var unsafeTags = map[string]bool{
	"script": true, "style": true, "iframe": true, "object": true,
	"embed": true, "form": true, "frame": true, "frameset": true,
}

// blockTags may sit at the top level of the content.
var blockTags = map[atom.Atom]bool{
	atom.P: true, atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Ul: true, atom.Ol: true, atom.Dl: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Div: true,
	atom.Figure: true, atom.Hr: true, atom.Section: true, atom.Article: true,
	atom.Details: true,
}

var headingTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
}

// richText is sanitized, block-wrapped HTML ready for Normalize.
type richText struct {
	html      string
	title     string
	sanitized bool
}

// prepareRichText sanitizes raw editor HTML and wraps every run of
// top-level text or inline elements in a <p>, so no text is left outside a
// block element.
func prepareRichText(raw string) (richText, error) {
	out := richText{sanitized: hasUnsafeMarkup(raw)}
	clean := richTextPolicy.Sanitize(raw)

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(clean), body)
	if err != nil {
		return out, err
	}

	var (
		blocks  []*html.Node
		pending []*html.Node
		heading string
		first   string
	)
	flush := func() {
		if len(pending) == 0 {
			return
		}
		p := &html.Node{Type: html.ElementNode, Data: "p", DataAtom: atom.P}
		for _, n := range pending {
			p.AppendChild(n)
		}
		blocks = append(blocks, p)
		pending = nil
	}
	for _, n := range nodes {
		switch {
		case n.Type == html.ElementNode && blockTags[n.DataAtom]:
			flush()
			blocks = append(blocks, n)
		case n.Type == html.TextNode && len(pending) == 0 && strings.TrimSpace(n.Data) == "":
			// whitespace between blocks
		case n.Type == html.TextNode, n.Type == html.ElementNode:
			pending = append(pending, n)
		}
	}
	flush()

	var sb strings.Builder
	for i, n := range blocks {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		if err := html.Render(&sb, n); err != nil {
			return out, err
		}
		text := collapseSpace(nodeText(n))
		if heading == "" && headingTags[n.DataAtom] {
			heading = text
		}
		if first == "" {
			first = text
		}
	}
	out.html = sb.String()
	out.title = heading
	if out.title == "" {
		out.title = first
	}
	return out, nil
}

// hasUnsafeMarkup reports markup the sanitizer is going to drop: active
// elements, event handler attributes, script URLs.
func hasUnsafeMarkup(raw string) bool {
	z := html.NewTokenizer(strings.NewReader(raw))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if unsafeTags[string(name)] {
				return true
			}
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = z.TagAttr()
				if bytes.HasPrefix(key, []byte("on")) {
					return true
				}
				if bytes.HasPrefix(bytes.ToLower(bytes.TrimSpace(val)), []byte("javascript:")) {
					return true
				}
			}
		}
	}
}

// markdownToHTML renders CommonMark plus GFM extensions. Raw HTML in the
// source is omitted by the renderer.
func markdownToHTML(src []byte) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
