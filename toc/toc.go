// CLAUDE:SUMMARY Heading extraction: injects unique anchor ids into h1-h6 and builds the nested table of contents.
// Package toc derives a table of contents from document HTML.
//
// Extract walks the headings in document order, gives each one an id
// derived from its text (unique within the document, never colliding with
// ids already used by other elements) and nests each heading under the
// nearest preceding heading of a strictly lower level. Re-running Extract on
// its own output yields the same ids and tree.
//
// Input is parsed as a body fragment, so head-only elements such as title,
// meta, link and style stay where the author put them.
package toc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/hazyhaar/folio/slug"
)

const headingSelector = "h1, h2, h3, h4, h5, h6"

// Heading is one node of the table of contents.
type Heading struct {
	Level    int        `json:"level"`
	Text     string     `json:"text"`
	ID       string     `json:"id"`
	Children []*Heading `json:"children,omitempty"`
}

// Extract returns html with an id on every heading, and the heading tree.
func Extract(src string) (string, []*Heading, error) {
	root := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(src), root)
	if err != nil {
		return "", nil, fmt.Errorf("toc: parse: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	doc := goquery.NewDocumentFromNode(root)

	used := slug.NewSet()
	doc.Find("[id]").Not(headingSelector).Each(func(_ int, s *goquery.Selection) {
		if id, ok := s.Attr("id"); ok && id != "" {
			used.Add(id)
		}
	})

	var (
		roots []*Heading
		stack []*Heading
	)
	doc.Find(headingSelector).Each(func(i int, s *goquery.Selection) {
		level := int(goquery.NodeName(s)[1] - '0')
		text := strings.Join(strings.Fields(s.Text()), " ")

		base := slug.Make(text)
		if base == "" {
			base = fmt.Sprintf("section-%d", i+1)
		}
		id := slug.ResolveUnique(base, used)
		used.Add(id)
		s.SetAttr("id", id)

		h := &Heading{Level: level, Text: text, ID: id}
		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, h)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, h)
		}
		stack = append(stack, h)
	})

	out, err := doc.Html()
	if err != nil {
		return "", nil, fmt.Errorf("toc: render: %w", err)
	}
	return out, roots, nil
}

// Flatten returns the tree in document order.
func Flatten(roots []*Heading) []*Heading {
	var out []*Heading
	var walk func([]*Heading)
	walk = func(hs []*Heading) {
		for _, h := range hs {
			out = append(out, h)
			walk(h.Children)
		}
	}
	walk(roots)
	return out
}

// Count returns the number of headings in the tree.
func Count(roots []*Heading) int {
	n := 0
	for _, h := range roots {
		n += 1 + Count(h.Children)
	}
	return n
}
