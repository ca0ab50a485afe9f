package toc

import (
	"html"
	"strings"
)

// RenderHTML renders the tree as nested <ul> lists of anchor links.
// An empty tree renders as "".
func RenderHTML(roots []*Heading) string {
	if len(roots) == 0 {
		return ""
	}
	var sb strings.Builder
	renderList(&sb, roots)
	return sb.String()
}

func renderList(sb *strings.Builder, hs []*Heading) {
	sb.WriteString(`<ul class="toc">`)
	for _, h := range hs {
		sb.WriteString(`<li><a href="#`)
		sb.WriteString(html.EscapeString(h.ID))
		sb.WriteString(`">`)
		sb.WriteString(html.EscapeString(h.Text))
		sb.WriteString(`</a>`)
		if len(h.Children) > 0 {
			renderList(sb, h.Children)
		}
		sb.WriteString(`</li>`)
	}
	sb.WriteString(`</ul>`)
}
