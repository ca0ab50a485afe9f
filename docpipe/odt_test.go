package docpipe

import (
	"context"
	"strings"
	"testing"
)

func odtContent(body string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0"
  xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0">
<office:body><office:text>` + body + `</office:text></office:body></office:document-content>`
}

func importODTBody(t *testing.T, body string) (*Document, error) {
	t.Helper()
	data := buildZip(t, map[string]string{"content.xml": odtContent(body)})
	return New(Config{}).Import(context.Background(), Request{MIME: MIMEODT, Data: data})
}

func TestImportODT(t *testing.T) {
	doc, err := importODTBody(t, `
<text:h text:outline-level="1">ODT Title</text:h>
<text:p>First <text:span>paragraph</text:span>.</text:p>
<text:p/>
<text:h text:outline-level="2">Part</text:h>
<text:p>a<text:line-break/>b<text:tab/>c</text:p>`)
	if err != nil {
		t.Fatal(err)
	}
	want := "<h1>ODT Title</h1>\n\n<p>First paragraph.</p>\n\n<p>&nbsp;</p>\n\n<h2>Part</h2>\n\n<p>a<br>b c</p>"
	if doc.HTML != want {
		t.Fatalf("HTML:\n got %q\nwant %q", doc.HTML, want)
	}
	if doc.Title != "ODT Title" {
		t.Fatalf("Title = %q", doc.Title)
	}
}

func TestImportODT_XMLBomb(t *testing.T) {
	// WHAT: ODT with deeply nested XML returns depth error.
	// WHY: XML bomb defense for ODT format.
	var body strings.Builder
	for i := 0; i < 300; i++ {
		body.WriteString("<text:p>")
	}
	body.WriteString("deep text")
	for i := 0; i < 300; i++ {
		body.WriteString("</text:p>")
	}
	_, err := importODTBody(t, body.String())
	if err == nil {
		t.Fatal("expected error for deeply nested XML")
	}
	if !strings.Contains(err.Error(), "nesting depth") {
		t.Errorf("expected 'nesting depth' error, got: %v", err)
	}
}
