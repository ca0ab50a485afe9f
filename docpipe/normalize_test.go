package docpipe

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>a</p>\n\n\n\n<p>b</p>", "<p>a</p>\n\n<p>b</p>"},
		{"<p></p>", "<p>&nbsp;</p>"},
		{"<p>  \n </p>", "<p>&nbsp;</p>"},
		{`<p class="x"> </p>`, `<p class="x">&nbsp;</p>`},
		{"<P></P>", "<p>&nbsp;</p>"},
		{"\n\n  <p>x</p>  \n", "<p>x</p>"},
		{"<pre> </pre>", "<pre> </pre>"},
		{"<p>a</p>\r\n\r\n\r\n<p>b</p>", "<p>a</p>\n\n<p>b</p>"},
		{"<p>a</p>\r\r<p>b</p>", "<p>a</p>\n\n<p>b</p>"},
		{"<p>a</p>\r\r\n\r\r\n\r\r\n<p>b</p>", "<p>a</p>\n\n<p>b</p>"},
		{"<p>\r</p>", "<p>&nbsp;</p>"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	// WHAT: Normalize(Normalize(x)) == Normalize(x).
	// WHY: Stored content is normalized again on every update.
	inputs := []string{
		"",
		"<p></p>\n\n\n<p> </p>",
		"  <h1>T</h1>\n\n\n\n\n<p>x</p>\n\n<p>\t</p>  ",
		`<div class="pdf-page" data-page="1">` + "\n<p></p>\n\n\n</div>",
		"<p>&nbsp;</p>",
		"<p>a</p>\r\r\n\r\r\n\r\r\n<p>b</p>",
		"<p>a</p>\r\n\r<p>b</p>\r",
		"\r\n\r\n<p>x</p>\n\r\n\r\n\r",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestCountParagraphs(t *testing.T) {
	html := `<p>a</p><P class="x">b</P><pre>c</pre><h1>d</h1><p>&nbsp;</p>`
	if n := CountParagraphs(html); n != 3 {
		t.Fatalf("CountParagraphs = %d, want 3", n)
	}
}
