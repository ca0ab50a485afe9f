package articles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hazyhaar/folio/docpipe"
)

func newService(t *testing.T) *Service {
	t.Helper()
	n := 0
	clock := time.UnixMilli(1_700_000_000_000)
	return NewService(newStore(t), docpipe.New(docpipe.Config{}), Config{
		NewID: func() string { n++; return fmt.Sprintf("id%d", n) },
		Now: func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		},
	})
}

func textRequest(s string) docpipe.Request {
	return docpipe.Request{Name: "post.txt", MIME: docpipe.MIMEText, Data: []byte(s)}
}

func TestService_ImportResolvesUniqueSlugs(t *testing.T) {
	// WHAT: Three articles titled "My Post" get my-post, my-post-2, my-post-3.
	// WHY: Slugs are URLs; a second article must never shadow the first.
	ctx := context.Background()
	svc := newService(t)

	var got []string
	for range 3 {
		a, _, err := svc.Import(ctx, "My Post", textRequest("Body text"))
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, a.Slug)
	}
	if strings.Join(got, ",") != "my-post,my-post-2,my-post-3" {
		t.Fatalf("slugs = %v", got)
	}
}

func TestService_ImportInfersTitle(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	a, doc, err := svc.Import(ctx, "  ", textRequest("Über Cafés\n\nBody"))
	if err != nil {
		t.Fatal(err)
	}
	if a.Title != "Über Cafés" || a.Slug != "uber-cafes" {
		t.Fatalf("article = %+v", a)
	}
	if a.Content != doc.HTML {
		t.Fatalf("stored content differs from pipeline output")
	}

	if _, _, err := svc.Import(ctx, "", textRequest("")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("empty doc without title err = %v, want ErrInvalidInput", err)
	}
}

func TestService_ImportErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, _, err := svc.Import(ctx, "x", docpipe.Request{MIME: "image/png", Data: []byte("x")})
	if !errors.Is(err, docpipe.ErrUnsupportedFormat) {
		t.Fatalf("err = %v, want ErrUnsupportedFormat", err)
	}
	list, _ := svc.List(ctx, 10, 0)
	if len(list) != 0 {
		t.Fatalf("failed import stored %d articles", len(list))
	}
}

func TestService_Update(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	a, _, err := svc.Publish(ctx, "Launch Notes", "<p>v1</p>")
	if err != nil {
		t.Fatal(err)
	}
	if _, _, err := svc.Publish(ctx, "Release", "<p>other</p>"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		title    *string
		html     *string
		wantSlug string
	}{
		{"content only keeps slug", nil, ptr("<h2>New</h2>plain"), "launch-notes"},
		{"same slug after case change", ptr("LAUNCH notes"), nil, "launch-notes"},
		{"new title regenerates", ptr("Release"), nil, "release-2"},
		{"back to a free slug", ptr("Launch Notes"), nil, "launch-notes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Update(ctx, a.ID, Update{Title: tt.title, HTML: tt.html})
			if err != nil {
				t.Fatal(err)
			}
			if got.Slug != tt.wantSlug {
				t.Fatalf("slug = %q, want %q", got.Slug, tt.wantSlug)
			}
			if !got.UpdatedAt.After(got.CreatedAt) {
				t.Fatalf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
			}
		})
	}

	stored, _ := svc.Get(ctx, a.ID)
	if stored.Content != "<h2>New</h2>\n\n<p>plain</p>" {
		t.Fatalf("content = %q", stored.Content)
	}

	if _, err := svc.Update(ctx, a.ID, Update{Title: ptr(" ")}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank title err = %v", err)
	}
	if _, err := svc.Update(ctx, "nope", Update{Title: ptr("x")}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func TestService_Render(t *testing.T) {
	// WHAT: Render anchors headings and builds the TOC from stored content.
	// WHY: The TOC is never stored; it must follow the current content.
	ctx := context.Background()
	svc := newService(t)

	a, _, err := svc.Publish(ctx, "Guide", "<h1>Guide</h1><h3>Deep</h3><h2>Setup</h2><p>text</p>")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(a.Content, "id=") {
		t.Fatalf("stored content already has anchors: %q", a.Content)
	}

	out, err := svc.Render(ctx, a.Slug)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`<h1 id="guide">`, `<h3 id="deep">`, `<h2 id="setup">`} {
		if !strings.Contains(out.HTML, want) {
			t.Errorf("HTML missing %q: %s", want, out.HTML)
		}
	}
	if len(out.TOC) != 1 || len(out.TOC[0].Children) != 2 {
		t.Fatalf("TOC = %+v, want one root with two children", out.TOC)
	}
	if !strings.Contains(out.TOCHTML, `href="#setup"`) {
		t.Fatalf("TOCHTML = %q", out.TOCHTML)
	}

	if _, err := svc.Render(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing err = %v", err)
	}
}

func ptr(s string) *string { return &s }
