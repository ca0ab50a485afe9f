package articles

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/folio/docpipe"
)

func newServer(t *testing.T, cfg docpipe.Config) *httptest.Server {
	t.Helper()
	svc := NewService(newStore(t), docpipe.New(cfg), Config{})
	r := chi.NewRouter()
	NewHandler(svc).Routes(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		json.NewDecoder(resp.Body).Decode(&out)
	}
	return resp, out
}

// upload posts one file part with the given part content type.
func upload(t *testing.T, url, filename, contentType, title string, data []byte) (*http.Response, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if title != "" {
		mw.WriteField("title", title)
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	mw.Close()

	resp, err := http.Post(url+"/articles/import", mw.FormDataContentType(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func articleField(body map[string]any, key string) string {
	a, _ := body["article"].(map[string]any)
	s, _ := a[key].(string)
	return s
}

func TestHandler_ImportAndRender(t *testing.T) {
	// WHAT: An uploaded text file is stored and served back with anchors and a TOC.
	// WHY: This is the whole author workflow over HTTP.
	srv := newServer(t, docpipe.Config{})

	resp, body := upload(t, srv.URL, "notes.txt", "text/plain; charset=utf-8", "Field Notes", []byte("First line\n\nSecond"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("import status = %d, body %v", resp.StatusCode, body)
	}
	if articleField(body, "slug") != "field-notes" {
		t.Fatalf("slug = %q", articleField(body, "slug"))
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/articles/field-notes", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("render status = %d", resp.StatusCode)
	}
	if html, _ := body["html"].(string); html != "<p>First line</p>\n\n<p>Second</p>" {
		t.Fatalf("html = %q", html)
	}
	if toc, ok := body["toc"].([]any); !ok || len(toc) != 0 {
		t.Fatalf("toc = %#v, want empty list", body["toc"])
	}
}

func TestHandler_ImportExtensionFallback(t *testing.T) {
	srv := newServer(t, docpipe.Config{})
	resp, body := upload(t, srv.URL, "post.md", "application/octet-stream", "", []byte("# From Markdown\n\nbody"))
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body %v", resp.StatusCode, body)
	}
	if articleField(body, "title") != "From Markdown" || articleField(body, "slug") != "from-markdown" {
		t.Fatalf("article = %v", body["article"])
	}
}

func TestHandler_ImportErrors(t *testing.T) {
	srv := newServer(t, docpipe.Config{MaxFileSize: 32})

	tests := []struct {
		name        string
		filename    string
		contentType string
		data        []byte
		want        int
	}{
		{"unsupported", "photo.png", "image/png", []byte("png"), http.StatusUnsupportedMediaType},
		{"too large", "big.txt", "text/plain", bytes.Repeat([]byte("x"), 33), http.StatusRequestEntityTooLarge},
		{"corrupt docx", "bad.docx", docpipe.MIMEDocx, []byte("PK not a zip"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := upload(t, srv.URL, tt.filename, tt.contentType, "t", tt.data)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.want, body)
			}
			if _, ok := body["error"].(string); !ok {
				t.Fatalf("no error message: %v", body)
			}
		})
	}

	resp, err := http.Post(srv.URL+"/articles/import", "application/json", strings.NewReader("{}"))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-multipart status = %d, want 400", resp.StatusCode)
	}
}

func TestHandler_PublishUpdateDelete(t *testing.T) {
	srv := newServer(t, docpipe.Config{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/articles", map[string]string{
		"title": "Draft", "html": "<p>hello</p><script>x()</script>",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("publish status = %d (%v)", resp.StatusCode, body)
	}
	id := articleField(body, "id")
	warnings, _ := body["warnings"].([]any)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want the sanitized warning", body["warnings"])
	}

	resp, body = doJSON(t, http.MethodPut, srv.URL+"/articles/"+id, map[string]string{"title": "Final"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d (%v)", resp.StatusCode, body)
	}
	if body["slug"] != "final" {
		t.Fatalf("slug after rename = %v", body["slug"])
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/articles/draft", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("old slug status = %d, want 404", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/articles", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status = %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/articles/"+id, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/articles/"+id, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("second delete status = %d", resp.StatusCode)
	}
}

func TestHandler_BadInput(t *testing.T) {
	srv := newServer(t, docpipe.Config{})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"invalid slug", http.MethodGet, "/articles/bad%20slug", nil, http.StatusBadRequest},
		{"malformed json", http.MethodPost, "/articles", "not an object", http.StatusBadRequest},
		{"empty publish", http.MethodPost, "/articles", map[string]string{"html": "  "}, http.StatusBadRequest},
		{"update missing", http.MethodPut, "/articles/nope", map[string]string{"title": "x"}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doJSON(t, tt.method, srv.URL+tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Fatalf("status = %d, want %d (%v)", resp.StatusCode, tt.want, body)
			}
		})
	}
}

func TestHandler_TOCAndHealth(t *testing.T) {
	srv := newServer(t, docpipe.Config{})

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/toc", map[string]string{
		"html": "<h1>Intro</h1><h2>Intro</h2>",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("toc status = %d", resp.StatusCode)
	}
	html, _ := body["html"].(string)
	if !strings.Contains(html, `id="intro"`) || !strings.Contains(html, `id="intro-2"`) {
		t.Fatalf("html = %q", html)
	}

	resp, body = doJSON(t, http.MethodGet, srv.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("health = %d %v", resp.StatusCode, body)
	}
}
