package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hazyhaar/folio/articles"
	"github.com/hazyhaar/folio/dbopen"
	"github.com/hazyhaar/folio/docpipe"
)

func TestRouter_Stack(t *testing.T) {
	// WHAT: The served API carries shield headers and a request id.
	// WHY: The router wiring in main is otherwise only exercised in production.
	db := dbopen.OpenMemory(t, dbopen.WithSchema(articles.Schema))
	svc := articles.NewService(articles.NewStore(db), docpipe.New(docpipe.Config{MaxFileSize: 1024}), articles.Config{})
	srv := httptest.NewServer(newRouter(svc))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/articles", "application/json",
		strings.NewReader(`{"title":"Hello","html":"<h2>One</h2><p>x</p>"}`))
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("publish status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Content-Type-Options") != "nosniff" {
		t.Error("security headers missing")
	}
	if !strings.HasPrefix(resp.Header.Get("X-Request-ID"), "req_") {
		t.Errorf("X-Request-ID = %q", resp.Header.Get("X-Request-ID"))
	}

	resp, err = http.Get(srv.URL + "/articles/hello")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		HTML string `json:"html"`
		TOC  []struct {
			ID string `json:"id"`
		} `json:"toc"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if len(out.TOC) != 1 || out.TOC[0].ID != "one" || !strings.Contains(out.HTML, `<h2 id="one">`) {
		t.Fatalf("render = %+v", out)
	}
}

func TestRouter_BodyCap(t *testing.T) {
	db := dbopen.OpenMemory(t, dbopen.WithSchema(articles.Schema))
	svc := articles.NewService(articles.NewStore(db), docpipe.New(docpipe.Config{MaxFileSize: 16}), articles.Config{})
	body := `{"title":"t","html":"` + strings.Repeat("x", multipartOverhead+64) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/articles", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	newRouter(svc).ServeHTTP(rec, req)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", rec.Code)
	}
}
