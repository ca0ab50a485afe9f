// CLAUDE:SUMMARY Article workflows: import a file or publish editor HTML through docpipe, resolve a unique slug, persist, and render with anchors and TOC on read.
// CLAUDE:DEPENDS docpipe, slug, toc, idgen
// Package articles is the persistence collaborator of the import pipeline.
// It stores the normalized HTML a Pipeline produces under a unique slug and
// derives the table of contents every time an article is read; the TOC is
// never stored.
package articles

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hazyhaar/folio/docpipe"
	"github.com/hazyhaar/folio/idgen"
	"github.com/hazyhaar/folio/slug"
	"github.com/hazyhaar/folio/toc"
)

// slugAttempts bounds resolve-and-insert retries when a concurrent writer
// takes the resolved slug first.
const slugAttempts = 3

// Config configures a Service.
type Config struct {
	Logger *slog.Logger
	NewID  idgen.Generator  // default idgen.Default (UUIDv7)
	Now    func() time.Time // default time.Now
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.NewID == nil {
		c.NewID = idgen.Default
	}
	if c.Now == nil {
		c.Now = time.Now
	}
}

// Service ties the import pipeline to the store.
type Service struct {
	store  *Store
	pipe   *docpipe.Pipeline
	cfg    Config
	logger *slog.Logger
}

// NewService creates a Service.
func NewService(store *Store, pipe *docpipe.Pipeline, cfg Config) *Service {
	cfg.defaults()
	return &Service{store: store, pipe: pipe, cfg: cfg, logger: cfg.Logger}
}

// Pipeline returns the import pipeline the service uses.
func (s *Service) Pipeline() *docpipe.Pipeline { return s.pipe }

// Import runs req through the pipeline and stores the result. An empty
// title falls back to the title inferred from the document.
func (s *Service) Import(ctx context.Context, title string, req docpipe.Request) (*Article, *docpipe.Document, error) {
	doc, err := s.pipe.Import(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.create(ctx, title, doc)
	return a, doc, err
}

// ImportReader is Import for a stream of unknown length.
func (s *Service) ImportReader(ctx context.Context, title string, r io.Reader, contentType, name string) (*Article, *docpipe.Document, error) {
	doc, err := s.pipe.ImportReader(ctx, r, contentType, name)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.create(ctx, title, doc)
	return a, doc, err
}

// Publish stores rich-text editor output.
func (s *Service) Publish(ctx context.Context, title, html string) (*Article, *docpipe.Document, error) {
	doc, err := s.pipe.ImportHTML(ctx, html)
	if err != nil {
		return nil, nil, err
	}
	a, err := s.create(ctx, title, doc)
	return a, doc, err
}

func (s *Service) create(ctx context.Context, title string, doc *docpipe.Document) (*Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = doc.Title
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required for an empty document", ErrInvalidInput)
	}

	now := s.cfg.Now().UTC()
	a := &Article{
		ID:        s.cfg.NewID(),
		Title:     title,
		Content:   doc.HTML,
		CreatedAt: now,
		UpdatedAt: now,
	}
	base := slug.Generate(title)
	for attempt := 1; ; attempt++ {
		taken, err := s.store.SlugsWithPrefix(ctx, base)
		if err != nil {
			return nil, err
		}
		a.Slug = slug.ResolveUnique(base, taken)
		err = s.store.Create(ctx, a)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrSlugTaken) || attempt == slugAttempts {
			return nil, err
		}
	}

	s.logger.InfoContext(ctx, "articles: created",
		"id", a.ID, "slug", a.Slug, "format", doc.Format, "paragraphs", doc.Paragraphs)
	return a, nil
}

// Update holds the fields to change; nil fields are kept.
type Update struct {
	Title *string `json:"title,omitempty"`
	HTML  *string `json:"html,omitempty"`
}

// Update changes an article. New HTML goes through the pipeline again. A
// changed title regenerates the slug; the article's own current slug does
// not count as taken, so a title edit that maps to the same slug keeps it.
func (s *Service) Update(ctx context.Context, id string, u Update) (*Article, error) {
	a, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if u.HTML != nil {
		doc, err := s.pipe.ImportHTML(ctx, *u.HTML)
		if err != nil {
			return nil, err
		}
		a.Content = doc.HTML
	}

	retitled := false
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title must not be empty", ErrInvalidInput)
		}
		retitled = title != a.Title
		a.Title = title
	}
	a.UpdatedAt = s.cfg.Now().UTC()

	if !retitled {
		if err := s.store.Update(ctx, a); err != nil {
			return nil, err
		}
		return a, nil
	}

	old := a.Slug
	base := slug.Generate(a.Title)
	for attempt := 1; ; attempt++ {
		taken, err := s.store.SlugsWithPrefix(ctx, base)
		if err != nil {
			return nil, err
		}
		delete(taken, old)
		a.Slug = slug.ResolveUnique(base, taken)
		err = s.store.Update(ctx, a)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrSlugTaken) || attempt == slugAttempts {
			return nil, err
		}
	}
	if a.Slug != old {
		s.logger.InfoContext(ctx, "articles: slug changed", "id", a.ID, "from", old, "slug", a.Slug)
	}
	return a, nil
}

// Rendered is an article prepared for display.
type Rendered struct {
	Article *Article       `json:"article"`
	HTML    string         `json:"html"` // content with heading anchors
	TOC     []*toc.Heading `json:"toc"`
	TOCHTML string         `json:"toc_html"`
}

// Render loads an article by slug and derives its anchored HTML and table
// of contents.
func (s *Service) Render(ctx context.Context, sl string) (*Rendered, error) {
	a, err := s.store.GetBySlug(ctx, sl)
	if err != nil {
		return nil, err
	}
	html, headings, err := toc.Extract(a.Content)
	if err != nil {
		return nil, fmt.Errorf("articles: toc %s: %w", sl, err)
	}
	if headings == nil {
		headings = []*toc.Heading{}
	}
	return &Rendered{
		Article: a,
		HTML:    html,
		TOC:     headings,
		TOCHTML: toc.RenderHTML(headings),
	}, nil
}

// Get returns an article by id.
func (s *Service) Get(ctx context.Context, id string) (*Article, error) {
	return s.store.Get(ctx, id)
}

// List returns articles newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Article, error) {
	return s.store.List(ctx, limit, offset)
}

// Delete removes an article.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "articles: deleted", "id", id)
	return nil
}
