// CLAUDE:SUMMARY SQLite article store: CRUD by id and slug, listing, and the taken-slug set the slug resolver needs.
// CLAUDE:DEPENDS dbopen, slug
package articles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hazyhaar/folio/dbopen"
	"github.com/hazyhaar/folio/slug"
)

// Article is one stored article. Content is normalized HTML without
// heading anchors; anchors and the table of contents are derived on read.
type Article struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists articles in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore wraps db. The caller applies Schema when opening it.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const articleColumns = `id, title, slug, content, created_at, updated_at`

// Create inserts a. A slug already in use yields ErrSlugTaken.
func (s *Store) Create(ctx context.Context, a *Article) error {
	_, err := dbopen.Exec(ctx, s.db,
		`INSERT INTO articles (`+articleColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.Slug, a.Content, a.CreatedAt.UnixMilli(), a.UpdatedAt.UnixMilli(),
	)
	if dbopen.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrSlugTaken, a.Slug)
	}
	if err != nil {
		return fmt.Errorf("articles: insert: %w", err)
	}
	return nil
}

// Update rewrites title, slug, content and updated_at of the article a.ID.
func (s *Store) Update(ctx context.Context, a *Article) error {
	return dbopen.RunTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE articles SET title = ?, slug = ?, content = ?, updated_at = ? WHERE id = ?`,
			a.Title, a.Slug, a.Content, a.UpdatedAt.UnixMilli(), a.ID,
		)
		if dbopen.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", ErrSlugTaken, a.Slug)
		}
		if err != nil {
			return fmt.Errorf("articles: update: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: id %s", ErrNotFound, a.ID)
		}
		return nil
	})
}

// Get returns the article with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return a, err
}

// GetBySlug returns the article with the given slug.
func (s *Store) GetBySlug(ctx context.Context, sl string) (*Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, sl)
	a, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: slug %s", ErrNotFound, sl)
	}
	return a, err
}

// List returns articles newest first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Article, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+articleColumns+` FROM articles ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("articles: list: %w", err)
	}
	defer rows.Close()

	out := []Article{}
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// Delete removes the article with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := dbopen.Exec(ctx, s.db, `DELETE FROM articles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("articles: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: id %s", ErrNotFound, id)
	}
	return nil
}

// SlugsWithPrefix returns the slugs that collide with base or with one of
// its numbered variants (base-2, base-3, ...).
func (s *Store) SlugsWithPrefix(ctx context.Context, base string) (slug.Set, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT slug FROM articles WHERE slug = ? OR slug LIKE ? ESCAPE '\'`,
		base, escapeLike(base)+"-%",
	)
	if err != nil {
		return nil, fmt.Errorf("articles: slugs: %w", err)
	}
	defer rows.Close()

	set := slug.NewSet()
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("articles: slugs: %w", err)
		}
		set.Add(v)
	}
	return set, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(sc scanner) (*Article, error) {
	var (
		a                Article
		created, updated int64
	)
	if err := sc.Scan(&a.ID, &a.Title, &a.Slug, &a.Content, &created, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("articles: scan: %w", err)
	}
	a.CreatedAt = time.UnixMilli(created).UTC()
	a.UpdatedAt = time.UnixMilli(updated).UTC()
	return &a, nil
}
