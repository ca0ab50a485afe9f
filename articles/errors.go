package articles

import "errors"

var (
	// ErrNotFound is returned when no article matches the id or slug.
	ErrNotFound = errors.New("articles: not found")

	// ErrInvalidInput is returned for missing or malformed request fields.
	ErrInvalidInput = errors.New("articles: invalid input")

	// ErrSlugTaken is returned when a concurrent writer claimed the slug
	// between resolution and insert.
	ErrSlugTaken = errors.New("articles: slug taken")
)
