package articles

// Schema creates the articles table. Timestamps are unix milliseconds.
// Apply it with dbopen.WithSchema; every statement is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS articles (
    id          TEXT PRIMARY KEY,
    title       TEXT NOT NULL,
    slug        TEXT NOT NULL UNIQUE,
    content     TEXT NOT NULL DEFAULT '',
    created_at  INTEGER NOT NULL,
    updated_at  INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_articles_created ON articles(created_at);
`
