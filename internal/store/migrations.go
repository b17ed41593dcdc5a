package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create published posts",
		SQL: `
			CREATE TABLE published_posts (
				id            TEXT PRIMARY KEY,
				draft_id      INTEGER NOT NULL,
				author_id     INTEGER NOT NULL,
				target        TEXT NOT NULL,
				shape         TEXT NOT NULL,
				media_count   INTEGER NOT NULL DEFAULT 0,
				caption       TEXT NOT NULL DEFAULT '',
				published_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_published_target ON published_posts (target);
			CREATE INDEX idx_published_at ON published_posts (published_at);
		`,
	},
}
