// Package store reads the NELA article/tweet sqlite database and keeps
// collection checkpoints for resumable API pagination.
package store

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/nela-research/citegraph/internal/model"
)

// Store wraps a sqlite database via modernc.org/sqlite.
type Store struct {
	db *sql.DB
}

// Open opens a sqlite database at the given path and configures WAL mode.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, eris.Wrap(err, "store: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "store: exec %s", pragma)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// LoadCitations returns one citation event per embedded tweet, joined
// with its article's source. When rowIDs is non-empty only articles in
// that set are returned (topic subsets exported from prior analysis).
func (s *Store) LoadCitations(ctx context.Context, rowIDs map[string]struct{}) ([]model.CitationEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.article_id, a.source, t.embedded_tweet, a.rowid
		 FROM tweet t INNER JOIN newsdata a ON t.article_id = a.id
		 ORDER BY t.embedded_tweet`)
	if err != nil {
		return nil, eris.Wrap(err, "store: load citations")
	}
	defer rows.Close()

	var out []model.CitationEvent
	for rows.Next() {
		var ev model.CitationEvent
		var url sql.NullString
		if err := rows.Scan(&ev.ArticleID, &ev.Source, &url, &ev.RowID); err != nil {
			return nil, eris.Wrap(err, "store: scan citation")
		}
		ev.URL = url.String
		if len(rowIDs) > 0 {
			if _, ok := rowIDs[strconv.FormatInt(ev.RowID, 10)]; !ok {
				continue
			}
		}
		out = append(out, ev)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate citations")
}

// Article is a minimal article record for qualitative lookups.
type Article struct {
	Source string
	Title  string
	URL    string
}

// ArticlesForTweet returns the articles that embed the given tweet URL,
// matching both the raw and the query-stripped form.
func (s *Store) ArticlesForTweet(ctx context.Context, rawURL, cleanURL string) ([]Article, error) {
	const q = `SELECT a.source, a.title, a.url
		 FROM tweet t INNER JOIN newsdata a ON t.article_id = a.id
		 WHERE t.embedded_tweet IN (?, ?)`
	rows, err := s.db.QueryContext(ctx, q, rawURL, cleanURL)
	if err != nil {
		return nil, eris.Wrap(err, "store: articles for tweet")
	}
	defer rows.Close()

	var out []Article
	for rows.Next() {
		var a Article
		if err := rows.Scan(&a.Source, &a.Title, &a.URL); err != nil {
			return nil, eris.Wrap(err, "store: scan article")
		}
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate articles")
}

// SourceCounts aggregates embedded tweets and tweet-bearing articles per
// source.
type SourceCounts struct {
	Source   string
	Tweets   int
	Articles int
}

// TweetsPerSource returns per-source tweet and tweet-article counts.
func (s *Store) TweetsPerSource(ctx context.Context) ([]SourceCounts, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.source, count(*), count(distinct t.article_id)
		 FROM tweet t INNER JOIN newsdata a ON t.article_id = a.id
		 GROUP BY a.source ORDER BY a.source`)
	if err != nil {
		return nil, eris.Wrap(err, "store: tweets per source")
	}
	defer rows.Close()

	var out []SourceCounts
	for rows.Next() {
		var c SourceCounts
		if err := rows.Scan(&c.Source, &c.Tweets, &c.Articles); err != nil {
			return nil, eris.Wrap(err, "store: scan source counts")
		}
		out = append(out, c)
	}
	return out, eris.Wrap(rows.Err(), "store: iterate source counts")
}

// ArticlesPerSource returns the total number of articles per source,
// regardless of whether they embed tweets.
func (s *Store) ArticlesPerSource(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT source, count(id) FROM newsdata GROUP BY source`)
	if err != nil {
		return nil, eris.Wrap(err, "store: articles per source")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var src string
		var n int
		if err := rows.Scan(&src, &n); err != nil {
			return nil, eris.Wrap(err, "store: scan article count")
		}
		out[src] = n
	}
	return out, eris.Wrap(rows.Err(), "store: iterate article counts")
}

// TweetsPerArticle returns the number of embedded tweets per article id.
func (s *Store) TweetsPerArticle(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT article_id, count(*) FROM tweet GROUP BY article_id`)
	if err != nil {
		return nil, eris.Wrap(err, "store: tweets per article")
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, eris.Wrap(err, "store: scan tweet count")
		}
		out[id] = n
	}
	return out, eris.Wrap(rows.Err(), "store: iterate tweet counts")
}

// UniqueArticleCount returns the number of distinct articles that embed
// at least one tweet.
func (s *Store) UniqueArticleCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(distinct article_id) FROM tweet`).Scan(&n)
	return n, eris.Wrap(err, "store: unique article count")
}

// Checkpoint records pagination progress for one user+endpoint so a
// collection run survives rate-limit pauses and restarts.
type Checkpoint struct {
	UserID    string
	Endpoint  string
	Token     string
	Collected int
	UpdatedAt time.Time
}

const checkpointMigration = `
CREATE TABLE IF NOT EXISTS collect_checkpoints (
	user_id    TEXT NOT NULL,
	endpoint   TEXT NOT NULL,
	token      TEXT NOT NULL DEFAULT '',
	collected  INTEGER NOT NULL DEFAULT 0,
	updated_at DATETIME NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (user_id, endpoint)
);
`

// Migrate creates the citegraph-owned checkpoint table.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, checkpointMigration)
	return eris.Wrap(err, "store: migrate")
}

// GetCheckpoint returns the checkpoint for (userID, endpoint), or nil if
// none exists.
func (s *Store) GetCheckpoint(ctx context.Context, userID, endpoint string) (*Checkpoint, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT user_id, endpoint, token, collected, updated_at
		 FROM collect_checkpoints WHERE user_id = ? AND endpoint = ?`,
		userID, endpoint)

	var cp Checkpoint
	err := row.Scan(&cp.UserID, &cp.Endpoint, &cp.Token, &cp.Collected, &cp.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrapf(err, "store: get checkpoint %s/%s", userID, endpoint)
	}
	return &cp, nil
}

// SaveCheckpoint upserts pagination progress.
func (s *Store) SaveCheckpoint(ctx context.Context, cp Checkpoint) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collect_checkpoints (user_id, endpoint, token, collected, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, endpoint) DO UPDATE
		 SET token = excluded.token, collected = excluded.collected, updated_at = excluded.updated_at`,
		cp.UserID, cp.Endpoint, cp.Token, cp.Collected, time.Now().UTC())
	return eris.Wrapf(err, "store: save checkpoint %s/%s", cp.UserID, cp.Endpoint)
}

// ClearCheckpoint removes the checkpoint once a user's pagination is
// complete.
func (s *Store) ClearCheckpoint(ctx context.Context, userID, endpoint string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM collect_checkpoints WHERE user_id = ? AND endpoint = ?`,
		userID, endpoint)
	return eris.Wrapf(err, "store: clear checkpoint %s/%s", userID, endpoint)
}
