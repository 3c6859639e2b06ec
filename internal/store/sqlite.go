// Package store persists feed metadata and tagged entries in sqlite. The
// rule table itself is never persisted; it is recompiled from the outline
// documents on every startup.
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Thaodan/elfeed-autotag/internal/feed"
)

//go:embed schema.sql
var schema string

// Store handles database operations.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the given database path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertFeed inserts or refreshes a feed's metadata. An existing display
// title is kept unless the incoming one is non-empty.
func (s *Store) UpsertFeed(f *feed.Feed) error {
	_, err := s.db.Exec(`
		INSERT INTO feeds (url, title, description, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title       = CASE WHEN excluded.title != '' THEN excluded.title ELSE feeds.title END,
			description = excluded.description,
			fetched_at  = excluded.fetched_at
	`, f.URL, f.Title, f.Description, f.FetchedAt)
	if err != nil {
		return fmt.Errorf("upsert feed: %w", err)
	}
	return nil
}

// GetFeedByURL retrieves a feed's metadata.
func (s *Store) GetFeedByURL(url string) (*feed.Feed, error) {
	var f feed.Feed
	err := s.db.QueryRow(
		"SELECT url, title, description, fetched_at FROM feeds WHERE url = ?",
		url,
	).Scan(&f.URL, &f.Title, &f.Description, &f.FetchedAt)
	if err != nil {
		return nil, fmt.Errorf("get feed: %w", err)
	}
	return &f, nil
}

// SetFeedTitle assigns a display title to a feed, creating the feed row if it
// does not exist yet.
func (s *Store) SetFeedTitle(url, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO feeds (url, title) VALUES (?, ?)
		ON CONFLICT(url) DO UPDATE SET title = excluded.title
	`, url, title)
	if err != nil {
		return fmt.Errorf("set feed title: %w", err)
	}
	return nil
}

// ListFeeds returns all known feeds ordered by URL.
func (s *Store) ListFeeds() ([]feed.Feed, error) {
	rows, err := s.db.Query(
		"SELECT url, title, description, fetched_at FROM feeds ORDER BY url",
	)
	if err != nil {
		return nil, fmt.Errorf("list feeds: %w", err)
	}
	defer rows.Close()

	var feeds []feed.Feed
	for rows.Next() {
		var f feed.Feed
		if err := rows.Scan(&f.URL, &f.Title, &f.Description, &f.FetchedAt); err != nil {
			return nil, fmt.Errorf("scan feed: %w", err)
		}
		feeds = append(feeds, f)
	}

	return feeds, rows.Err()
}

// SaveEntry persists an entry, keyed by (feed URL, link). A new entry gets a
// generated ID; an already-known entry only has its tags refreshed. Returns
// whether the entry was newly created.
func (s *Store) SaveEntry(e *feed.Entry) (bool, error) {
	var existing string
	err := s.db.QueryRow(
		"SELECT id FROM entries WHERE feed_url = ? AND link = ?",
		e.FeedURL, e.Link,
	).Scan(&existing)

	switch {
	case err == nil:
		e.ID = existing
		_, err = s.db.Exec("UPDATE entries SET tags = ? WHERE id = ?", joinTags(e.Tags), existing)
		if err != nil {
			return false, fmt.Errorf("update entry tags: %w", err)
		}
		return false, nil

	case err != sql.ErrNoRows:
		return false, fmt.Errorf("find entry: %w", err)
	}

	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	_, err = s.db.Exec(`
		INSERT INTO entries (id, feed_url, title, link, content, content_type, authors, tags, published, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.FeedURL, e.Title, e.Link, e.Content, e.ContentType,
		strings.Join(e.Authors, "\n"), joinTags(e.Tags), e.Published, time.Now())
	if err != nil {
		return false, fmt.Errorf("insert entry: %w", err)
	}
	return true, nil
}

// GetEntry retrieves an entry by ID.
func (s *Store) GetEntry(id string) (*feed.Entry, error) {
	row := s.db.QueryRow(entrySelect+" WHERE id = ?", id)
	e, err := scanEntry(row)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return e, nil
}

// ListEntries returns recent entries with pagination, newest first.
func (s *Store) ListEntries(limit, offset int) ([]feed.Entry, error) {
	rows, err := s.db.Query(
		entrySelect+" ORDER BY published DESC LIMIT ? OFFSET ?",
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return collectEntries(rows)
}

// ListEntriesByFeed returns a feed's entries, newest first.
func (s *Store) ListEntriesByFeed(feedURL string, limit int) ([]feed.Entry, error) {
	rows, err := s.db.Query(
		entrySelect+" WHERE feed_url = ? ORDER BY published DESC LIMIT ?",
		feedURL, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list feed entries: %w", err)
	}
	return collectEntries(rows)
}

// SearchEntries performs a simple text search over entry titles.
func (s *Store) SearchEntries(query string) ([]feed.Entry, error) {
	rows, err := s.db.Query(
		entrySelect+" WHERE title LIKE ? ORDER BY published DESC",
		"%"+query+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search entries: %w", err)
	}
	return collectEntries(rows)
}

const entrySelect = `
	SELECT id, feed_url, title, link, content, content_type, authors, tags, published
	FROM entries`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*feed.Entry, error) {
	var e feed.Entry
	var authors, tags string
	err := row.Scan(&e.ID, &e.FeedURL, &e.Title, &e.Link, &e.Content,
		&e.ContentType, &authors, &tags, &e.Published)
	if err != nil {
		return nil, err
	}
	if authors != "" {
		e.Authors = strings.Split(authors, "\n")
	}
	e.Tags = splitTags(tags)
	return &e, nil
}

func collectEntries(rows *sql.Rows) ([]feed.Entry, error) {
	defer rows.Close()

	var entries []feed.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}
