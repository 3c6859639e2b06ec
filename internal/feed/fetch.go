package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"
)

const maxFeedBytes = 5 * 1024 * 1024

// Fetcher retrieves and parses remote feeds.
type Fetcher struct {
	client *http.Client
	parser *gofeed.Parser
}

// NewFetcher creates a Fetcher with a bounded request timeout.
func NewFetcher() *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: 30 * time.Second},
		parser: gofeed.NewParser(),
	}
}

// Fetch retrieves the feed at rawURL and returns its metadata plus entries.
// Items without a usable link are silently skipped.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Feed, []Entry, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "elfeed-autotag/1.0 (feed fetcher)")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read body: %w", err)
	}

	return f.ParseBody(rawURL, string(body))
}

// ParseBody parses an already-retrieved RSS or Atom document.
func (f *Fetcher) ParseBody(feedURL, body string) (*Feed, []Entry, error) {
	parsed, err := f.parser.ParseString(body)
	if err != nil {
		return nil, nil, fmt.Errorf("parse feed: %w", err)
	}

	now := time.Now()
	fd := &Feed{
		URL:         feedURL,
		Title:       parsed.Title,
		Description: parsed.Description,
		FetchedAt:   &now,
	}

	entries := make([]Entry, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		link := extractLink(item)
		if link == "" {
			continue
		}
		entries = append(entries, entryFromItem(fd, item, link))
	}

	return fd, entries, nil
}

func entryFromItem(fd *Feed, item *gofeed.Item, link string) Entry {
	content := item.Content
	if content == "" {
		content = item.Description
	}

	e := Entry{
		FeedURL:     fd.URL,
		FeedTitle:   fd.Title,
		Title:       item.Title,
		Link:        link,
		Content:     content,
		ContentType: resolveContentType(content),
		Authors:     itemAuthors(item),
	}
	if item.PublishedParsed != nil {
		e.Published = *item.PublishedParsed
	}
	for _, enc := range item.Enclosures {
		if enc == nil || enc.URL == "" {
			continue
		}
		e.Enclosures = append(e.Enclosures, Enclosure{
			URL:  enc.URL,
			Type: enc.Type,
		})
	}
	return e
}

// extractLink returns the best available URL for an item, preferring the
// explicit link and falling back to an http-shaped GUID.
func extractLink(item *gofeed.Item) string {
	if item.Link != "" {
		return item.Link
	}
	if len(item.GUID) > 4 && item.GUID[:4] == "http" {
		return item.GUID
	}
	return ""
}

func itemAuthors(item *gofeed.Item) []string {
	var authors []string
	for _, a := range item.Authors {
		if a == nil {
			continue
		}
		switch {
		case a.Name != "" && a.Email != "":
			authors = append(authors, fmt.Sprintf("%s <%s>", a.Name, a.Email))
		case a.Name != "":
			authors = append(authors, a.Name)
		case a.Email != "":
			authors = append(authors, a.Email)
		}
	}
	return authors
}
