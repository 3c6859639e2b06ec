// Package feed holds the feed-engine side of the system: the domain types
// for feeds and entries, and fetching/parsing of RSS and Atom documents.
package feed

import "time"

// Feed is a subscribed feed's metadata.
type Feed struct {
	URL         string     `json:"url"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	FetchedAt   *time.Time `json:"fetched_at,omitempty"`
}

// Enclosure is an attached media resource on an entry.
type Enclosure struct {
	URL    string `json:"url"`
	Type   string `json:"type,omitempty"`
	Length int64  `json:"length,omitempty"`
}

// Entry is a single item from a feed. Tags is the mutable tag set the tagging
// engine appends to; it behaves as an ordered set and tags are never removed.
type Entry struct {
	ID          string      `json:"id"`
	FeedURL     string      `json:"feed_url"`
	FeedTitle   string      `json:"feed_title,omitempty"`
	Title       string      `json:"title"`
	Link        string      `json:"link"`
	Authors     []string    `json:"authors,omitempty"`
	Content     string      `json:"content,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Enclosures  []Enclosure `json:"enclosures,omitempty"`
	Published   time.Time   `json:"published"`
	Tags        []string    `json:"tags,omitempty"`
}

// AddTags unions the given tags into the entry's tag set, preserving first
// insertion order. Adding an already-present tag is a no-op.
func (e *Entry) AddTags(tags ...string) {
	for _, tag := range tags {
		if !e.HasTag(tag) {
			e.Tags = append(e.Tags, tag)
		}
	}
}

// HasTag reports whether the entry already carries the tag.
func (e *Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
