// Package tagger applies a compiled rule table to incoming feed entries.
package tagger

import (
	"strings"
	"sync"

	"github.com/Thaodan/elfeed-autotag/internal/feed"
	"github.com/Thaodan/elfeed-autotag/internal/rules"
)

// FeedStore is the feed-metadata collaborator used when a subscription rule
// exports a display title.
type FeedStore interface {
	SetFeedTitle(url, title string) error
}

// Engine applies rule tables to entries. Tag application is a pure set union,
// so applying the same table twice leaves an entry unchanged. Title export
// happens once per feed per compile pass, not once per entry.
type Engine struct {
	store FeedStore

	mu     sync.Mutex
	titled map[string]bool
}

// New creates an Engine. store may be nil, in which case title export is
// skipped.
func New(store FeedStore) *Engine {
	return &Engine{store: store, titled: make(map[string]bool)}
}

// Apply runs every rule in the table against the entry, in the table's
// insertion order, unioning matched rules' tags into the entry's tag set.
func (e *Engine) Apply(entry *feed.Entry, t *rules.Table) {
	if t == nil {
		return
	}

	for _, r := range t.KeywordRules {
		if matchField(entry, r.Field, r.Match) {
			entry.AddTags(r.AddTags...)
		}
	}

	for _, r := range t.SubscriptionRules {
		if entry.FeedURL != r.FeedURL {
			continue
		}
		entry.AddTags(r.AddTags...)
		if r.Title != "" {
			e.exportTitle(r.FeedURL, r.Title)
		}
	}
}

// Reset forgets which feeds already had titles exported. Called when a fresh
// table is swapped in.
func (e *Engine) Reset() {
	e.mu.Lock()
	e.titled = make(map[string]bool)
	e.mu.Unlock()
}

func (e *Engine) exportTitle(url, title string) {
	if e.store == nil {
		return
	}
	e.mu.Lock()
	done := e.titled[url]
	if !done {
		e.titled[url] = true
	}
	e.mu.Unlock()
	if done {
		return
	}
	// Best effort: a failed title write never blocks tagging.
	_ = e.store.SetFeedTitle(url, title)
}

// matchField resolves the entry's value for a field and tests it against the
// rule's match string. Single-valued fields compare by equality; multi-valued
// fields (authors, enclosures) match when any element contains the string.
func matchField(entry *feed.Entry, field rules.Field, match string) bool {
	switch field {
	case rules.FieldFeedTitle:
		return entry.FeedTitle == match
	case rules.FieldFeedURL:
		return entry.FeedURL == match
	case rules.FieldEntryTitle:
		return entry.Title == match
	case rules.FieldEntryLink:
		return entry.Link == match
	case rules.FieldEntryContentType:
		return entry.ContentType == match
	case rules.FieldFeedAuthor:
		for _, a := range entry.Authors {
			if strings.Contains(a, match) {
				return true
			}
		}
	case rules.FieldEntryEnclosure:
		for _, enc := range entry.Enclosures {
			if strings.Contains(enc.URL, match) || strings.Contains(enc.Type, match) {
				return true
			}
		}
	}
	return false
}
