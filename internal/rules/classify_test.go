package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func classifyOne(t *testing.T, e FlatEntry) Classified {
	t.Helper()
	out := Classify([]FlatEntry{e}, DefaultOptions())
	require.Len(t, out, 1)
	return out[0]
}

func TestClassifyKeyword(t *testing.T) {
	c := classifyOne(t, FlatEntry{
		Heading: "feed-author: Jane Doe",
		Tags:    []string{"elfeed", "tech"},
	})

	assert.Equal(t, KindKeyword, c.Kind)
	assert.Equal(t, FieldFeedAuthor, c.Field)
	assert.Equal(t, "Jane Doe", c.Match)
	// The marker tag is structural and never reaches a rule.
	assert.Equal(t, []string{"tech"}, c.Tags)
}

func TestClassifyBareURL(t *testing.T) {
	c := classifyOne(t, FlatEntry{
		Heading: "http://example.com/feed",
		Tags:    []string{"tech", "daily"},
	})

	assert.Equal(t, KindSubscription, c.Kind)
	assert.Equal(t, "http://example.com/feed", c.URL)
	assert.Empty(t, c.Title)
	assert.Equal(t, []string{"tech", "daily"}, c.Tags)
}

func TestClassifyBareURLWithTrailingTitle(t *testing.T) {
	c := classifyOne(t, FlatEntry{Heading: "https://example.com/feed Example Feed"})

	assert.Equal(t, KindSubscription, c.Kind)
	assert.Equal(t, "https://example.com/feed", c.URL)
	assert.Equal(t, "Example Feed", c.Title)
}

func TestClassifyLinkWithTitle(t *testing.T) {
	c := classifyOne(t, FlatEntry{
		Heading: "[[http://example.com/feed][Example Feed]]",
		Tags:    []string{"tech"},
	})

	assert.Equal(t, KindSubscription, c.Kind)
	assert.Equal(t, "http://example.com/feed", c.URL)
	assert.Equal(t, "Example Feed", c.Title)
	assert.Equal(t, []string{"tech"}, c.Tags)
}

func TestClassifyBareLink(t *testing.T) {
	c := classifyOne(t, FlatEntry{Heading: "[[http://example.com/feed]]"})

	assert.Equal(t, KindSubscription, c.Kind)
	assert.Equal(t, "http://example.com/feed", c.URL)
	assert.Empty(t, c.Title)
}

func TestClassifyDrops(t *testing.T) {
	tests := []struct {
		name  string
		entry FlatEntry
	}{
		{"irrelevant heading", FlatEntry{Heading: "Some section header"}},
		{"empty keyword value", FlatEntry{Heading: "entry-title:"}},
		{"empty keyword value with spaces", FlatEntry{Heading: "entry-title:   "}},
		{"ignore tag", FlatEntry{Heading: "http://example.com/feed", Tags: []string{"ignore"}}},
		{"inherited ignore tag", FlatEntry{Heading: "feed-title: X", Tags: []string{"tech", "ignore"}}},
		// Markup matching is whole-string: embedded links do not subscribe.
		{"embedded link markup", FlatEntry{Heading: "see [[http://example.com/feed][here]] for details"}},
		{"malformed markup", FlatEntry{Heading: "[[http://example.com/feed][title]] extra"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, Classify([]FlatEntry{tt.entry}, DefaultOptions()))
		})
	}
}

func TestClassifyLiteralHTTPPrecedence(t *testing.T) {
	// A heading that is itself an http URL never goes through markup
	// parsing, even if it contains bracket characters.
	c := classifyOne(t, FlatEntry{Heading: "http://example.com/feed?a=[1]"})

	assert.Equal(t, KindSubscription, c.Kind)
	assert.Equal(t, "http://example.com/feed?a=[1]", c.URL)
}

func TestClassifyKeywordOrderFirstMatchWins(t *testing.T) {
	// "feed-title:" is tested before "entry-title:", so a heading starting
	// with "feed-title:" classifies as feed-title even though both tokens
	// appear in it.
	c := classifyOne(t, FlatEntry{Heading: "feed-title: entry-title: nested"})
	assert.Equal(t, FieldFeedTitle, c.Field)
	assert.Equal(t, "entry-title: nested", c.Match)
}

func TestClassifyPreservesOrder(t *testing.T) {
	entries := []FlatEntry{
		{Heading: "http://a.example.com/feed"},
		{Heading: "entry-title: keep"},
		{Heading: "http://b.example.com/feed"},
	}

	out := Classify(entries, DefaultOptions())
	require.Len(t, out, 3)
	assert.Equal(t, "http://a.example.com/feed", out[0].URL)
	assert.Equal(t, KindKeyword, out[1].Kind)
	assert.Equal(t, "http://b.example.com/feed", out[2].URL)
}

func TestClassifyCustomTags(t *testing.T) {
	opts := Options{MarkerTag: "rss", IgnoreTag: "skip"}

	out := Classify([]FlatEntry{
		{Heading: "http://a.example.com/feed", Tags: []string{"rss", "news"}},
		{Heading: "http://b.example.com/feed", Tags: []string{"skip"}},
	}, opts)

	require.Len(t, out, 1)
	assert.Equal(t, []string{"news"}, out[0].Tags)
}
