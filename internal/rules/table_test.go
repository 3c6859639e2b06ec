package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Thaodan/elfeed-autotag/internal/outline"
)

func TestBuildGroupsKeywordRulesByKeyword(t *testing.T) {
	classified := []Classified{
		{Kind: KindKeyword, Field: FieldEntryTitle, Match: "go release", Tags: []string{"go"}},
		{Kind: KindKeyword, Field: FieldFeedTitle, Match: "Planet Emacs", Tags: []string{"emacs"}},
		{Kind: KindKeyword, Field: FieldFeedTitle, Match: "Planet Go", Tags: []string{"go"}},
	}

	table := Build(classified)
	require.Len(t, table.KeywordRules, 3)

	// Grouped in recognized-keyword order, encounter order within a group.
	assert.Equal(t, FieldFeedTitle, table.KeywordRules[0].Field)
	assert.Equal(t, "Planet Emacs", table.KeywordRules[0].Match)
	assert.Equal(t, FieldFeedTitle, table.KeywordRules[1].Field)
	assert.Equal(t, "Planet Go", table.KeywordRules[1].Match)
	assert.Equal(t, FieldEntryTitle, table.KeywordRules[2].Field)
}

func TestBuildSubscriptionRules(t *testing.T) {
	classified := []Classified{
		{Kind: KindSubscription, URL: "http://a.example.com/feed", Tags: []string{"tech", "daily"}},
		{Kind: KindSubscription, URL: "http://b.example.com/feed", Title: "B Feed", Tags: []string{"news"}},
	}

	table := Build(classified)
	require.Len(t, table.SubscriptionRules, 2)

	assert.Equal(t, SubscriptionRule{
		FeedURL: "http://a.example.com/feed",
		AddTags: []string{"tech", "daily"},
	}, table.SubscriptionRules[0])
	assert.Equal(t, "B Feed", table.SubscriptionRules[1].Title)
}

func TestBuildSkipsMalformed(t *testing.T) {
	classified := []Classified{
		{Kind: KindSubscription, URL: ""}, // no URL, yields no rule
		{Kind: KindSubscription, URL: "http://a.example.com/feed"},
	}

	table := Build(classified)
	assert.Len(t, table.SubscriptionRules, 1)
	assert.Equal(t, 1, table.RuleCount())
}

func TestBuildReturnsFreshTable(t *testing.T) {
	classified := []Classified{
		{Kind: KindSubscription, URL: "http://a.example.com/feed"},
	}

	first := Build(classified)
	second := Build(nil)

	// Rebuilding never mutates a previously built table.
	assert.Equal(t, 1, first.RuleCount())
	assert.Equal(t, 0, second.RuleCount())
}

func TestTableFeedsDeduplicates(t *testing.T) {
	table := Build([]Classified{
		{Kind: KindSubscription, URL: "http://a.example.com/feed", Tags: []string{"x"}},
		{Kind: KindSubscription, URL: "http://a.example.com/feed", Tags: []string{"y"}},
		{Kind: KindSubscription, URL: "http://b.example.com/feed"},
	})

	assert.Equal(t, []string{"http://a.example.com/feed", "http://b.example.com/feed"}, table.Feeds())
}

const compileDoc = `* Feeds :elfeed:
** Tech :tech:
*** http://example.com/feed
*** [[http://other.example.com/feed][Other Feed]] :daily:
*** entry-title: golang :go:
** Skipped :ignore:
*** http://skipped.example.com/feed
** entry-title:
`

func TestCompile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feeds.org")
	require.NoError(t, os.WriteFile(path, []byte(compileDoc), 0644))

	table, err := Compile([]string{path}, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, table.KeywordRules, 1)
	assert.Equal(t, KeywordRule{
		Field:   FieldEntryTitle,
		Match:   "golang",
		AddTags: []string{"tech", "go"},
	}, table.KeywordRules[0])

	require.Len(t, table.SubscriptionRules, 2)
	assert.Equal(t, SubscriptionRule{
		FeedURL: "http://example.com/feed",
		AddTags: []string{"tech"},
	}, table.SubscriptionRules[0])
	assert.Equal(t, SubscriptionRule{
		FeedURL: "http://other.example.com/feed",
		AddTags: []string{"tech", "daily"},
		Title:   "Other Feed",
	}, table.SubscriptionRules[1])
}

func TestCompileMissingDocument(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.org")

	table, err := Compile([]string{missing}, DefaultOptions())
	require.Error(t, err)
	assert.Nil(t, table)

	var cfgErr *outline.ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
