package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>Example Blog</title>
  <description>An example feed</description>
  <item>
    <title>First Post</title>
    <link>http://example.com/first</link>
    <author>jane@example.com (Jane Doe)</author>
    <description>&lt;p&gt;Hello &lt;b&gt;world&lt;/b&gt;&lt;/p&gt;</description>
    <enclosure url="http://example.com/ep1.mp3" type="audio/mpeg" length="1234"/>
  </item>
  <item>
    <title>Plain Post</title>
    <link>http://example.com/plain</link>
    <description>Just words, nothing fancy.</description>
  </item>
  <item>
    <title>No Link At All</title>
  </item>
</channel>
</rss>`

func TestParseBody(t *testing.T) {
	fd, entries, err := NewFetcher().ParseBody("http://example.com/feed", sampleRSS)
	require.NoError(t, err)

	assert.Equal(t, "http://example.com/feed", fd.URL)
	assert.Equal(t, "Example Blog", fd.Title)
	require.NotNil(t, fd.FetchedAt)

	// The linkless item is skipped.
	require.Len(t, entries, 2)

	first := entries[0]
	assert.Equal(t, "First Post", first.Title)
	assert.Equal(t, "http://example.com/first", first.Link)
	assert.Equal(t, "http://example.com/feed", first.FeedURL)
	assert.Equal(t, "Example Blog", first.FeedTitle)
	assert.Equal(t, "html", first.ContentType)
	require.Len(t, first.Authors, 1)
	assert.Contains(t, first.Authors[0], "Jane Doe")
	require.Len(t, first.Enclosures, 1)
	assert.Equal(t, "http://example.com/ep1.mp3", first.Enclosures[0].URL)
	assert.Equal(t, "audio/mpeg", first.Enclosures[0].Type)

	assert.Equal(t, "text", entries[1].ContentType)
	assert.Empty(t, entries[1].Enclosures)
}

func TestParseBodyInvalid(t *testing.T) {
	_, _, err := NewFetcher().ParseBody("http://example.com/feed", "not a feed")
	assert.Error(t, err)
}

func TestResolveContentType(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"empty", "", ""},
		{"plain text", "just some words", "text"},
		{"paragraph markup", "<p>hello</p>", "html"},
		{"inline markup", "hello <em>there</em>", "html"},
		{"angle brackets in prose", "a < b and c > d", "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveContentType(tt.content))
		})
	}
}

func TestExtractText(t *testing.T) {
	assert.Equal(t, "Hello world", ExtractText("<p>Hello <b>world</b></p>"))
	assert.Equal(t, "plain", ExtractText("  plain \n"))
	assert.Equal(t, "kept", ExtractText("<script>dropped()</script><p>kept</p>"))
}

func TestEntryAddTags(t *testing.T) {
	e := &Entry{}

	e.AddTags("a", "b")
	e.AddTags("b", "c", "a")

	assert.Equal(t, []string{"a", "b", "c"}, e.Tags)
	assert.True(t, e.HasTag("b"))
	assert.False(t, e.HasTag("z"))
}
