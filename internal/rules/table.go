package rules

// KeywordRule adds tags to any entry whose value for Field matches Match.
type KeywordRule struct {
	Field   Field    `json:"field"`
	Match   string   `json:"match"`
	AddTags []string `json:"add_tags"`
}

// SubscriptionRule subscribes to a feed URL, tagging every entry it produces
// and optionally assigning the feed a display title.
type SubscriptionRule struct {
	FeedURL string   `json:"feed_url"`
	AddTags []string `json:"add_tags"`
	Title   string   `json:"title,omitempty"`
}

// Table is one compile pass's complete rule set. A table is immutable once
// built; a recompile produces a fresh table rather than patching an old one,
// so swapping tables is atomic for concurrent readers.
type Table struct {
	KeywordRules      []KeywordRule
	SubscriptionRules []SubscriptionRule
}

// Build materializes a rule table from classified entries. Keyword rules are
// grouped per recognized keyword, preserving encounter order within each
// group; multiple rules per keyword are all kept. Subscription rules keep
// encounter order. Malformed entries yield no rule and no error.
func Build(classified []Classified) *Table {
	t := &Table{}

	for _, kw := range Keywords {
		for _, c := range classified {
			if c.Kind != KindKeyword || c.Field != kw {
				continue
			}
			t.KeywordRules = append(t.KeywordRules, KeywordRule{
				Field:   c.Field,
				Match:   c.Match,
				AddTags: c.Tags,
			})
		}
	}

	for _, c := range classified {
		if c.Kind != KindSubscription || c.URL == "" {
			continue
		}
		t.SubscriptionRules = append(t.SubscriptionRules, SubscriptionRule{
			FeedURL: c.URL,
			AddTags: c.Tags,
			Title:   c.Title,
		})
	}

	return t
}

// Feeds returns the distinct subscribed feed URLs in rule order.
func (t *Table) Feeds() []string {
	seen := make(map[string]bool, len(t.SubscriptionRules))
	var urls []string
	for _, r := range t.SubscriptionRules {
		if !seen[r.FeedURL] {
			seen[r.FeedURL] = true
			urls = append(urls, r.FeedURL)
		}
	}
	return urls
}

// RuleCount returns the total number of rules in the table.
func (t *Table) RuleCount() int {
	return len(t.KeywordRules) + len(t.SubscriptionRules)
}
