package rules

import (
	"regexp"
	"strings"
)

// Field names a piece of entry or feed metadata that keyword rules match
// against.
type Field string

// Recognized metadata keywords, in classification order.
const (
	FieldFeedTitle        Field = "feed-title"
	FieldFeedURL          Field = "feed-url"
	FieldFeedAuthor       Field = "feed-author"
	FieldEntryTitle       Field = "entry-title"
	FieldEntryLink        Field = "entry-link"
	FieldEntryContentType Field = "entry-content-type"
	FieldEntryEnclosure   Field = "entry-enclosure"
)

// Keywords lists every recognized metadata keyword in match order.
var Keywords = []Field{
	FieldFeedTitle,
	FieldFeedURL,
	FieldFeedAuthor,
	FieldEntryTitle,
	FieldEntryLink,
	FieldEntryContentType,
	FieldEntryEnclosure,
}

// Kind discriminates classified entries.
type Kind int

const (
	KindKeyword Kind = iota
	KindSubscription
)

// Classified is a flattened entry recognized as either a keyword filter or a
// feed subscription. Irrelevant and malformed entries never get this far.
type Classified struct {
	Kind  Kind
	Field Field  // keyword filters only
	Match string // keyword filters only
	URL   string // subscriptions only
	Title string // subscriptions only, optional
	Tags  []string
}

// Options control which subtrees are imported and which entries are skipped.
type Options struct {
	MarkerTag string
	IgnoreTag string
}

// DefaultOptions returns the conventional marker and ignore tags.
func DefaultOptions() Options {
	return Options{MarkerTag: "elfeed", IgnoreTag: "ignore"}
}

// Whole-string patterns for the two link markup shapes. Matching is
// deliberately anchored: a heading is a link subscription only when the whole
// heading is the markup.
var (
	linkTitleRe = regexp.MustCompile(`^\[\[([^\]]+)\]\[([^\]]+)\]\]$`)
	linkBareRe  = regexp.MustCompile(`^\[\[([^\]]+)\]\]$`)
)

// Classify partitions flattened entries into keyword filters and
// subscriptions, dropping everything else. The marker tag is structural and
// is stripped from every tag list before classification; entries carrying the
// ignore tag, entries whose heading mentions neither a recognized keyword nor
// "http", keyword entries with an empty value, and headings matching no known
// shape are all discarded without error.
func Classify(entries []FlatEntry, opts Options) []Classified {
	var out []Classified
	for _, e := range entries {
		tags := stripTag(e.Tags, opts.MarkerTag)
		if containsTag(tags, opts.IgnoreTag) {
			continue
		}
		if !relevant(e.Heading) {
			continue
		}
		if c, ok := classifyEntry(e.Heading, tags); ok {
			out = append(out, c)
		}
	}
	return out
}

// relevant is the compound pre-filter: the heading must mention a recognized
// keyword token or the literal substring "http" to be worth classifying.
func relevant(heading string) bool {
	if strings.Contains(heading, "http") {
		return true
	}
	for _, kw := range Keywords {
		if strings.Contains(heading, string(kw)) {
			return true
		}
	}
	return false
}

func classifyEntry(heading string, tags []string) (Classified, bool) {
	heading = strings.TrimSpace(heading)

	for _, kw := range Keywords {
		if !strings.HasPrefix(heading, string(kw)+":") {
			continue
		}
		match := strings.TrimSpace(heading[len(kw)+1:])
		if match == "" {
			// Nothing to match against.
			return Classified{}, false
		}
		return Classified{Kind: KindKeyword, Field: kw, Match: match, Tags: tags}, true
	}

	// Literal http prefix wins over link markup.
	if strings.HasPrefix(heading, "http") {
		url, title := splitBareURL(heading)
		return Classified{Kind: KindSubscription, URL: url, Title: title, Tags: tags}, true
	}
	if m := linkTitleRe.FindStringSubmatch(heading); m != nil {
		return Classified{Kind: KindSubscription, URL: m[1], Title: m[2], Tags: tags}, true
	}
	if m := linkBareRe.FindStringSubmatch(heading); m != nil {
		return Classified{Kind: KindSubscription, URL: m[1], Tags: tags}, true
	}

	return Classified{}, false
}

// splitBareURL separates a bare-URL heading into the URL and an optional
// trailing title.
func splitBareURL(heading string) (string, string) {
	if i := strings.IndexAny(heading, " \t"); i >= 0 {
		return heading[:i], strings.TrimSpace(heading[i:])
	}
	return heading, ""
}

func stripTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
