package feed

import (
	"strings"

	"golang.org/x/net/html"
)

// resolveContentType classifies entry content as "html" or "text". Feed
// payloads rarely declare this themselves, so it is sniffed from the content.
func resolveContentType(content string) string {
	if content == "" {
		return ""
	}
	if looksLikeHTML(content) {
		return "html"
	}
	return "text"
}

func looksLikeHTML(content string) bool {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return false
	}
	var found bool
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		// html.Parse always synthesizes html/head/body; only explicit
		// markup in the source counts.
		if n.Type == html.ElementNode {
			switch n.Data {
			case "html", "head", "body":
			default:
				found = true
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return found
}

// ExtractText strips markup from HTML content and returns readable text,
// collapsed to single spaces. Plain text passes through unchanged apart from
// whitespace normalization.
func ExtractText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}

	skip := map[string]bool{
		"script": true, "style": true, "noscript": true, "iframe": true,
	}

	var sb strings.Builder
	var extract func(n *html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.ElementNode && skip[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				sb.WriteString(text)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}
