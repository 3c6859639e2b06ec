// Package rules compiles marked outline subtrees into the declarative tagging
// rules applied to incoming feed entries: flatten headline trees with tag
// inheritance, classify the flattened headings, and build the rule table.
package rules

import (
	"strings"

	"github.com/Thaodan/elfeed-autotag/internal/outline"
)

// FlatEntry is one flattened headline: its text plus every tag inherited from
// the matched root down to the headline itself, in root-to-leaf order.
// Duplicates are possible when a tag is declared at multiple ancestor levels.
type FlatEntry struct {
	Heading string
	Tags    []string
}

// Flatten walks each subtree in depth-first document order and computes tag
// inheritance from traversal shape alone: a tag stack keyed by nesting level,
// popped whenever the traversal returns to a sibling or ancestor level. This
// keeps results independent of any ambient tag-inheritance configuration.
// The concatenated results are deduplicated by structural equality across the
// whole batch, so a root matched twice yields each entry once.
func Flatten(roots []*outline.Node) []FlatEntry {
	var entries []FlatEntry
	for _, root := range roots {
		entries = append(entries, flattenSubtree(root)...)
	}
	return dedup(entries)
}

func flattenSubtree(root *outline.Node) []FlatEntry {
	var entries []FlatEntry
	var stack [][]string
	prevLevel := root.Level

	var visit func(n *outline.Node)
	visit = func(n *outline.Node) {
		delta := n.Level - prevLevel
		if delta <= 0 {
			// Returned up or stayed level: the previous branch's tag
			// context no longer applies.
			pop := 1 - delta
			if pop > len(stack) {
				pop = len(stack)
			}
			stack = stack[:len(stack)-pop]
		}
		prevLevel = n.Level

		var inherited []string
		if len(stack) > 0 {
			inherited = stack[len(stack)-1]
		}
		tags := make([]string, 0, len(inherited)+len(n.Tags))
		tags = append(tags, inherited...)
		tags = append(tags, n.Tags...)
		stack = append(stack, tags)

		entries = append(entries, FlatEntry{Heading: n.Text, Tags: tags})

		for _, c := range n.Children {
			visit(c)
		}
	}
	visit(root)

	return entries
}

func dedup(entries []FlatEntry) []FlatEntry {
	seen := make(map[string]bool, len(entries))
	out := entries[:0:0]
	for _, e := range entries {
		key := e.Heading + "\x00" + strings.Join(e.Tags, "\x00")
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
