// Package outline parses org-style outline documents into a minimal tree of
// headlines. Only headline text, nesting level, tag annotations, and the
// identifier property are consumed; everything else in a document is ignored.
package outline

import (
	"fmt"
	"os"
)

// Node is a single headline in an outline document. Tags holds only the tags
// declared on this headline itself, not inherited ones.
type Node struct {
	Text     string
	Level    int
	Tags     []string
	ID       string
	Children []*Node
}

// HasTag reports whether the node declares the given tag.
func (n *Node) HasTag(tag string) bool {
	for _, t := range n.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ConfigurationError indicates that a configured outline document path does
// not exist. It aborts a compile pass before any parsing happens.
type ConfigurationError struct {
	Path string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("outline document does not exist: %s", e.Path)
}

// ImportMarkedSubtrees reads the given outline documents and returns every
// headline whose tags contain marker, or whose identifier property equals
// marker, as the root of its subtree. A nested match is returned both as part
// of the outer subtree and as its own root; duplicates are resolved later by
// the flattener. All paths are checked for existence before any document is
// parsed.
func ImportMarkedSubtrees(paths []string, marker string) ([]*Node, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, &ConfigurationError{Path: path}
		}
	}

	var roots []*Node
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read outline document: %w", err)
		}
		doc := Parse(string(data))
		roots = append(roots, markedSubtrees(doc, marker)...)
	}

	return roots, nil
}

// markedSubtrees collects, in document order, every node under root that
// carries the marker tag or identifier.
func markedSubtrees(root *Node, marker string) []*Node {
	var matched []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.HasTag(marker) || n.ID == marker {
			matched = append(matched, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	for _, c := range root.Children {
		walk(c)
	}
	return matched
}
