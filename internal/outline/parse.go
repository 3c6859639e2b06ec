package outline

import (
	"regexp"
	"strings"
)

var (
	headlineRe = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	tagsRe     = regexp.MustCompile(`\s+:([[:alnum:]_@#%:-]+):\s*$`)
	propertyRe = regexp.MustCompile(`^\s*:([A-Za-z_-]+):\s*(.*?)\s*$`)
)

// Parse parses an outline document into a tree. The returned node is a
// synthetic document root at level 0; real headlines hang off its children.
func Parse(text string) *Node {
	root := &Node{Level: 0}
	stack := []*Node{root}

	lines := strings.Split(text, "\n")
	for i := 0; i < len(lines); i++ {
		m := headlineRe.FindStringSubmatch(lines[i])
		if m == nil {
			continue
		}

		node := &Node{Level: len(m[1])}
		node.Text, node.Tags = splitTags(m[2])

		// A properties drawer directly below the headline may carry the
		// legacy identifier.
		node.ID, i = parseDrawer(lines, i)

		// Attach to the nearest ancestor with a smaller level.
		for len(stack) > 1 && stack[len(stack)-1].Level >= node.Level {
			stack = stack[:len(stack)-1]
		}
		parent := stack[len(stack)-1]
		parent.Children = append(parent.Children, node)
		stack = append(stack, node)
	}

	return root
}

// splitTags separates a headline's text from its trailing :tag:tag: block.
func splitTags(headline string) (string, []string) {
	m := tagsRe.FindStringSubmatchIndex(headline)
	if m == nil {
		return strings.TrimSpace(headline), nil
	}
	text := strings.TrimSpace(headline[:m[0]])
	var tags []string
	for _, t := range strings.Split(headline[m[2]:m[3]], ":") {
		if t != "" {
			tags = append(tags, t)
		}
	}
	return text, tags
}

// parseDrawer scans a :PROPERTIES: drawer starting after line i and returns
// the identifier property, if any, plus the index of the last consumed line.
func parseDrawer(lines []string, i int) (string, int) {
	j := i + 1
	if j >= len(lines) || !strings.EqualFold(strings.TrimSpace(lines[j]), ":PROPERTIES:") {
		return "", i
	}

	var id string
	for j++; j < len(lines); j++ {
		if strings.EqualFold(strings.TrimSpace(lines[j]), ":END:") {
			return id, j
		}
		m := propertyRe.FindStringSubmatch(lines[j])
		if m == nil {
			break
		}
		switch strings.ToUpper(m[1]) {
		case "ID":
			id = m[2]
		case "CUSTOM_ID":
			if id == "" {
				id = m[2]
			}
		}
	}

	// Unterminated drawer; treat it as body text.
	return "", i
}
