package rules

import (
	"github.com/Thaodan/elfeed-autotag/internal/outline"
)

// Compile runs the whole pipeline over the given outline documents: import
// marked subtrees, flatten with tag inheritance, classify, and build a fresh
// rule table. A missing document path fails the entire pass with
// *outline.ConfigurationError before any parsing; no partial table is
// produced. Malformed headings are skipped individually, so one bad line
// never suppresses the rest of the outline's rules.
func Compile(paths []string, opts Options) (*Table, error) {
	roots, err := outline.ImportMarkedSubtrees(paths, opts.MarkerTag)
	if err != nil {
		return nil, err
	}
	flat := Flatten(roots)
	classified := Classify(flat, opts)
	return Build(classified), nil
}
