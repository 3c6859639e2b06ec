package tagger

import (
	"sync/atomic"

	"github.com/Thaodan/elfeed-autotag/internal/rules"
)

// Holder owns the process-wide current rule table. Tables are built in full
// and swapped in as a whole, so a concurrent reader sees either the old table
// or the new one, never a partially rebuilt mix.
type Holder struct {
	table atomic.Pointer[rules.Table]
}

// Load returns the current table, or nil before the first compile.
func (h *Holder) Load() *rules.Table {
	return h.table.Load()
}

// Swap replaces the current table atomically.
func (h *Holder) Swap(t *rules.Table) {
	h.table.Store(t)
}
