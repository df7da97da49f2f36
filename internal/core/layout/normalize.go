// Package layout maintains an editable, column-partitioned projection of the
// document's layout and writes changes back through the store without
// re-triggering its own resynchronization. It also hosts the pointer and
// keyboard drag session state machines.
package layout

import "github.com/cvforge/cvforge/internal/core/document"

// Normalize repairs a column arrangement against the known section-key set:
//
//  1. Empty input yields a single column holding every known key in default
//     order.
//  2. Unknown keys are dropped; duplicates keep their first occurrence,
//     scanning columns in order and within a column in order.
//  3. Known keys never seen are appended, in default order, to the last
//     column.
//
// The function is pure and idempotent: Normalize(Normalize(x)) is
// structurally equal to Normalize(x) for any input.
func Normalize(cols []document.Column, known []document.SectionKey) []document.Column {
	if len(cols) == 0 {
		return []document.Column{append(document.Column(nil), known...)}
	}

	knownSet := make(map[document.SectionKey]struct{}, len(known))
	for _, k := range known {
		knownSet[k] = struct{}{}
	}

	seen := make(map[document.SectionKey]struct{}, len(known))
	out := make([]document.Column, len(cols))
	for i, col := range cols {
		kept := document.Column{}
		for _, k := range col {
			if _, ok := knownSet[k]; !ok {
				continue
			}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			kept = append(kept, k)
		}
		out[i] = kept
	}

	last := len(out) - 1
	for _, k := range known {
		if _, ok := seen[k]; !ok {
			out[last] = append(out[last], k)
		}
	}
	return out
}

func cloneColumns(cols []document.Column) []document.Column {
	if cols == nil {
		return nil
	}
	cp := make([]document.Column, len(cols))
	for i, col := range cols {
		cp[i] = append(document.Column(nil), col...)
	}
	return cp
}
