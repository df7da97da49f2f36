package layout

import (
	"fmt"

	"github.com/cvforge/cvforge/internal/core/document"
)

// PointerState is the pointer drag session state.
type PointerState uint8

const (
	PointerIdle PointerState = iota
	PointerDragging
)

// DropTarget resolves where a pointer is hovering: a column, or a sibling
// section inside one (Section empty means the column itself).
type DropTarget struct {
	Column  int
	Section document.SectionKey
}

// PointerDrag drives pointer-based drag sessions. Cross-column moves are
// applied optimistically while dragging over targets; drag-end only persists.
//
// States: idle -> dragging -> (dropped | cancelled) -> idle.
type PointerDrag struct {
	r     *Reconciler
	state PointerState
	key   document.SectionKey
}

// State returns the current session state.
func (p *PointerDrag) State() PointerState { return p.state }

// Begin starts dragging key. An in-progress keyboard drag is cancelled:
// only one modality may be active at a time.
func (p *PointerDrag) Begin(key document.SectionKey) error {
	if p.state != PointerIdle {
		return fmt.Errorf("drag already in progress")
	}
	if p.r.keyboard.state == KeyboardPickedUp {
		p.r.keyboard.Cancel()
	}
	if _, _, ok := p.r.locate(key); !ok {
		return fmt.Errorf("section %s is not on this page", key)
	}
	p.state = PointerDragging
	p.key = key
	p.r.announce(fmt.Sprintf("Picked up %s.", key))
	return nil
}

// DragOver previews the drag: when the resolved target column differs from
// the dragged section's current column, the section moves there immediately,
// inserted before the hovered sibling or appended to the column.
func (p *PointerDrag) DragOver(t DropTarget) {
	if p.state != PointerDragging {
		return
	}
	cur, _, ok := p.r.locate(p.key)
	if !ok {
		return
	}
	if t.Section == p.key {
		return
	}
	if t.Column != cur {
		p.r.moveBefore(p.key, t.Column, t.Section)
	}
}

// Drop ends the session. A nil target discards the optimistic preview and
// restores the last persisted arrangement. Dropping a section onto itself is
// a no-op that still persists. A same-column target reorders by index splice.
func (p *PointerDrag) Drop(t *DropTarget) error {
	if p.state != PointerDragging {
		return fmt.Errorf("no drag in progress")
	}
	key := p.key
	p.state = PointerIdle
	p.key = ""

	if t == nil {
		p.r.revert()
		p.r.announce(fmt.Sprintf("Cancelled dragging %s.", key))
		return nil
	}

	if t.Section == key {
		p.r.announce(fmt.Sprintf("Dropped %s.", key))
		return p.r.persist()
	}

	cur, srcIdx, ok := p.r.locate(key)
	if ok && t.Column == cur && t.Section != "" {
		p.r.reorderWithin(cur, srcIdx, t.Section)
	} else if ok && t.Column != cur {
		// Normally resolved during drag-over; applies late for targets that
		// never received a drag-over event.
		p.r.moveBefore(key, t.Column, t.Section)
	}

	p.r.announce(fmt.Sprintf("Dropped %s.", key))
	return p.r.persist()
}

// Cancel aborts the session, restoring the last persisted arrangement.
func (p *PointerDrag) Cancel() {
	if p.state != PointerDragging {
		return
	}
	key := p.key
	p.state = PointerIdle
	p.key = ""
	p.r.revert()
	p.r.announce(fmt.Sprintf("Cancelled dragging %s.", key))
}

// reorderWithin splices the item at srcIdx to sit at the target section's
// position, adjusting the target index by one when the item moves downward
// past it.
func (r *Reconciler) reorderWithin(col, srcIdx int, target document.SectionKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if col < 0 || col >= len(r.cols) {
		return
	}
	column := r.cols[col]
	dst := -1
	for i, k := range column {
		if k == target {
			dst = i
			break
		}
	}
	if dst < 0 || srcIdx < 0 || srcIdx >= len(column) || dst == srcIdx {
		return
	}
	// Insert at the target's pre-removal index: when the item moves downward
	// the removal shifts the column up by one, so this lands it just past
	// the target; moving upward it lands just before.
	key := column[srcIdx]
	column = append(column[:srcIdx], column[srcIdx+1:]...)
	column = append(column, "")
	copy(column[dst+1:], column[dst:])
	column[dst] = key
	r.cols[col] = column
}
